package vcr

import (
	"net/url"
	"strings"
)

// A Matcher compares one dimension of two requests, for example the URI
// or the method. A request is considered to match a recorded one when
// every configured matcher agrees.
type Matcher struct {
	// Name identifies the matcher in a match_on configuration.
	Name string

	// Match reports whether the two requests agree on this dimension.
	Match func(a, b *Request) bool
}

// Built-in matchers by name. The names follow the usual cassette
// configuration vocabulary.
var matchers = map[string]func(a, b *Request) bool{
	"method":  matchMethod,
	"uri":     matchURI,
	"scheme":  matchURLPart(func(u *url.URL) string { return u.Scheme }),
	"host":    matchURLPart(func(u *url.URL) string { return u.Hostname() }),
	"port":    matchURLPart(func(u *url.URL) string { return u.Port() }),
	"path":    matchURLPart(func(u *url.URL) string { return u.Path }),
	"query":   matchQuery,
	"body":    matchBody,
	"headers": matchHeaders,
}

// DefaultMatchOn is the match_on configuration used when none is given.
var DefaultMatchOn = []string{"uri", "method"}

// MatchersByName resolves an ordered match_on configuration into
// matchers. Unknown names return UnknownMatcherError so a bad
// configuration fails when it is set up rather than on first match.
func MatchersByName(names ...string) ([]Matcher, error) {
	if len(names) == 0 {
		names = DefaultMatchOn
	}
	out := make([]Matcher, 0, len(names))
	for _, name := range names {
		match, ok := matchers[name]
		if !ok {
			return nil, UnknownMatcherError{Name: name}
		}
		out = append(out, Matcher{Name: name, Match: match})
	}
	return out, nil
}

func requestsMatch(a, b *Request, on []Matcher) bool {
	if a == nil || b == nil {
		return false
	}
	for _, m := range on {
		if !m.Match(a, b) {
			return false
		}
	}
	return true
}

func matchMethod(a, b *Request) bool {
	return strings.EqualFold(a.Method, b.Method)
}

func matchURI(a, b *Request) bool {
	return a.URI == b.URI
}

func matchURLPart(part func(*url.URL) string) func(a, b *Request) bool {
	return func(a, b *Request) bool {
		ua, err := a.URL()
		if err != nil {
			return false
		}
		ub, err := b.URL()
		if err != nil {
			return false
		}
		return part(ua) == part(ub)
	}
}

// matchQuery compares query parameters without regard to their order in
// the query string.
func matchQuery(a, b *Request) bool {
	ua, err := a.URL()
	if err != nil {
		return false
	}
	ub, err := b.URL()
	if err != nil {
		return false
	}
	qa, err := url.ParseQuery(ua.RawQuery)
	if err != nil {
		return false
	}
	qb, err := url.ParseQuery(ub.RawQuery)
	if err != nil {
		return false
	}
	return headersEqual(qa, qb)
}

func matchBody(a, b *Request) bool {
	return a.Body == b.Body
}

func matchHeaders(a, b *Request) bool {
	return headersEqual(a.Headers, b.Headers)
}
