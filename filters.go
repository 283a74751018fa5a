package vcr

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
)

// A RequestFilter transforms a request before it is matched or stored.
// Returning nil suppresses the request: the exchange is dropped without
// being recorded. Filters are primarily used to redact sensitive data.
type RequestFilter func(*Request) *Request

// A ResponseFilter transforms a response before it is stored.
type ResponseFilter func(*Response) *Response

// ChainRequestFilters applies filters in order, stopping early if one of
// them suppresses the request.
func ChainRequestFilters(filters ...RequestFilter) RequestFilter {
	return func(r *Request) *Request {
		for _, f := range filters {
			if r = f(r); r == nil {
				return nil
			}
		}
		return r
	}
}

// ChainResponseFilters applies filters in order.
func ChainResponseFilters(filters ...ResponseFilter) ResponseFilter {
	return func(r *Response) *Response {
		for _, f := range filters {
			r = f(r)
		}
		return r
	}
}

// RemoveHeaders deletes the named headers from the request. Names are
// case-insensitive; headers that are not present are ignored.
func RemoveHeaders(r *Request, names []string) *Request {
	for k := range r.Headers {
		for _, name := range names {
			if strings.EqualFold(k, name) {
				delete(r.Headers, k)
				break
			}
		}
	}
	return r
}

// RemoveResponseHeaders deletes the named headers from the response.
// Names are case-insensitive.
func RemoveResponseHeaders(r *Response, names []string) *Response {
	for k := range r.Headers {
		for _, name := range names {
			if strings.EqualFold(k, name) {
				delete(r.Headers, k)
				break
			}
		}
	}
	return r
}

// RemoveQueryParameters rebuilds the request URI's query string without
// the named parameters. When no parameter is removed the URI is left
// untouched, byte for byte, so that requests are never renormalized as
// a side effect.
func RemoveQueryParameters(r *Request, names []string) *Request {
	u, err := r.URL()
	if err != nil || u.RawQuery == "" {
		return r
	}
	pairs := strings.Split(u.RawQuery, "&")
	kept := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")
		if !slices.Contains(names, key) {
			kept = append(kept, pair)
		}
	}
	if len(kept) == len(pairs) {
		return r
	}
	u.RawQuery = strings.Join(kept, "&")
	r.URI = u.String()
	return r
}

// RemovePostDataParameters strips the named parameters from a POST
// request's body. JSON bodies lose the named top-level keys. Any other
// body is treated as URL-encoded form data: key order and repeated keys
// are preserved, and only the named keys are dropped. Requests with
// other methods or without a body pass through unchanged.
func RemovePostDataParameters(r *Request, names []string) *Request {
	if r.Method != http.MethodPost || r.Body == "" {
		return r
	}
	if mediaType(r.Header("Content-Type")) == "application/json" {
		fields := map[string]json.RawMessage{}
		if err := json.Unmarshal([]byte(r.Body), &fields); err != nil {
			return r
		}
		for _, name := range names {
			delete(fields, name)
		}
		body, err := json.Marshal(fields)
		if err != nil {
			return r
		}
		r.Body = string(body)
		return r
	}

	// Form data. Group repeated keys together at the position of their
	// first occurrence, like the form would decode.
	var order []string
	values := map[string][]string{}
	for _, pair := range strings.Split(r.Body, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if _, seen := values[key]; seen {
			values[key] = append(values[key], value)
			continue
		}
		if key == "" || slices.Contains(names, key) {
			continue
		}
		order = append(order, key)
		values[key] = []string{value}
	}
	var b strings.Builder
	for _, key := range order {
		for _, value := range values[key] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(key)
			b.WriteByte('=')
			b.WriteString(value)
		}
	}
	r.Body = b.String()
	return r
}

// FilterHeaders returns a request filter that removes the named headers.
func FilterHeaders(names ...string) RequestFilter {
	return func(r *Request) *Request { return RemoveHeaders(r, names) }
}

// FilterQueryParameters returns a request filter that removes the named
// query parameters.
func FilterQueryParameters(names ...string) RequestFilter {
	return func(r *Request) *Request { return RemoveQueryParameters(r, names) }
}

// FilterPostDataParameters returns a request filter that removes the
// named POST body parameters.
func FilterPostDataParameters(names ...string) RequestFilter {
	return func(r *Request) *Request { return RemovePostDataParameters(r, names) }
}

// FilterResponseHeaders returns a response filter that removes the named
// headers.
func FilterResponseHeaders(names ...string) ResponseFilter {
	return func(r *Response) *Response { return RemoveResponseHeaders(r, names) }
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(strings.ToLower(mt))
}
