package vcr

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// A Request is a recorded outgoing request.
//
// Headers keep all values for each key. Header lookups and removals are
// case-insensitive; the keys themselves are stored as captured.
type Request struct {
	Method  string              `yaml:"method" json:"method"`
	URI     string              `yaml:"uri" json:"uri"`
	Headers map[string][]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body    string              `yaml:"body,omitempty" json:"body,omitempty"`
}

// A Response is a recorded incoming response. It is stored and replayed
// verbatim.
type Response struct {
	StatusCode int                 `yaml:"status_code" json:"status_code"`
	Headers    map[string][]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body       string              `yaml:"body,omitempty" json:"body,omitempty"`
}

// An Exchange is a single recorded request-response pair. The order of
// exchanges in a cassette is the order they were recorded in.
type Exchange struct {
	Request  *Request
	Response *Response
}

// CaptureRequest copies req into a recorded Request. The request body, if
// any, is buffered and req.Body is replaced so the request can still be
// sent afterwards.
func CaptureRequest(req *http.Request) (*Request, error) {
	var body bytes.Buffer
	if req.Body != nil {
		if _, err := io.Copy(&body, req.Body); err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body.Bytes()))
	}
	return &Request{
		Method:  req.Method,
		URI:     req.URL.String(),
		Headers: copyHeaders(req.Header),
		Body:    body.String(),
	}, nil
}

// CaptureResponse reads and closes resp.Body and copies resp into a
// recorded Response.
func CaptureResponse(resp *http.Response) (*Response, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := resp.Body.Close(); err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    copyHeaders(resp.Header),
		Body:       string(body),
	}, nil
}

// Clone returns a deep copy of the request. Filters mutate requests in
// place, so anything that must not be altered is cloned first.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	out := *r
	out.Headers = copyHeaders(r.Headers)
	return &out
}

// Header returns the first value for the named header. The name is
// case-insensitive. Returns "" if the header is not set.
func (r *Request) Header(name string) string {
	for k, vv := range r.Headers {
		if strings.EqualFold(k, name) && len(vv) > 0 {
			return vv[0]
		}
	}
	return ""
}

// URL parses the request URI.
func (r *Request) URL() (*url.URL, error) {
	return url.Parse(r.URI)
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	out := *r
	out.Headers = copyHeaders(r.Headers)
	return &out
}

// HTTPResponse materializes the recorded response for replay. The body
// can be read independently on every call.
func (r *Response) HTTPResponse() *http.Response {
	return &http.Response{
		Status:        http.StatusText(r.StatusCode),
		StatusCode:    r.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        expandHeaders(r.Headers),
		Body:          io.NopCloser(strings.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
	}
}

func copyHeaders(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, vv := range in {
		out[k] = append([]string(nil), vv...)
	}
	return out
}

func expandHeaders(in map[string][]string) http.Header {
	out := make(http.Header, len(in))
	for k, vv := range in {
		for _, v := range vv {
			out.Add(k, v)
		}
	}
	return out
}

func headersEqual(a, b map[string][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
	}
	return true
}
