package vcr

import "net/http"

// Transport routes requests through a cassette. Matching requests are
// served from the cassette; everything else is either performed for real
// and recorded, or rejected, depending on the cassette's record mode.
type Transport struct {
	cassette *Cassette
	real     http.RoundTripper
}

var _ http.RoundTripper = (*Transport)(nil)

// NewTransport returns a transport serving from and recording to c.
// Requests that must reach the network go through real; if real is nil,
// http.DefaultTransport is used.
func NewTransport(c *Cassette, real http.RoundTripper) *Transport {
	if real == nil {
		real = http.DefaultTransport
	}
	return &Transport{cassette: c, real: real}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	recorded, err := CaptureRequest(req)
	if err != nil {
		return nil, err
	}

	if t.cassette.CanPlayResponseFor(recorded) {
		resp, err := t.cassette.PlayResponse(recorded)
		if err != nil {
			return nil, err
		}
		return resp.HTTPResponse(), nil
	}

	if t.cassette.WriteProtected() {
		return nil, UnhandledRequestError{Path: t.cassette.Path(), Request: recorded}
	}

	resp, err := t.real.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	captured, err := CaptureResponse(resp)
	if err != nil {
		return nil, err
	}
	t.cassette.Append(recorded, captured)

	// The live body was consumed while capturing; hand the caller a
	// response backed by the captured copy.
	resp.Body = captured.HTTPResponse().Body
	resp.ContentLength = int64(len(captured.Body))
	return resp, nil
}

// An Interceptor reroutes outbound HTTP traffic through a transport for
// the duration of a scope. Install returns the function that undoes the
// installation; the context decorator calls it on every exit path.
type Interceptor interface {
	Install(rt http.RoundTripper) (restore func(), err error)
}

// DefaultTransportInterceptor intercepts clients that use
// http.DefaultTransport, including the zero http.Client and the
// package-level helpers like http.Get.
func DefaultTransportInterceptor() Interceptor {
	return defaultTransportInterceptor{}
}

type defaultTransportInterceptor struct{}

func (defaultTransportInterceptor) Install(rt http.RoundTripper) (func(), error) {
	prev := http.DefaultTransport
	http.DefaultTransport = rt
	return func() { http.DefaultTransport = prev }, nil
}

// ClientInterceptor intercepts a specific client by swapping its
// Transport. Use it as a custom patch for clients that do not go through
// http.DefaultTransport.
func ClientInterceptor(client *http.Client) Interceptor {
	return clientInterceptor{client: client}
}

type clientInterceptor struct {
	client *http.Client
}

func (i clientInterceptor) Install(rt http.RoundTripper) (func(), error) {
	prev := i.client.Transport
	i.client.Transport = rt
	return func() { i.client.Transport = prev }, nil
}
