package vcr_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapedeck/vcr"
)

func TestRemoveHeaders_CaseInsensitive(t *testing.T) {
	for _, name := range []string{"Authorization", "authorization", "AUTHORIZATION"} {
		t.Run(name, func(t *testing.T) {
			req := &vcr.Request{
				Method: http.MethodGet,
				URI:    "https://example.com/",
				Headers: map[string][]string{
					"authorization": {"Bearer secret"},
					"Accept":        {"application/json"},
				},
			}
			vcr.RemoveHeaders(req, []string{name})
			assert.NotContains(t, req.Headers, "authorization")
			assert.Equal(t, []string{"application/json"}, req.Headers["Accept"])
		})
	}
}

func TestRemoveHeaders_AbsentIsNoop(t *testing.T) {
	req := &vcr.Request{
		Method:  http.MethodGet,
		URI:     "https://example.com/",
		Headers: map[string][]string{"Accept": {"*/*"}},
	}
	vcr.RemoveHeaders(req, []string{"Authorization"})
	assert.Equal(t, map[string][]string{"Accept": {"*/*"}}, req.Headers)
}

func TestRemoveQueryParameters(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		remove []string
		want   string
	}{
		{
			name:   "removes named parameter",
			uri:    "https://example.com/path?api_key=secret&page=2",
			remove: []string{"api_key"},
			want:   "https://example.com/path?page=2",
		},
		{
			name:   "no match leaves uri byte-identical",
			uri:    "https://example.com/path?b=2&a=1&a=%20x",
			remove: []string{"missing"},
			want:   "https://example.com/path?b=2&a=1&a=%20x",
		},
		{
			name:   "repeated keys all removed",
			uri:    "https://example.com/?a=1&b=2&a=3",
			remove: []string{"a"},
			want:   "https://example.com/?b=2",
		},
		{
			name:   "no query is a no-op",
			uri:    "https://example.com/path",
			remove: []string{"a"},
			want:   "https://example.com/path",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &vcr.Request{Method: http.MethodGet, URI: tt.uri}
			vcr.RemoveQueryParameters(req, tt.remove)
			assert.Equal(t, tt.want, req.URI)
		})
	}
}

func TestRemovePostDataParameters_JSON(t *testing.T) {
	req := &vcr.Request{
		Method:  http.MethodPost,
		URI:     "https://example.com/",
		Headers: map[string][]string{"Content-Type": {"application/json"}},
		Body:    `{"a":1,"b":2}`,
	}
	vcr.RemovePostDataParameters(req, []string{"a"})
	assert.JSONEq(t, `{"b":2}`, req.Body)
}

func TestRemovePostDataParameters_Form(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		remove []string
		want   string
	}{
		{
			name:   "removes named key",
			body:   "a=1&b=2",
			remove: []string{"a"},
			want:   "b=2",
		},
		{
			name:   "preserves order and repeated keys",
			body:   "b=1&a=1&b=2&c=3",
			remove: []string{"c"},
			want:   "b=1&b=2&a=1",
		},
		{
			name:   "empty keys are dropped",
			body:   "=orphan&a=1",
			remove: []string{"x"},
			want:   "a=1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &vcr.Request{
				Method:  http.MethodPost,
				URI:     "https://example.com/",
				Headers: map[string][]string{"Content-Type": {"application/x-www-form-urlencoded"}},
				Body:    tt.body,
			}
			vcr.RemovePostDataParameters(req, tt.remove)
			assert.Equal(t, tt.want, req.Body)
		})
	}
}

func TestRemovePostDataParameters_OnlyPost(t *testing.T) {
	req := &vcr.Request{
		Method: http.MethodGet,
		URI:    "https://example.com/",
		Body:   "a=1&b=2",
	}
	vcr.RemovePostDataParameters(req, []string{"a"})
	assert.Equal(t, "a=1&b=2", req.Body)
}

func TestRemovePostDataParameters_Idempotent(t *testing.T) {
	req := &vcr.Request{
		Method:  http.MethodPost,
		URI:     "https://example.com/",
		Headers: map[string][]string{"Content-Type": {"application/json"}},
		Body:    `{"a":1,"b":2}`,
	}
	vcr.RemovePostDataParameters(req, []string{"a"})
	once := req.Body
	vcr.RemovePostDataParameters(req, []string{"a"})
	assert.Equal(t, once, req.Body)
}

func TestChainRequestFilters(t *testing.T) {
	chain := vcr.ChainRequestFilters(
		vcr.FilterHeaders("Authorization"),
		vcr.FilterQueryParameters("api_key"),
	)
	req := &vcr.Request{
		Method:  http.MethodGet,
		URI:     "https://example.com/?api_key=secret&page=1",
		Headers: map[string][]string{"Authorization": {"abc"}},
	}
	out := chain(req)
	require.NotNil(t, out)
	assert.Empty(t, out.Headers)
	assert.Equal(t, "https://example.com/?page=1", out.URI)
}

func TestChainRequestFilters_SuppressionStopsChain(t *testing.T) {
	calls := 0
	chain := vcr.ChainRequestFilters(
		func(*vcr.Request) *vcr.Request { return nil },
		func(r *vcr.Request) *vcr.Request { calls++; return r },
	)
	assert.Nil(t, chain(&vcr.Request{Method: http.MethodGet}))
	assert.Zero(t, calls)
}
