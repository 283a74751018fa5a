package vcr_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tapedeck/vcr"
)

// The transport can be used directly, without a scope, as the Transport
// of an http.Client.
func TestTransport_RoundTrip(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		if want := `{"hello": "world"}`; string(body) != want {
			t.Errorf("Server got body %q, want %q", body, want)
		}
		w.Write([]byte("recorded")) // nolint: errcheck
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "direct")

	record, err := vcr.Load(vcr.Options{Path: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cli := &http.Client{Transport: vcr.NewTransport(record, nil)}

	resp, err := cli.Post(ts.URL, "application/json", strings.NewReader(`{"hello": "world"}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	got, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Read body: %v", err)
	}
	if string(got) != "recorded" {
		t.Errorf("Returned body = %q, want %q", got, "recorded")
	}
	if err := record.Save(false); err != nil {
		t.Fatalf("Save: %v", err)
	}

	replay, err := vcr.Load(vcr.Options{Path: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cli = &http.Client{Transport: vcr.NewTransport(replay, nil)}

	resp, err = cli.Post(ts.URL, "application/json", strings.NewReader(`{"hello": "world"}`))
	if err != nil {
		t.Fatalf("Replay post: %v", err)
	}
	got, err = io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Read body: %v", err)
	}
	if string(got) != "recorded" {
		t.Errorf("Replayed body = %q, want %q", got, "recorded")
	}
	if requests != 1 {
		t.Errorf("Got %d outgoing requests, want 1", requests)
	}
}

func TestTransport_WriteProtectedRejects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Request was sent to server")
	}))
	defer ts.Close()

	c, err := vcr.Load(vcr.Options{
		Path: filepath.Join(t.TempDir(), "protected"),
		Mode: vcr.ModeNone,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cli := &http.Client{Transport: vcr.NewTransport(c, nil)}

	_, err = cli.Get(ts.URL)
	var unhandled vcr.UnhandledRequestError
	if !errors.As(err, &unhandled) {
		t.Fatalf("Got error %v, want UnhandledRequestError", err)
	}
}

func TestInterceptor_Restore(t *testing.T) {
	c, err := vcr.Load(vcr.Options{Path: filepath.Join(t.TempDir(), "swap")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	transport := vcr.NewTransport(c, nil)

	before := http.DefaultTransport
	restore, err := vcr.DefaultTransportInterceptor().Install(transport)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if http.DefaultTransport != http.RoundTripper(transport) {
		t.Error("Install did not swap http.DefaultTransport")
	}
	restore()
	if http.DefaultTransport != before {
		t.Error("Restore did not reinstate the previous transport")
	}

	cli := &http.Client{}
	restore, err = vcr.ClientInterceptor(cli).Install(transport)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if cli.Transport != http.RoundTripper(transport) {
		t.Error("Install did not swap the client transport")
	}
	restore()
	if cli.Transport != nil {
		t.Error("Restore did not reinstate the previous client transport")
	}
}
