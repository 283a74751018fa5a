// Package vcr records HTTP interactions to cassette files and replays
// them deterministically.
//
// The primary use-case is tests that talk to external HTTP services: the
// first run records real traffic to a cassette, later runs are served
// from the cassette without touching the network. Record modes control
// whether unmatched requests are performed and recorded or rejected.
//
// A scope is opened with Use:
//
//	err := vcr.Use(vcr.Options{Path: "testdata/fixtures"}).
//		Run(ctx, func(ctx context.Context) error {
//			_, err := http.Get("https://example.com")
//			return err
//		})
//
// Inside the scope, clients using http.DefaultTransport are served from
// the cassette; other clients can be intercepted with ClientInterceptor
// via Options.CustomPatches.
package vcr
