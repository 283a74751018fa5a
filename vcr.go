package vcr

import (
	"context"
	"log/slog"
	"net/http"
)

// Options configure a cassette scope.
type Options struct {
	// Path of the cassette file. The serializer's extension is appended
	// when missing. Required unless the scope is created by Wrap, which
	// derives a path from the wrapped function's name.
	Path string

	// Serializer for the cassette file. Defaults to YAML.
	Serializer Serializer

	// Mode controls recording vs. playback. Defaults to ModeOnce.
	Mode Mode

	// MatchOn names the request dimensions that must agree for a live
	// request to match a recorded one. Defaults to DefaultMatchOn.
	// Unknown names fail when the cassette is constructed.
	MatchOn []string

	// BeforeRecordRequest runs on every request before it is matched or
	// stored. Returning nil drops the exchange.
	BeforeRecordRequest RequestFilter

	// BeforeRecordResponse runs on every response before it is stored.
	BeforeRecordResponse ResponseFilter

	// CustomPatches are installed in addition to the default transport
	// interceptor, for clients with their own transport.
	CustomPatches []Interceptor

	// DisableDefaultPatch skips the default transport interceptor so
	// that only CustomPatches are installed. Concurrent scopes should
	// set this and intercept their own clients: http.DefaultTransport
	// is process-wide state.
	DisableDefaultPatch bool

	// Inject makes the open cassette available on the scope's context
	// via CassetteFromContext.
	Inject bool

	// PathTransformer rewrites the resolved path before the cassette is
	// constructed. It never reaches the cassette itself.
	PathTransformer func(path string) string

	// FuncPathGenerator derives a cassette path from a wrapped
	// function's name when Path is empty. Only used by Wrap. Defaults
	// to using the name as-is.
	FuncPathGenerator func(name string) string

	// RealTransport performs requests that must reach the network.
	// Defaults to http.DefaultTransport as it is at scope entry.
	RealTransport http.RoundTripper

	// Logger for scope and cassette lifecycle events. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// A ContextDecorator manages a cassette scope: it loads a fresh
// cassette, reroutes outbound HTTP traffic through it, and on exit saves
// the cassette and restores the transports, on every exit path.
//
// Options are resolved each time a scope is entered, not when the
// decorator is created. Run and Wrap clone the decorator per call, so
// recursive and concurrent invocations never share cassette state. A
// single decorator can only hold one open scope at a time; entering it
// twice without exiting is a caller bug and fails with ErrCassetteOpen.
type ContextDecorator struct {
	argsGetter func() Options

	cassette *Cassette
	restores []func()
	logger   *slog.Logger
	open     bool
}

// Use creates a context decorator with fixed options.
func Use(opts Options) *ContextDecorator {
	return UseArgsGetter(func() Options { return opts })
}

// UseArgsGetter creates a context decorator whose options are computed
// at every scope entry.
func UseArgsGetter(getter func() Options) *ContextDecorator {
	return &ContextDecorator{argsGetter: getter}
}

// Enter opens the scope: resolves options, loads the cassette and
// installs the interceptors. The caller must call Exit when done,
// usually with defer.
func (d *ContextDecorator) Enter() (*Cassette, error) {
	if d.open {
		return nil, ErrCassetteOpen
	}

	opts := d.argsGetter()
	if opts.PathTransformer != nil {
		opts.Path = opts.PathTransformer(opts.Path)
	}
	patches := opts.CustomPatches
	real := opts.RealTransport
	if real == nil {
		real = http.DefaultTransport
	}
	// The path helpers are scope concerns; the cassette never sees them.
	opts.PathTransformer = nil
	opts.FuncPathGenerator = nil

	c, err := Load(opts)
	if err != nil {
		return nil, err
	}

	transport := NewTransport(c, real)
	var interceptors []Interceptor
	if !opts.DisableDefaultPatch {
		interceptors = append(interceptors, DefaultTransportInterceptor())
	}
	interceptors = append(interceptors, patches...)

	var restores []func()
	for _, in := range interceptors {
		restore, err := in.Install(transport)
		if err != nil {
			for i := len(restores) - 1; i >= 0; i-- {
				restores[i]()
			}
			return nil, err
		}
		restores = append(restores, restore)
	}

	d.cassette = c
	d.restores = restores
	d.logger = c.logger.With("component", "vcr.scope")
	d.open = true
	d.logger.Debug("entered cassette scope")
	return c, nil
}

// Exit closes the scope: uninstalls the interceptors in reverse order
// and saves the cassette if it recorded anything. Exit on a decorator
// that is not open is a no-op.
func (d *ContextDecorator) Exit() error {
	if !d.open {
		return nil
	}
	for i := len(d.restores) - 1; i >= 0; i-- {
		d.restores[i]()
	}
	err := d.cassette.Save(false)
	d.logger.Debug("exited cassette scope")
	d.cassette = nil
	d.restores = nil
	d.open = false
	return err
}

// Run executes fn inside its own cassette scope. The decorator is cloned
// first, so concurrent and recursive calls are isolated from each other.
// The scope is closed even if fn panics. When Inject is set, the
// cassette is carried on fn's context.
func (d *ContextDecorator) Run(ctx context.Context, fn func(context.Context) error) error {
	return runScope(UseArgsGetter(d.argsGetter), ctx, fn)
}

// Wrap returns fn decorated to run inside a fresh cassette scope on
// every call. When Path is not configured, the cassette path is derived
// from name by the FuncPathGenerator.
func (d *ContextDecorator) Wrap(name string, fn func(context.Context) error) func(context.Context) error {
	getter := d.argsGetter
	return func(ctx context.Context) error {
		clone := UseArgsGetter(func() Options {
			opts := getter()
			if opts.Path == "" {
				if opts.FuncPathGenerator != nil {
					opts.Path = opts.FuncPathGenerator(name)
				} else {
					opts.Path = name
				}
			}
			return opts
		})
		return runScope(clone, ctx, fn)
	}
}

func runScope(d *ContextDecorator, ctx context.Context, fn func(context.Context) error) (err error) {
	c, err := d.Enter()
	if err != nil {
		return err
	}
	defer func() {
		if exitErr := d.Exit(); exitErr != nil && err == nil {
			err = exitErr
		}
	}()
	if c.inject {
		ctx = context.WithValue(ctx, cassetteKey{}, c)
	}
	return fn(ctx)
}

type cassetteKey struct{}

// CassetteFromContext returns the cassette carried by a scope's context.
// It is only present when the scope was configured with Inject.
func CassetteFromContext(ctx context.Context) (*Cassette, bool) {
	c, ok := ctx.Value(cassetteKey{}).(*Cassette)
	return c, ok
}
