package vcr

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// A Cassette is an ordered collection of recorded exchanges, loaded from
// and saved to a single file.
//
// A cassette tracks how often each exchange has been played back: an
// exchange is consumed by PlayResponse at most once. Cassettes are meant
// to be used by one scope at a time and do no internal locking; the
// context decorator creates a fresh cassette per scope.
type Cassette struct {
	path       string
	serializer Serializer
	mode       Mode
	matchOn    []Matcher

	beforeRecordRequest  RequestFilter
	beforeRecordResponse ResponseFilter

	inject bool
	logger *slog.Logger
	id     uuid.UUID

	data       []Exchange
	playCounts map[int]int

	// dirty is set when exchanges were appended but not yet saved.
	// rewound is set once the cassette was successfully loaded from
	// disk this session.
	dirty   bool
	rewound bool
}

// Load constructs a cassette from opts and populates it from the file at
// the configured path. A missing file is not an error and yields an
// empty cassette; an unreadable or corrupt file is.
func Load(opts Options) (*Cassette, error) {
	c, err := newCassette(opts)
	if err != nil {
		return nil, err
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func newCassette(opts Options) (*Cassette, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeOnce
	}
	if !mode.valid() {
		return nil, fmt.Errorf("vcr: unknown record mode %q", mode)
	}
	matchOn, err := MatchersByName(opts.MatchOn...)
	if err != nil {
		return nil, err
	}
	serializer := opts.Serializer
	if serializer == nil {
		serializer = YAML
	}
	path := opts.Path
	if ext := "." + serializer.Ext(); !strings.HasSuffix(path, ext) {
		path += ext
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	return &Cassette{
		path:                 path,
		serializer:           serializer,
		mode:                 mode,
		matchOn:              matchOn,
		beforeRecordRequest:  opts.BeforeRecordRequest,
		beforeRecordResponse: opts.BeforeRecordResponse,
		inject:               opts.Inject,
		logger:               logger.With("component", "vcr.cassette", "cassette", path, "id", id),
		id:                   id,
		playCounts:           map[int]int{},
	}, nil
}

// Path returns the file the cassette loads from and saves to.
func (c *Cassette) Path() string { return c.path }

// Mode returns the cassette's record mode.
func (c *Cassette) Mode() Mode { return c.mode }

// Len returns the number of recorded exchanges.
func (c *Cassette) Len() int { return len(c.data) }

// Requests returns the recorded requests in recording order.
func (c *Cassette) Requests() []*Request {
	out := make([]*Request, len(c.data))
	for i, e := range c.data {
		out[i] = e.Request
	}
	return out
}

// Responses returns the recorded responses in recording order.
func (c *Cassette) Responses() []*Response {
	out := make([]*Response, len(c.data))
	for i, e := range c.data {
		out[i] = e.Response
	}
	return out
}

// PlayCount returns the total number of exchanges consumed by
// PlayResponse this session.
func (c *Cassette) PlayCount() int {
	total := 0
	for _, n := range c.playCounts {
		total += n
	}
	return total
}

// AllPlayed reports whether every recorded exchange has been played.
func (c *Cassette) AllPlayed() bool {
	return c.PlayCount() == len(c.data)
}

// FilterRequest applies the cassette's request filter to a copy of req.
// Returns nil if the filter suppresses the request.
func (c *Cassette) FilterRequest(req *Request) *Request {
	if c.beforeRecordRequest == nil {
		return req
	}
	return c.beforeRecordRequest(req.Clone())
}

// Append records an exchange. The request filter runs first; if it
// suppresses the request the pair is dropped silently. The response
// filter runs next. Appending marks the cassette dirty.
func (c *Cassette) Append(req *Request, resp *Response) {
	req = c.FilterRequest(req)
	if req == nil {
		return
	}
	if c.beforeRecordResponse != nil {
		resp = c.beforeRecordResponse(resp.Clone())
	}
	c.data = append(c.data, Exchange{Request: req, Response: resp})
	c.dirty = true
	c.logger.Debug("recorded exchange", "method", req.Method, "uri", req.URI, "total", len(c.data))
}

// matchIndexes returns the indexes of stored exchanges whose request
// matches the already-filtered req, in recording order.
func (c *Cassette) matchIndexes(req *Request) []int {
	var out []int
	for i, e := range c.data {
		if requestsMatch(req, e.Request, c.matchOn) {
			out = append(out, i)
		}
	}
	return out
}

// Contains reports whether the cassette has at least one matching
// exchange that has not been played yet.
func (c *Cassette) Contains(req *Request) bool {
	req = c.FilterRequest(req)
	if req == nil {
		return false
	}
	for _, i := range c.matchIndexes(req) {
		if c.playCounts[i] == 0 {
			return true
		}
	}
	return false
}

// CanPlayResponseFor reports whether PlayResponse would succeed for req:
// the filtered request must match an unplayed exchange, the record mode
// must allow playback, and the cassette must have been loaded from disk.
func (c *Cassette) CanPlayResponseFor(req *Request) bool {
	return c.Contains(req) && c.mode != ModeAll && c.rewound
}

// PlayResponse returns the response of the first unplayed exchange
// matching req and marks it played. Returns UnhandledRequestError when
// no unplayed exchange matches.
func (c *Cassette) PlayResponse(req *Request) (*Response, error) {
	filtered := c.FilterRequest(req)
	if filtered != nil {
		for _, i := range c.matchIndexes(filtered) {
			if c.playCounts[i] > 0 {
				continue
			}
			c.playCounts[i]++
			c.logger.Debug("played exchange", "method", filtered.Method, "uri", filtered.URI, "index", i)
			return c.data[i].Response, nil
		}
	}
	return nil, UnhandledRequestError{Path: c.path, Request: req}
}

// ResponsesOf returns all responses matching req, regardless of play
// state. It is a diagnostic companion to PlayResponse and consumes
// nothing. Returns UnhandledRequestError when nothing matches.
func (c *Cassette) ResponsesOf(req *Request) ([]*Response, error) {
	filtered := c.FilterRequest(req)
	if filtered == nil {
		return nil, UnhandledRequestError{Path: c.path, Request: req}
	}
	var out []*Response
	for _, i := range c.matchIndexes(filtered) {
		out = append(out, c.data[i].Response)
	}
	if len(out) == 0 {
		return nil, UnhandledRequestError{Path: c.path, Request: req}
	}
	return out, nil
}

// WriteProtected reports whether the cassette refuses to record new
// exchanges: a cassette in mode "once" that was loaded from disk, or any
// cassette in mode "none".
func (c *Cassette) WriteProtected() bool {
	return c.rewound && c.mode == ModeOnce || c.mode == ModeNone
}

// Save persists the cassette if it is dirty or force is set. Parent
// directories are created as needed. A successful save clears the dirty
// flag.
func (c *Cassette) Save(force bool) error {
	if !c.dirty && !force {
		return nil
	}
	b, err := c.serializer.Serialize(&Interactions{
		Requests:  c.Requests(),
		Responses: c.Responses(),
	})
	if err != nil {
		return fmt.Errorf("serialize cassette %s: %w", c.path, err)
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return err
		}
	}
	if err := os.WriteFile(c.path, b, 0644); err != nil {
		return err
	}
	c.dirty = false
	c.logger.Debug("saved cassette", "exchanges", len(c.data))
	return nil
}

func (c *Cassette) load() error {
	b, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	in, err := c.serializer.Deserialize(b)
	if err != nil {
		return fmt.Errorf("load cassette %s: %w", c.path, err)
	}
	for i := range in.Requests {
		c.Append(in.Requests[i], in.Responses[i])
	}
	c.dirty = false
	c.rewound = true
	c.logger.Debug("loaded cassette", "exchanges", len(c.data))
	return nil
}

// String implements fmt.Stringer.
func (c *Cassette) String() string {
	return fmt.Sprintf("<Cassette %s containing %d recorded response(s)>", c.path, len(c.data))
}
