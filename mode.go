package vcr

import "fmt"

// Mode controls when a cassette records new exchanges and when it serves
// recorded ones.
type Mode string

// Possible values:
const (
	// ModeOnce records only if no cassette file existed before this
	// session. Once a cassette has been loaded from disk it is
	// playback-only.
	ModeOnce Mode = "once"

	// ModeNone never records. Requests without a recorded response fail.
	ModeNone Mode = "none"

	// ModeAll always performs the real request and records the result,
	// never serving from the cassette.
	ModeAll Mode = "all"

	// ModeNewEpisodes serves recorded responses when they match and
	// records any request that does not.
	ModeNewEpisodes Mode = "new_episodes"
)

// ParseMode converts a mode string to a Mode. An empty string resolves
// to ModeOnce.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeOnce, nil
	case ModeOnce, ModeNone, ModeAll, ModeNewEpisodes:
		return Mode(s), nil
	}
	return "", fmt.Errorf("vcr: unknown record mode %q", s)
}

func (m Mode) valid() bool {
	switch m {
	case ModeOnce, ModeNone, ModeAll, ModeNewEpisodes:
		return true
	}
	return false
}
