package nav

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Mode selects which controller produces the command.
type Mode int

const (
	ModeIdle  Mode = iota // robot does not move
	ModeAlign             // rotate in place toward the plan's initial heading
	ModeTrack             // follow the plan with the tracking controller
	ModePark              // rotate in place toward the goal heading
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeAlign:
		return "ALIGN"
	case ModeTrack:
		return "TRACK"
	case ModePark:
		return "PARK"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "IDLE":
		return ModeIdle, nil
	case "ALIGN":
		return ModeAlign, nil
	case "TRACK":
		return ModeTrack, nil
	case "PARK":
		return ModePark, nil
	default:
		return ModeIdle, errors.Errorf("unknown mode %q", value)
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
