package models

import "fmt"

// Mode selects how a node is checked.
type Mode string

const (
	ModePoll   Mode = "poll"
	ModeScript Mode = "script"
)

func (m *Mode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch Mode(raw) {
	case ModePoll, ModeScript:
		*m = Mode(raw)
		return nil
	}
	return fmt.Errorf("invalid node mode %q (expected poll or script)", raw)
}
