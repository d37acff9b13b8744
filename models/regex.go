package models

import (
	"fmt"
	"regexp"
)

// Regex is a pattern compiled while the config is decoded.
type Regex struct {
	*regexp.Regexp
}

func (r *Regex) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}

	re, err := regexp.Compile(raw)
	if err != nil {
		return fmt.Errorf("invalid regular expression %q: %w", raw, err)
	}
	r.Regexp = re
	return nil
}
