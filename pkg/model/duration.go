package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so trigger files and API payloads can carry
// durations either as Go-style strings ("30s", "5m") or as plain numbers,
// which are interpreted as seconds.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalJSON encodes the duration as a string ("30s").
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts both "30s" and 30 (seconds).
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	dur, err := parseDuration(v)
	if err != nil {
		return err
	}
	*d = dur
	return nil
}

// UnmarshalYAML accepts both "30s" and 30 (seconds).
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}
	dur, err := parseDuration(v)
	if err != nil {
		return err
	}
	*d = dur
	return nil
}

func parseDuration(v interface{}) (Duration, error) {
	switch t := v.(type) {
	case string:
		dur, err := time.ParseDuration(t)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", t, err)
		}
		return Duration(dur), nil
	case float64:
		return Duration(time.Duration(t * float64(time.Second))), nil
	case int:
		return Duration(time.Duration(t) * time.Second), nil
	case int64:
		return Duration(time.Duration(t) * time.Second), nil
	default:
		return 0, fmt.Errorf("invalid duration value %v (%T)", v, v)
	}
}
