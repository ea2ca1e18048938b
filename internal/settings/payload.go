package settings

import (
	"errors"
	"fmt"
	"minimap_sync/internal/dataType"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrMalformedPayload = errors.New("malformed settings payload")

var validate = validator.New()

type field struct {
	key     string
	boolPtr func(*dataType.MinimapSettings) *bool
	intPtr  func(*dataType.MinimapSettings) *int
	rule    string
}

// fields is also the key order used by FormatPayload
var fields = []field{
	{key: "enabled", boolPtr: func(s *dataType.MinimapSettings) *bool { return &s.MinimapEnabled }},
	{key: "loots", boolPtr: func(s *dataType.MinimapSettings) *bool { return &s.ShowLoots }},
	{key: "enemies", boolPtr: func(s *dataType.MinimapSettings) *bool { return &s.ShowEnemies }},
	{key: "players", boolPtr: func(s *dataType.MinimapSettings) *bool { return &s.ShowLivePlayers }},
	{key: "dead", boolPtr: func(s *dataType.MinimapSettings) *bool { return &s.ShowDeadPlayers }},
	{key: "boosters", boolPtr: func(s *dataType.MinimapSettings) *bool { return &s.ShowRadarBoosters }},
	{key: "codes", boolPtr: func(s *dataType.MinimapSettings) *bool { return &s.ShowTerminalCodes }},
	{key: "arrow", boolPtr: func(s *dataType.MinimapSettings) *bool { return &s.ShowShipArrow }},
	{key: "rotate", boolPtr: func(s *dataType.MinimapSettings) *bool { return &s.AutoRotate }},
	{key: "size", intPtr: func(s *dataType.MinimapSettings) *int { return &s.MinimapSize }, rule: "min=100,max=1000"},
	{key: "zoom", intPtr: func(s *dataType.MinimapSettings) *int { return &s.MinimapZoom }, rule: "min=1,max=100"},
}

func lookupField(key string) (field, bool) {
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

// Delta is a partial settings update decoded from a frame payload
type Delta struct {
	bools map[string]bool
	ints  map[string]int
}

func (d Delta) Len() int {
	return len(d.bools) + len(d.ints)
}

func (d Delta) Bool(key string) (bool, bool) {
	v, ok := d.bools[key]
	return v, ok
}

func (d Delta) Int(key string) (int, bool) {
	v, ok := d.ints[key]
	return v, ok
}

// Apply returns s with every key in the delta overwritten
func (d Delta) Apply(s dataType.MinimapSettings) dataType.MinimapSettings {
	for _, f := range fields {
		if f.boolPtr != nil {
			if v, ok := d.bools[f.key]; ok {
				*f.boolPtr(&s) = v
			}
		} else if v, ok := d.ints[f.key]; ok {
			*f.intPtr(&s) = v
		}
	}
	return s
}

// ParseDelta decodes "loots=0,codes=1". Unknown keys and bad values are
// skipped and reported; the rest of the payload is still returned.
func ParseDelta(payload string) (Delta, error) {
	d := Delta{bools: make(map[string]bool), ints: make(map[string]int)}
	payload = strings.TrimSpace(payload)
	if payload == "" || payload == dataType.NullPayload {
		return d, nil
	}

	var errs []error
	for _, part := range strings.Split(payload, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, raw, found := strings.Cut(part, "=")
		if !found {
			errs = append(errs, fmt.Errorf("%w: entry %q has no value", ErrMalformedPayload, part))
			continue
		}
		key = strings.TrimSpace(key)
		raw = strings.TrimSpace(raw)

		f, ok := lookupField(key)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: unknown key %q", ErrMalformedPayload, key))
			continue
		}
		if f.boolPtr != nil {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q is not a bool", ErrMalformedPayload, key, raw))
				continue
			}
			d.bools[key] = v
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q is not an integer", ErrMalformedPayload, key, raw))
			continue
		}
		if err := validate.Var(v, f.rule); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%d out of range", ErrMalformedPayload, key, v))
			continue
		}
		d.ints[key] = v
	}
	return d, errors.Join(errs...)
}

// FormatPayload encodes every setting, booleans as 0/1
func FormatPayload(s dataType.MinimapSettings) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		var v string
		if f.boolPtr != nil {
			if *f.boolPtr(&s) {
				v = "1"
			} else {
				v = "0"
			}
		} else {
			v = strconv.Itoa(*f.intPtr(&s))
		}
		parts = append(parts, f.key+"="+v)
	}
	return strings.Join(parts, ",")
}

// Validate checks the struct tags on MinimapSettings
func Validate(s dataType.MinimapSettings) error {
	return validate.Struct(s)
}
