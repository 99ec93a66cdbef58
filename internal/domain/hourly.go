package domain

import (
	"fmt"
	"strconv"
	"time"
)

// HoursPerDay bounds the hour keys of an hourly schedule.
const HoursPerDay = 24

// GenerationParams selects what a quote is about and how it sounds.
// In an hourly override any field may be empty, meaning "use the default".
type GenerationParams struct {
	Theme    string `json:"theme,omitempty"    koanf:"theme"`
	Tone     string `json:"tone,omitempty"     koanf:"tone"`
	Audience string `json:"audience,omitempty" koanf:"audience"`
}

// HourlyConfig maps the hour of day to generation parameters.
// It is loaded once at startup and passed around by value; nothing mutates it.
type HourlyConfig struct {
	// Default is used for every field an hourly override leaves empty.
	Default GenerationParams

	// Hourly holds overrides keyed by hour (0-23).
	Hourly map[int]GenerationParams
}

// HourlyParameters are the fully resolved parameters for one generation.
type HourlyParameters struct {
	Theme    string
	Tone     string
	Audience string
	Hour     int
}

// ResolveHourlyParameters picks the parameters for now.Hour(). Each field
// falls back to the default independently. The caller converts now into the
// configured location first; this function never reads the clock.
func ResolveHourlyParameters(cfg HourlyConfig, now time.Time) HourlyParameters {
	hour := now.Hour()
	override := cfg.Hourly[hour]

	return HourlyParameters{
		Theme:    firstNonEmpty(override.Theme, cfg.Default.Theme),
		Tone:     firstNonEmpty(override.Tone, cfg.Default.Tone),
		Audience: firstNonEmpty(override.Audience, cfg.Default.Audience),
		Hour:     hour,
	}
}

// ParseHourlyOverrides converts string-keyed overrides (as found in config
// files, e.g. {"9": {...}}) into hour-keyed ones.
func ParseHourlyOverrides(raw map[string]GenerationParams) (map[int]GenerationParams, error) {
	out := make(map[int]GenerationParams, len(raw))

	for key, params := range raw {
		hour, err := strconv.Atoi(key)
		if err != nil || hour < 0 || hour >= HoursPerDay {
			return nil, NewValidationErrorWithValue(
				"hourly",
				fmt.Sprintf("hour key %q must be an integer between 0 and 23", key),
				key,
			)
		}

		out[hour] = params
	}

	return out, nil
}

// Validate checks that every default field is set.
func (c HourlyConfig) Validate() error {
	switch {
	case c.Default.Theme == "":
		return NewValidationError("default.theme", "is required")
	case c.Default.Tone == "":
		return NewValidationError("default.tone", "is required")
	case c.Default.Audience == "":
		return NewValidationError("default.audience", "is required")
	}

	for hour := range c.Hourly {
		if hour < 0 || hour >= HoursPerDay {
			return NewValidationErrorWithValue("hourly", "hour out of range", hour)
		}
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
