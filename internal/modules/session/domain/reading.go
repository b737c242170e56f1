package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "thermolab/internal/platform/errors"
)

// Temperature is a Celsius value or the unset sentinel. The zero value is unset.
type Temperature struct {
	value float64
	set   bool
}

// Celsius returns a set temperature, or unset when v is NaN or infinite.
func Celsius(v float64) Temperature {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Temperature{}
	}
	return Temperature{value: v, set: true}
}

// ParseTemperature never fails: anything that is not a finite number becomes
// unset so half-typed cell input can be stored as-is.
func ParseTemperature(raw string) Temperature {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Temperature{}
	}
	return Celsius(v)
}

func (t Temperature) IsSet() bool { return t.set }

func (t Temperature) Value() (float64, bool) { return t.value, t.set }

// String is the transport form of the value; unset renders empty.
func (t Temperature) String() string {
	if !t.set {
		return ""
	}
	return strconv.FormatFloat(t.value, 'f', -1, 64)
}

type Behavior string

const (
	LowAltitude  Behavior = "Low Altitude"
	HighAltitude Behavior = "High Altitude"
)

func Behaviors() []Behavior {
	return []Behavior{LowAltitude, HighAltitude}
}

func ParseBehavior(raw string) (Behavior, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low altitude", "low":
		return LowAltitude, nil
	case "high altitude", "high":
		return HighAltitude, nil
	default:
		return "", fmt.Errorf("%w: behavior %q", apperrors.ErrInvalidInput, raw)
	}
}

// Next cycles to the other behavior; used by select-style inputs.
func (b Behavior) Next() Behavior {
	if b == HighAltitude {
		return LowAltitude
	}
	return HighAltitude
}

type Field string

const (
	FieldAmbient  Field = "ambient"
	FieldBird     Field = "bird"
	FieldBehavior Field = "behavior"
)

func ParseField(raw string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(raw))); f {
	case FieldAmbient, FieldBird, FieldBehavior:
		return f, nil
	default:
		return "", fmt.Errorf("%w: field %q", apperrors.ErrInvalidInput, raw)
	}
}

type Reading struct {
	Ambient  Temperature
	Bird     Temperature
	Behavior Behavior
}

// NewReading is the empty row appended by AddRow.
func NewReading() Reading {
	return Reading{Behavior: LowAltitude}
}

// Valid reports whether both temperatures are set. Only valid readings are
// charted and submitted.
func (r Reading) Valid() bool {
	return r.Ambient.IsSet() && r.Bird.IsSet()
}

// WithField returns a copy of r with field replaced by the parsed raw value.
func (r Reading) WithField(field Field, raw string) (Reading, error) {
	switch field {
	case FieldAmbient:
		r.Ambient = ParseTemperature(raw)
	case FieldBird:
		r.Bird = ParseTemperature(raw)
	case FieldBehavior:
		b, err := ParseBehavior(raw)
		if err != nil {
			return Reading{}, err
		}
		r.Behavior = b
	default:
		return Reading{}, fmt.Errorf("%w: field %q", apperrors.ErrInvalidInput, field)
	}
	return r, nil
}

// ValidReadings keeps the valid readings in their original order.
func ValidReadings(readings []Reading) []Reading {
	out := make([]Reading, 0, len(readings))
	for _, r := range readings {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}
