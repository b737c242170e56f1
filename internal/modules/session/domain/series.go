package domain

import (
	"cmp"
	"slices"
)

type Point struct {
	Ambient float64
	Bird    float64
}

// Series is the chart view of a reading list: one trend line per behavior,
// each sorted ascending by ambient temperature.
type Series struct {
	Low  []Point
	High []Point
}

// DeriveSeries filters valid readings, stable-sorts them by ambient
// temperature and splits them by behavior. It never modifies readings.
func DeriveSeries(readings []Reading) Series {
	valid := ValidReadings(readings)
	slices.SortStableFunc(valid, func(a, b Reading) int {
		return cmp.Compare(a.Ambient.value, b.Ambient.value)
	})
	out := Series{Low: []Point{}, High: []Point{}}
	for _, r := range valid {
		p := Point{Ambient: r.Ambient.value, Bird: r.Bird.value}
		if r.Behavior == HighAltitude {
			out.High = append(out.High, p)
		} else {
			out.Low = append(out.Low, p)
		}
	}
	return out
}

func (s Series) Len() int { return len(s.Low) + len(s.High) }

// Scatter returns copies of the series with Low shifted left and High shifted
// right by jitter degrees so coincident readings stay distinguishable. Trend
// lines must keep using the unshifted series.
func (s Series) Scatter(jitter float64) Series {
	return Series{Low: shift(s.Low, -jitter), High: shift(s.High, jitter)}
}

func shift(points []Point, by float64) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{Ambient: p.Ambient + by, Bird: p.Bird}
	}
	return out
}
