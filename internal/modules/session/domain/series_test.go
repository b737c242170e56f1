package domain_test

import (
	"math"
	"math/rand"
	"reflect"
	"strconv"
	"testing"

	"thermolab/internal/modules/session/domain"
)

func TestDeriveSeriesWorkedExample(t *testing.T) {
	t.Parallel()
	readings := []domain.Reading{
		reading("10", "38", domain.LowAltitude),
		reading("", "5", domain.HighAltitude),
		reading("5", "36", domain.LowAltitude),
	}
	got := domain.DeriveSeries(readings)
	want := domain.Series{
		Low:  []domain.Point{{Ambient: 5, Bird: 36}, {Ambient: 10, Bird: 38}},
		High: []domain.Point{},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestDeriveSeriesIsPureAndIdempotent(t *testing.T) {
	t.Parallel()
	readings := []domain.Reading{
		reading("20", "39", domain.HighAltitude),
		reading("5", "36", domain.LowAltitude),
		reading("x", "36", domain.LowAltitude),
		reading("12", "37", domain.HighAltitude),
	}
	before := append([]domain.Reading(nil), readings...)
	first := domain.DeriveSeries(readings)
	second := domain.DeriveSeries(readings)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("series differ across calls: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(readings, before) {
		t.Fatalf("input readings were modified")
	}
}

func TestDeriveSeriesStableForEqualAmbient(t *testing.T) {
	t.Parallel()
	readings := []domain.Reading{
		reading("8", "37.1", domain.LowAltitude),
		reading("8", "36.9", domain.LowAltitude),
		reading("3", "36", domain.LowAltitude),
		reading("8", "37.5", domain.LowAltitude),
	}
	got := domain.DeriveSeries(readings).Low
	want := []domain.Point{
		{Ambient: 3, Bird: 36},
		{Ambient: 8, Bird: 37.1},
		{Ambient: 8, Bird: 36.9},
		{Ambient: 8, Bird: 37.5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ties must keep input order: got %v want %v", got, want)
	}
}

func TestDeriveSeriesPartitionsEveryValidReadingOnce(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		var readings []domain.Reading
		wantValid := 0
		n := rng.Intn(25)
		for i := 0; i < n; i++ {
			ambient := strconv.Itoa(rng.Intn(40) - 10)
			if rng.Intn(5) == 0 {
				ambient = ""
			}
			behavior := domain.LowAltitude
			if rng.Intn(2) == 0 {
				behavior = domain.HighAltitude
			}
			r := reading(ambient, strconv.Itoa(35+rng.Intn(5)), behavior)
			if r.Valid() {
				wantValid++
			}
			readings = append(readings, r)
		}
		series := domain.DeriveSeries(readings)
		if series.Len() != wantValid {
			t.Fatalf("round %d: expected %d points, got %d", round, wantValid, series.Len())
		}
		for _, line := range [][]domain.Point{series.Low, series.High} {
			for i := 1; i < len(line); i++ {
				if line[i-1].Ambient > line[i].Ambient {
					t.Fatalf("round %d: series not sorted: %v", round, line)
				}
			}
		}
		lowCount := 0
		for _, r := range domain.ValidReadings(readings) {
			if r.Behavior == domain.LowAltitude {
				lowCount++
			}
		}
		if len(series.Low) != lowCount {
			t.Fatalf("round %d: expected %d low points, got %d", round, lowCount, len(series.Low))
		}
	}
}

func TestScatterOffsetsCopiesOnly(t *testing.T) {
	t.Parallel()
	series := domain.DeriveSeries([]domain.Reading{
		reading("10", "38", domain.LowAltitude),
		reading("10", "39", domain.HighAltitude),
	})
	scatter := series.Scatter(0.2)
	if math.Abs(scatter.Low[0].Ambient-9.8) > 1e-9 || math.Abs(scatter.High[0].Ambient-10.2) > 1e-9 {
		t.Fatalf("unexpected scatter offsets: %+v", scatter)
	}
	if series.Low[0].Ambient != 10 || series.High[0].Ambient != 10 {
		t.Fatalf("trend series must stay unshifted: %+v", series)
	}
}
