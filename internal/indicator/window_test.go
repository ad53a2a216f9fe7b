package indicator

import (
	"errors"
	"testing"

	"main/pkg/exception"
)

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow[float64](3)
	for _, v := range []float64{10, 20, 30, 40} {
		w.Push(v)
	}

	if w.Len() != 3 {
		t.Fatalf("len = %d, want 3", w.Len())
	}
	want := []float64{20, 30, 40}
	got := w.Values()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("values = %v, want %v", got, want)
		}
	}
	if last, ok := w.Last(); !ok || last != 40 {
		t.Fatalf("last = %v %v, want 40 true", last, ok)
	}
}

func TestWindowPartialFill(t *testing.T) {
	w := NewWindow[int64](5)
	w.Push(7)
	w.Push(9)

	if w.Full() {
		t.Fatalf("window should not be full at 2/5")
	}
	if w.Len() != 2 {
		t.Fatalf("len = %d, want 2", w.Len())
	}
	if w.At(0) != 7 || w.At(1) != 9 {
		t.Fatalf("values = %v, want [7 9]", w.Values())
	}
}

func TestMeanStdDevRequiresTwoSamples(t *testing.T) {
	w := NewWindow[float64](10)
	w.Push(50)

	if _, _, err := MeanStdDev(w); !errors.Is(err, exception.ErrInsufficientSamples) {
		t.Fatalf("got %v, want ErrInsufficientSamples", err)
	}

	w.Push(60)
	mean, stddev, err := MeanStdDev(w)
	if err != nil {
		t.Fatalf("mean/stddev: %v", err)
	}
	if mean != 55 {
		t.Fatalf("mean = %v, want 55", mean)
	}
	// sample stddev of {50, 60}
	if stddev < 7.0710 || stddev > 7.0711 {
		t.Fatalf("stddev = %v, want ~7.07107", stddev)
	}
}

func TestCombinedStdDev(t *testing.T) {
	if got := CombinedStdDev(10, 4); got != 6 {
		t.Fatalf("combined = %v, want 6", got)
	}
	if got := CombinedStdDev(4, 4); got != 0 {
		t.Fatalf("combined = %v, want 0", got)
	}
}

func TestExtremaLookback(t *testing.T) {
	w := NewWindow[int64](8)
	for _, v := range []int64{5, 9, 1, 7, 3} {
		w.Push(v)
	}

	min, max, err := Extrema(w, 3)
	if err != nil {
		t.Fatalf("extrema: %v", err)
	}
	if min != 1 || max != 7 {
		t.Fatalf("extrema = [%d, %d], want [1, 7]", min, max)
	}

	if _, _, err := Extrema(w, 6); !errors.Is(err, exception.ErrInsufficientSamples) {
		t.Fatalf("got %v, want ErrInsufficientSamples", err)
	}
}
