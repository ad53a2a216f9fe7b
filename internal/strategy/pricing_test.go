package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTickRounding(t *testing.T) {
	if got := CeilTick(decimal.NewFromInt(10001), 100); got != 10100 {
		t.Fatalf("ceil = %d, want 10100", got)
	}
	if got := CeilTick(decimal.NewFromInt(10100), 100); got != 10100 {
		t.Fatalf("ceil on grid = %d, want 10100", got)
	}
	if got := FloorTick(decimal.NewFromInt(10099), 100); got != 10000 {
		t.Fatalf("floor = %d, want 10000", got)
	}
}

func TestFeeAdjustedPrices(t *testing.T) {
	rate := decimal.RequireFromString("0.0003")

	// 10000 * 1.0003 = 10003, asks round up to the next tick
	if got := AskAfterFees(10000, rate, 100); got != 10100 {
		t.Fatalf("ask = %d, want 10100", got)
	}
	// 10000 * 0.9997 = 9997, bids round down
	if got := BidAfterFees(10000, rate, 100); got != 9900 {
		t.Fatalf("bid = %d, want 9900", got)
	}

	// zero rate stays on the touch when already tick aligned
	if got := AskAfterFees(10000, decimal.Zero, 100); got != 10000 {
		t.Fatalf("zero-rate ask = %d, want 10000", got)
	}
}
