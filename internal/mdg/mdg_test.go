package mdg

import (
	"testing"
	"time"

	"main/internal/schema"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	specs := []schema.InstrumentSpec{
		{Instrument: schema.InstrumentReference, Name: "FUT", TickSize: 100, MinBid: 1, MaxAsk: 100000000},
		{Instrument: schema.InstrumentTradable, Name: "ETF", TickSize: 100, MinBid: 1, MaxAsk: 100000000},
	}
	for _, spec := range specs {
		if err := reg.Add(spec); err != nil {
			t.Fatalf("add %s: %v", spec.Name, err)
		}
	}
	return reg
}

func testGenerator(t *testing.T, seed int64) *Generator {
	t.Helper()
	gen, err := NewGenerator(testRegistry(t), Config{
		Seed:        seed,
		BasePrice:   10000,
		TickSize:    100,
		Premium:     200,
		StepTicks:   2,
		Correlation: 0.9,
		BaseVolume:  50,
	})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return gen
}

func TestGeneratorAlternatesInstruments(t *testing.T) {
	gen := testGenerator(t, 1)
	now := time.Unix(0, 0)

	first := gen.Next(now)
	second := gen.Next(now)
	if first.Symbol != "FUT" || second.Symbol != "ETF" {
		t.Fatalf("symbols = %s, %s, want FUT, ETF", first.Symbol, second.Symbol)
	}
}

func TestGeneratorBooksAreWellFormed(t *testing.T) {
	gen := testGenerator(t, 2)
	now := time.Unix(0, 0)

	for i := 0; i < 200; i++ {
		book := gen.Next(now)
		if book.BidPrices[0] >= book.AskPrices[0] {
			t.Fatalf("crossed book at frame %d: bid %d ask %d", i, book.BidPrices[0], book.AskPrices[0])
		}
		for level := 0; level < schema.TopLevelCount; level++ {
			if book.BidPrices[level]%100 != 0 || book.AskPrices[level]%100 != 0 {
				t.Fatalf("off-grid price at frame %d level %d", i, level)
			}
			if book.BidVolumes[level] <= 0 || book.AskVolumes[level] <= 0 {
				t.Fatalf("empty level at frame %d level %d", i, level)
			}
			if level > 0 {
				if book.BidPrices[level] >= book.BidPrices[level-1] {
					t.Fatalf("bids not descending at frame %d", i)
				}
				if book.AskPrices[level] <= book.AskPrices[level-1] {
					t.Fatalf("asks not ascending at frame %d", i)
				}
			}
		}
	}
}

func TestGeneratorDeterministicPerSeed(t *testing.T) {
	a := testGenerator(t, 7)
	b := testGenerator(t, 7)
	now := time.Unix(0, 0)

	for i := 0; i < 50; i++ {
		if a.Next(now) != b.Next(now) {
			t.Fatalf("walks diverged at frame %d", i)
		}
	}
}

func TestNormalizeMapsInstrumentAndSeq(t *testing.T) {
	reg := testRegistry(t)
	norm := NewNormalizer(reg)
	gen := testGenerator(t, 3)

	raw := gen.Next(time.Unix(1, 0))
	header, book, err := norm.Normalize(9, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if header.Type != schema.EventBookUpdate || header.Seq != 9 {
		t.Fatalf("header = %+v", header)
	}
	if book.Instrument != schema.InstrumentReference {
		t.Fatalf("instrument = %v, want reference", book.Instrument)
	}
	if book.BidPrices[0] != raw.BidPrices[0] {
		t.Fatalf("bid = %d, want %d", book.BidPrices[0], raw.BidPrices[0])
	}
}

func TestNormalizeUnknownSymbol(t *testing.T) {
	norm := NewNormalizer(testRegistry(t))
	if _, _, err := norm.Normalize(1, RawBook{Symbol: "BOND"}); err == nil {
		t.Fatalf("expected error for unknown symbol")
	}
}
