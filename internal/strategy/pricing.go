package strategy

import (
	"github.com/shopspring/decimal"

	"main/internal/schema"
)

// CeilTick rounds a price up to the tick grid.
func CeilTick(p decimal.Decimal, tick schema.Price) schema.Price {
	t := decimal.NewFromInt(int64(tick))
	return schema.Price(p.Div(t).Ceil().Mul(t).IntPart())
}

// FloorTick rounds a price down to the tick grid.
func FloorTick(p decimal.Decimal, tick schema.Price) schema.Price {
	t := decimal.NewFromInt(int64(tick))
	return schema.Price(p.Div(t).Floor().Mul(t).IntPart())
}

// AskAfterFees lifts a touch price by the fee rate and rounds up to
// the tick grid, so a sell at the result still clears fees. Ask prices
// always round up.
func AskAfterFees(touch schema.Price, rate decimal.Decimal, tick schema.Price) schema.Price {
	p := decimal.NewFromInt(int64(touch)).Mul(decimal.NewFromInt(1).Add(rate))
	return CeilTick(p, tick)
}

// BidAfterFees cuts a touch price by the fee rate and rounds down to
// the tick grid, so a buy at the result still clears fees. Bid prices
// always round down.
func BidAfterFees(touch schema.Price, rate decimal.Decimal, tick schema.Price) schema.Price {
	p := decimal.NewFromInt(int64(touch)).Mul(decimal.NewFromInt(1).Sub(rate))
	return FloorTick(p, tick)
}

// clampPrice pins a price into the tradable bounds.
func clampPrice(p, min, max schema.Price) schema.Price {
	if p < min {
		return min
	}
	if p > max {
		return max
	}
	return p
}
