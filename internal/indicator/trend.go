package indicator

import (
	"main/internal/schema"
)

// Ichimoku lookbacks.
const (
	ConversionLookback = 9
	BaseLookback       = 26
	SpanBLookback      = 52
)

// Lines holds one evaluation of the trend indicator over a price
// window: conversion and base midlines plus the two cloud spans.
type Lines struct {
	Conversion  schema.Price
	Base        schema.Price
	SpanA       schema.Price
	SpanB       schema.Price
	CloudTop    schema.Price
	CloudBottom schema.Price
}

// Trend evaluates Ichimoku-style lines over a rolling price window.
// One instance per side of the market.
type Trend struct {
	prices *Window[schema.Price]
}

// NewTrend allocates a trend indicator sized to the longest lookback.
func NewTrend() *Trend {
	return &Trend{prices: NewWindow[schema.Price](SpanBLookback)}
}

// Push appends a price sample.
func (t *Trend) Push(p schema.Price) {
	t.prices.Push(p)
}

// Ready reports whether the longest lookback is satisfied.
func (t *Trend) Ready() bool {
	return t.prices.Len() >= SpanBLookback
}

// Lines computes all lines. ErrInsufficientSamples until Ready.
func (t *Trend) Lines() (Lines, error) {
	conv, err := midline(t.prices, ConversionLookback)
	if err != nil {
		return Lines{}, err
	}
	base, err := midline(t.prices, BaseLookback)
	if err != nil {
		return Lines{}, err
	}
	spanB, err := midline(t.prices, SpanBLookback)
	if err != nil {
		return Lines{}, err
	}

	lines := Lines{
		Conversion: conv,
		Base:       base,
		SpanA:      (conv + base) / 2,
		SpanB:      spanB,
	}
	if lines.SpanA >= lines.SpanB {
		lines.CloudTop, lines.CloudBottom = lines.SpanA, lines.SpanB
	} else {
		lines.CloudTop, lines.CloudBottom = lines.SpanB, lines.SpanA
	}
	return lines, nil
}

func midline(w *Window[schema.Price], lookback int) (schema.Price, error) {
	min, max, err := Extrema(w, lookback)
	if err != nil {
		return 0, err
	}
	return (min + max) / 2, nil
}
