// Package domain contains the core domain types for the mempool feed.
package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	satsPerBTC     = 100_000_000
	maxBlockVBytes = 1_000_000

	// ETALabel is the fixed expected confirmation time of the next block.
	ETALabel = "~10 min"
)

// ErrMalformedBlock is returned when a raw block cannot produce a snapshot.
var ErrMalformedBlock = errors.New("malformed mempool block")

var printer = message.NewPrinter(language.English)

// RawBlock is a projected block as reported by mempool.space.
type RawBlock struct {
	BlockSize  float64   `json:"blockSize"`
	BlockVSize float64   `json:"blockVSize"`
	NTx        int64     `json:"nTx"`
	TotalFees  float64   `json:"totalFees"`
	MedianFee  float64   `json:"medianFee"`
	FeeRange   []float64 `json:"feeRange"`
}

// BlockSnapshot is the normalized, display-ready view of the next projected block.
// It is comparable with ==.
type BlockSnapshot struct {
	MedianFeeRate    int64
	MinFee           string
	MaxFee           string
	TotalValue       string
	TransactionCount int64
	Fullness         int
}

// NewSnapshot normalizes raw into a snapshot.
func NewSnapshot(raw RawBlock) (BlockSnapshot, error) {
	if len(raw.FeeRange) == 0 {
		return BlockSnapshot{}, fmt.Errorf("%w: empty fee range", ErrMalformedBlock)
	}
	if raw.NTx < 0 {
		return BlockSnapshot{}, fmt.Errorf("%w: negative transaction count", ErrMalformedBlock)
	}
	for _, v := range append([]float64{raw.BlockVSize, raw.TotalFees, raw.MedianFee}, raw.FeeRange...) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return BlockSnapshot{}, fmt.Errorf("%w: value %v out of range", ErrMalformedBlock, v)
		}
	}

	fullness := int(math.Round(raw.BlockVSize / maxBlockVBytes * 100))
	if fullness > 100 {
		fullness = 100
	}

	return BlockSnapshot{
		MedianFeeRate:    int64(math.Round(raw.MedianFee)),
		MinFee:           FormatFee(raw.FeeRange[0]),
		MaxFee:           FormatFee(raw.FeeRange[len(raw.FeeRange)-1]),
		TotalValue:       decimal.NewFromFloat(raw.TotalFees).Shift(-8).StringFixed(3),
		TransactionCount: raw.NTx,
		Fullness:         fullness,
	}, nil
}

// FormatFee renders a fee rate: integer at 100 and above, one decimal from 10, else two.
func FormatFee(f float64) string {
	d := decimal.NewFromFloat(f)
	switch {
	case f >= 100:
		return d.Round(0).String()
	case f >= 10:
		return d.StringFixed(1)
	default:
		return d.StringFixed(2)
	}
}

// FormatCount renders n with English digit grouping.
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// MedianLabel renders "~43 sat/vB".
func (s BlockSnapshot) MedianLabel() string {
	return fmt.Sprintf("~%d sat/vB", s.MedianFeeRate)
}

// RangeLabel renders "5.00 - 120 sat/vB".
func (s BlockSnapshot) RangeLabel() string {
	return fmt.Sprintf("%s - %s sat/vB", s.MinFee, s.MaxFee)
}

// TotalLabel renders "2.500 BTC".
func (s BlockSnapshot) TotalLabel() string {
	return s.TotalValue + " BTC"
}

// CountLabel renders "3,142 transactions".
func (s BlockSnapshot) CountLabel() string {
	return FormatCount(s.TransactionCount) + " transactions"
}

// FullnessLabel renders "87% full".
func (s BlockSnapshot) FullnessLabel() string {
	return fmt.Sprintf("%d%% full", s.Fullness)
}

// Lines returns the content lines in display order.
func (s BlockSnapshot) Lines() []string {
	return []string{
		s.MedianLabel(),
		s.RangeLabel(),
		s.TotalLabel(),
		s.CountLabel(),
		ETALabel,
	}
}

// Pulses reports whether moving from prev to s deserves a heartbeat.
func (s BlockSnapshot) Pulses(prev BlockSnapshot) bool {
	return s.TransactionCount != prev.TransactionCount || s.MedianFeeRate != prev.MedianFeeRate
}

// HeightLabel renders a block height with digit grouping, "800,001".
func HeightLabel(height int64) string {
	return FormatCount(height)
}
