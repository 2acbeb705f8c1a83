package domain

import (
	"errors"
	"math"
	"testing"
)

func TestNewSnapshot(t *testing.T) {
	raw := RawBlock{
		BlockVSize: 997_812.5,
		NTx:        3142,
		TotalFees:  250_000_000,
		MedianFee:  42.6,
		FeeRange:   []float64{5, 8.3, 12, 20, 40, 80, 120.4},
	}

	s, err := NewSnapshot(raw)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"median", s.MedianLabel(), "~43 sat/vB"},
		{"range", s.RangeLabel(), "5.00 - 120 sat/vB"},
		{"total", s.TotalLabel(), "2.500 BTC"},
		{"count", s.CountLabel(), "3,142 transactions"},
		{"fullness", s.FullnessLabel(), "100% full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	lines := s.Lines()
	if len(lines) != 5 || lines[4] != "~10 min" {
		t.Errorf("lines = %v", lines)
	}
}

func TestFormatFee(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.234, "1.23"},
		{9.999, "10.00"},
		{10, "10.0"},
		{12.34, "12.3"},
		{99.94, "99.9"},
		{100, "100"},
		{150.6, "151"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := FormatFee(tt.in); got != tt.want {
			t.Errorf("FormatFee(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewSnapshot_Fullness(t *testing.T) {
	s, err := NewSnapshot(RawBlock{BlockVSize: 512_000, FeeRange: []float64{1}})
	if err != nil {
		t.Fatal(err)
	}
	if s.Fullness != 51 {
		t.Errorf("fullness = %d, want 51", s.Fullness)
	}
}

func TestNewSnapshot_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  RawBlock
	}{
		{"empty fee range", RawBlock{NTx: 10}},
		{"negative count", RawBlock{NTx: -1, FeeRange: []float64{1}}},
		{"nan fee", RawBlock{MedianFee: math.NaN(), FeeRange: []float64{1}}},
		{"inf vsize", RawBlock{BlockVSize: math.Inf(1), FeeRange: []float64{1}}},
		{"negative range entry", RawBlock{FeeRange: []float64{-2, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSnapshot(tt.raw); !errors.Is(err, ErrMalformedBlock) {
				t.Errorf("err = %v, want ErrMalformedBlock", err)
			}
		})
	}
}

func TestSnapshot_Pulses(t *testing.T) {
	base := BlockSnapshot{MedianFeeRate: 10, TransactionCount: 100, TotalValue: "0.100"}

	if base.Pulses(base) {
		t.Error("identical snapshot should not pulse")
	}
	other := base
	other.TotalValue = "0.200"
	if other.Pulses(base) {
		t.Error("total change alone should not pulse")
	}
	other.TransactionCount = 101
	if !other.Pulses(base) {
		t.Error("tx count change should pulse")
	}
	if other == base {
		t.Error("snapshots should differ")
	}
}

func TestHeightLabel(t *testing.T) {
	if got := HeightLabel(800001); got != "800,001" {
		t.Errorf("HeightLabel = %q", got)
	}
}
