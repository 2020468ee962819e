package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestShiftPay(t *testing.T) {
	start := time.Date(2026, 6, 20, 16, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		end   time.Time
		rate  string
		hours float64
		pay   string
	}{
		{"whole hours", start.Add(6 * time.Hour), "25", 6, "150"},
		{"half hour", start.Add(7*time.Hour + 30*time.Minute), "18.50", 7.5, "138.75"},
		{"twenty minutes rounds hours", start.Add(20 * time.Minute), "30", 0.33, "9.9"},
		{"zero rate", start.Add(4 * time.Hour), "0", 4, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hours, pay := ShiftPay(start, tc.end, decimal.RequireFromString(tc.rate))
			assert.Equal(t, tc.hours, hours)
			assert.True(t, decimal.RequireFromString(tc.pay).Equal(pay), "pay %s", pay)
		})
	}
}
