package core_test

import (
	"testing"

	"agency-billing/internal/core"

	"github.com/stretchr/testify/assert"
)

func TestNextInvoiceNumber(t *testing.T) {
	tests := []struct {
		name   string
		last   string
		prefix string
		year   int
		want   string
	}{
		{"first in scope", "", "INV", 2024, "INV/2024/0001"},
		{"increments", "INV/2024/0041", "INV", 2024, "INV/2024/0042"},
		{"year rollover resets", "INV/2023/0099", "INV", 2024, "INV/2024/0001"},
		{"prefix change resets", "OLD/2024/0007", "INV", 2024, "INV/2024/0001"},
		{"malformed tail resets", "INV/2024/abc", "INV", 2024, "INV/2024/0001"},
		{"grows past four digits", "INV/2024/9999", "INV", 2024, "INV/2024/10000"},
		{"prefix that is a prefix of another", "INVX/2024/0005", "INV", 2024, "INV/2024/0001"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, core.NextInvoiceNumber(tc.last, tc.prefix, tc.year))
		})
	}
}

func TestNextInvoiceNumber_StrictlyIncreasing(t *testing.T) {
	last := ""
	for i := 1; i <= 25; i++ {
		next := core.NextInvoiceNumber(last, "AG", 2025)
		if last != "" {
			assert.Greater(t, next, last)
		}
		last = next
	}
	assert.Equal(t, "AG/2025/0025", last)
}
