package idempotency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey_StableAcrossParamOrder(t *testing.T) {
	a := GenerateKey(ScopeSubscriptionInvoice, map[string]any{"subscription_id": 7, "period_start": "2026-10-05"})
	b := GenerateKey(ScopeSubscriptionInvoice, map[string]any{"period_start": "2026-10-05", "subscription_id": 7})

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "subscription_invoice-"))
	assert.Len(t, strings.TrimPrefix(a, "subscription_invoice-"), 16)
}

func TestGenerateKey_DiffersPerPeriod(t *testing.T) {
	oct := GenerateKey(ScopeSubscriptionInvoice, map[string]any{"subscription_id": 7, "period_start": "2026-10-05"})
	nov := GenerateKey(ScopeSubscriptionInvoice, map[string]any{"subscription_id": 7, "period_start": "2026-11-05"})

	assert.NotEqual(t, oct, nov)
	assert.True(t, ValidateKey(ScopeSubscriptionInvoice, map[string]any{"subscription_id": 7, "period_start": "2026-10-05"}, oct))
	assert.False(t, ValidateKey(ScopeSubscriptionInvoice, map[string]any{"subscription_id": 8, "period_start": "2026-10-05"}, oct))
}
