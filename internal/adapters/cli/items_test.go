package cli

import (
	"testing"

	ierr "agency-billing/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"Design:2:1500", "Hosting: 2024-03: renewal:1:999.50"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Design", items[0].Description)
	assert.Equal(t, "2", items[0].Quantity.String())
	assert.Equal(t, "1500", items[0].Rate.String())

	assert.Equal(t, "Hosting: 2024-03: renewal", items[1].Description)
	assert.Equal(t, "999.5", items[1].Rate.String())
}

func TestParseItems_Rejects(t *testing.T) {
	for _, raw := range []string{"Design", "Design:2", "Design:two:100", "Design:1:abc"} {
		_, err := parseItems([]string{raw})
		require.Error(t, err, raw)
		assert.True(t, ierr.IsValidation(err), raw)
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("invoice-id", "12")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	for _, raw := range []string{"0", "-3", "x"} {
		_, err := parseID("invoice-id", raw)
		assert.True(t, ierr.IsValidation(err), raw)
	}
}
