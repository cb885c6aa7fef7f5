package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"agency-billing/internal/logger"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.log")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	require.NoError(t, logger.Setup(logger.LogConfig{Level: "DEBUG", Format: "json", Output: path}))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log := logger.WithComponent("invoice")
	log.Info().Str("invoice_number", "INV/2024/0001").Msg("invoice created")

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"component":"invoice"`)
	assert.Contains(t, string(body), `"invoice_number":"INV/2024/0001"`)
}

func TestSetup_RejectsUnknownLevel(t *testing.T) {
	assert.Error(t, logger.Setup(logger.LogConfig{Level: "chatty"}))
}
