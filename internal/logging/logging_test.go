package logging

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	require.NoError(t, Setup("debug", "json"))
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	require.NoError(t, Setup("warn", "text"))
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	assert.Error(t, Setup("loud", "json"))
	assert.Error(t, Setup("info", "xml"))
}

func TestWithComponentAndFields(t *testing.T) {
	entry := WithComponentAndFields("pricing", log.Fields{"asin": "B000TEST01"})

	assert.Equal(t, "pricing", entry.Data["component"])
	assert.Equal(t, "B000TEST01", entry.Data["asin"])
	assert.Equal(t, "pricing", WithComponent("pricing").Data["component"])
}

func TestMaskSensitiveData(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"AKIA1234", "AKIA***"},
		{"Atzr|IwEBIExampleRefreshToken", "Atzr***oken"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskSensitiveData(tt.in), tt.in)
	}
}
