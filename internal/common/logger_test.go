package common

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", input: "debug", want: slog.LevelDebug},
		{name: "default", input: "", want: slog.LevelInfo},
		{name: "warn", input: "warn", want: slog.LevelWarn},
		{name: "error", input: "error", want: slog.LevelError},
		{name: "unknown", input: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogOptions{Level: "info", Format: "json"})
	require.NoError(t, err)

	logger.Info("parsed page", "page", 3)
	assert.Contains(t, buf.String(), `"page":3`)

	_, err = NewLogger(&buf, LogOptions{Format: "xml"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sift.log")
	var buf bytes.Buffer

	logger, err := NewLogger(&buf, LogOptions{Level: "debug", File: path})
	require.NoError(t, err)
	logger.Debug("hello file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Contains(t, buf.String(), "hello file")
}

func TestUserError(t *testing.T) {
	err := NewUserError("cannot read workbook", ErrMissingInput)
	assert.Equal(t, "cannot read workbook: input not found", err.Error())
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.True(t, IsAbort(err))

	colErr := MissingColumnsError([]string{"MATRICULE"}, []string{"NOM"})
	assert.ErrorIs(t, colErr, ErrMissingColumn)
	assert.Contains(t, colErr.Error(), "MATRICULE")
	assert.False(t, IsAbort(ErrOutputLocked))
}
