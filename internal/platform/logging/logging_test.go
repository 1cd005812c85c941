// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cinesync/internal/platform/logging"
)

/*
TestNewWithWriter_JSON verifies the app attribute and the debug level switch.
*/
func TestNewWithWriter_JSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buffer bytes.Buffer
	logger := logging.NewWithWriter(&buffer, "json", true, "cinesync")

	logger.Debug("sync_started", slog.String("kind", "movie"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &record))
	assert.Equal(t, "cinesync", record["app"])
	assert.Equal(t, "sync_started", record["msg"])
	assert.Equal(t, "movie", record["kind"])
}

/*
TestNewWithWriter_InfoLevel drops debug records outside debug mode.
*/
func TestNewWithWriter_InfoLevel(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buffer bytes.Buffer
	logger := logging.NewWithWriter(&buffer, "text", false, "cinesync")

	logger.Debug("hidden")
	assert.Empty(t, buffer.String())

	logger.Info("visible")
	assert.Contains(t, buffer.String(), "msg=visible")
}
