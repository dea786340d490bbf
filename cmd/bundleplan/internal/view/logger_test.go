// Copyright 2026 The bundleplan Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package view_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bundleplan/bundleplan/cmd/bundleplan/internal/view"
)

func setupHumanLogger(level view.LogLevel) (*bytes.Buffer, view.Logger) {
	buf := &bytes.Buffer{}
	stream := view.NewStream(buf)
	humanView := view.NewHumanView(stream, level)
	return buf, humanView.Logger()
}

func setupJsonLogger(level view.LogLevel) (*bytes.Buffer, view.Logger) {
	buf := &bytes.Buffer{}
	stream := view.NewStream(buf)
	jsonView := view.NewJSONView(stream, level)
	return buf, jsonView.Logger()
}

func TestHumanLogger_Debug(t *testing.T) {
	buf, logger := setupHumanLogger(view.LogLevelDebug)
	logger.Debug("test debug message")

	output := buf.String()
	assert.Contains(t, output, "DEBUG")
	assert.Contains(t, output, "test debug message")
}

func TestHumanLogger_Info(t *testing.T) {
	buf, logger := setupHumanLogger(view.LogLevelInfo)
	logger.Info("test info message")

	output := buf.String()
	assert.Contains(t, output, "INFO")
	assert.Contains(t, output, "test info message")
}

func TestHumanLogger_LevelFiltersDebug(t *testing.T) {
	buf, logger := setupHumanLogger(view.LogLevelInfo)
	logger.Debug("should not appear")
	logger.Warn("should appear")

	output := buf.String()
	assert.NotContains(t, output, "should not appear")
	assert.Contains(t, output, "should appear")
}

func TestJsonLogger_Info(t *testing.T) {
	buf, logger := setupJsonLogger(view.LogLevelInfo)
	logger.Info("test info message", "file", "bundle.yaml")

	output := buf.String()
	assert.Contains(t, output, `"msg":"test info message"`)
	assert.Contains(t, output, `"file":"bundle.yaml"`)
}

func TestSilentLevelDiscardsEverything(t *testing.T) {
	buf, logger := setupHumanLogger(view.LogLevelSilent)
	logger.Error("even errors are silent")

	assert.Empty(t, buf.String())
}

func TestParseOutputFormat(t *testing.T) {
	vt, err := view.ParseOutputFormat("")
	assert.NoError(t, err)
	assert.Equal(t, view.ViewHuman, vt)

	vt, err = view.ParseOutputFormat("json")
	assert.NoError(t, err)
	assert.Equal(t, view.ViewJSON, vt)

	vt, err = view.ParseOutputFormat("yaml")
	assert.NoError(t, err)
	assert.Equal(t, view.ViewHuman, vt)

	_, err = view.ParseOutputFormat("xml")
	assert.Error(t, err)
}
