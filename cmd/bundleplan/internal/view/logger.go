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

package view

import (
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
)

// LogLevel orders CLI verbosity from most to least chatty.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	// LogLevelSilent suppresses log output entirely.
	LogLevelSilent
)

// levelOff sits above every slog level, so a handler configured with it
// drops all records.
const levelOff = slog.Level(100)

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	}
	return levelOff
}

// Logger is the leveled logging surface commands use. It mirrors slog's
// method set without exposing the handler behind it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// slogAdapter satisfies Logger by delegating to a configured slog.Logger.
type slogAdapter struct {
	l *slog.Logger
}

var _ Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }

// colorLevel is a ReplaceAttr hook that colors the level name of human log
// lines. Attributes inside groups are left alone.
func colorLevel(groups []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey || len(groups) > 0 {
		return attr
	}
	level := attr.Value.Any().(slog.Level)
	text := level.String()
	switch level {
	case slog.LevelDebug:
		text = "DEBUG"
	case slog.LevelInfo:
		text = color.GreenString("INFO")
	case slog.LevelWarn:
		text = color.YellowString("WARN")
	case slog.LevelError:
		text = color.RedString("ERROR")
	}
	attr.Value = slog.StringValue(text)
	return attr
}

// NewHumanLogger returns a tint-backed logger writing colored, timestamped
// lines to w.
func NewHumanLogger(w io.Writer, level LogLevel) Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:       level.slogLevel(),
		TimeFormat:  time.DateTime,
		ReplaceAttr: colorLevel,
	})
	return &slogAdapter{l: slog.New(handler)}
}

// NewJSONLogger returns a logger emitting one JSON object per record to w.
func NewJSONLogger(w io.Writer, level LogLevel) Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level.slogLevel()})
	return &slogAdapter{l: slog.New(handler)}
}

// NewNopLogger returns a logger that discards every record.
func NewNopLogger() Logger {
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: levelOff})
	return &slogAdapter{l: slog.New(handler)}
}
