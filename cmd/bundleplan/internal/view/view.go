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

// Viewer selects how command results are rendered. Each view also owns the
// logger matching its format, so a JSON run never interleaves human log
// lines into machine-readable output.
type Viewer interface {
	Logger() Logger
}

var (
	_ Viewer = (*HumanView)(nil)
	_ Viewer = (*JSONView)(nil)
)

// NewViewer builds the view for the requested output format. ViewNone is a
// programming error, not a user input, hence the panic.
func NewViewer(vt ViewType, s *Stream, level LogLevel) Viewer {
	switch vt {
	case ViewHuman:
		return NewHumanView(s, level)
	case ViewJSON:
		return NewJSONView(s, level)
	}
	panic("unknown view type")
}

// HumanView renders results as colored text and plan YAML for operators.
type HumanView struct {
	*Stream
	logger Logger
}

func NewHumanView(s *Stream, level LogLevel) *HumanView {
	v := &HumanView{Stream: s, logger: NewNopLogger()}
	if level != LogLevelSilent {
		v.logger = NewHumanLogger(s.Writer, level)
	}
	return v
}

func (v *HumanView) Logger() Logger { return v.logger }

// JSONView renders every result as a single JSON object per line.
type JSONView struct {
	*Stream
	logger Logger
}

func NewJSONView(s *Stream, level LogLevel) *JSONView {
	v := &JSONView{Stream: s, logger: NewNopLogger()}
	if level != LogLevelSilent {
		v.logger = NewJSONLogger(s.Writer, level)
	}
	return v
}

func (v *JSONView) Logger() Logger { return v.logger }
