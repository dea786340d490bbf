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
	"fmt"
	"io"

	"github.com/bundleplan/bundleplan/cmd/bundleplan/version"
)

// Stream is the destination every view writes to. Keeping the io.Writer
// behind one type lets tests capture everything a command prints.
type Stream struct {
	Writer io.Writer
}

func NewStream(w io.Writer) *Stream {
	return &Stream{Writer: w}
}

func (s *Stream) Println(args ...any) {
	fmt.Fprintln(s.Writer, args...)
}

func (s *Stream) Printf(format string, args ...any) {
	fmt.Fprintf(s.Writer, format, args...)
}

// PrintVersion writes the build's version block to the stream.
func (s *Stream) PrintVersion() {
	version.Fprint(s.Writer)
}
