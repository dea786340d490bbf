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

// Package view renders bundleplan command output.
//
// A command talks to a Viewer, which bundles the format-specific result
// rendering with the logger for that format: the human view prints colored
// text and plan YAML with tint-style logs, the JSON view prints one
// machine-readable object per result with JSON logs. Both write through a
// Stream, a thin wrapper over the destination io.Writer.
package view
