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

package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bundleplan/bundleplan/pkg/constraints"
)

// StructuralError indicates a malformed document: an unknown reference, bad
// endpoint syntax, a duplicate identifier. The operator must fix the bundle.
type StructuralError struct {
	// Subject names the offending entity (application, machine, or
	// relation reference).
	Subject string
	Err     error
}

func (e *StructuralError) Error() string { return fmt.Sprintf("%s: %v", e.Subject, e.Err) }
func (e *StructuralError) Unwrap() error { return e.Err }

// ConstraintError indicates an unparseable or unsatisfiable resource or
// placement constraint.
type ConstraintError struct {
	// Subject names the machine or application carrying the constraint.
	Subject string
	// Unmet lists the requested values no machine could satisfy. Empty for
	// parse failures.
	Unmet []constraints.Value
	Err   error
}

func (e *ConstraintError) Error() string { return fmt.Sprintf("%s: %v", e.Subject, e.Err) }
func (e *ConstraintError) Unwrap() error { return e.Err }

// GraphError indicates a cycle in the dependency graph.
type GraphError struct {
	// Cycle is the minimal cycle found, closed on its first node.
	Cycle []string
	Err   error
}

func (e *GraphError) Error() string { return e.Err.Error() }
func (e *GraphError) Unwrap() error { return e.Err }

// CompatibilityError indicates that a relation's endpoints are incompatible
// or that endpoint metadata is missing.
type CompatibilityError struct {
	// Relation is the source form of the offending relation.
	Relation string
	Err      error
}

func (e *CompatibilityError) Error() string { return fmt.Sprintf("%s: %v", e.Relation, e.Err) }
func (e *CompatibilityError) Unwrap() error { return e.Err }

// IsStructural reports whether err (or any error in its chain) is a
// StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// IsConstraint reports whether err (or any error in its chain) is a
// ConstraintError.
func IsConstraint(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// IsCompatibility reports whether err (or any error in its chain) is a
// CompatibilityError.
func IsCompatibility(err error) bool {
	var ce *CompatibilityError
	return errors.As(err, &ce)
}

func structuralf(subject, format string, a ...any) error {
	return &StructuralError{Subject: subject, Err: fmt.Errorf(format, a...)}
}

func constraintErr(subject string, err error) error {
	return &ConstraintError{Subject: subject, Err: err}
}

// ErrorList aggregates the errors of one pipeline stage. Stages collect
// every problem they find rather than failing on the first, so an operator
// fixing a bundle sees all of them at once.
type ErrorList struct {
	Errors []error
}

// Append adds errs to the list, flattening nested ErrorLists.
func (l *ErrorList) Append(errs ...error) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		var nested *ErrorList
		if errors.As(err, &nested) {
			l.Errors = append(l.Errors, nested.Errors...)
			continue
		}
		l.Errors = append(l.Errors, err)
	}
}

// OrNil returns the list as an error, or nil when no errors were collected.
func (l *ErrorList) OrNil() error {
	if len(l.Errors) == 0 {
		return nil
	}
	return l
}

func (l *ErrorList) Error() string {
	if len(l.Errors) == 1 {
		return l.Errors[0].Error()
	}
	msgs := make([]string, 0, len(l.Errors))
	for _, err := range l.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d problems found: %s", len(l.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (l *ErrorList) Unwrap() []error { return l.Errors }

// AsErrorList unwraps err to an *ErrorList, wrapping a bare error into a
// single-element list so callers can always iterate.
func AsErrorList(err error) *ErrorList {
	if err == nil {
		return nil
	}
	var list *ErrorList
	if errors.As(err, &list) {
		return list
	}
	return &ErrorList{Errors: []error{err}}
}
