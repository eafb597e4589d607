/*
Copyright © 2026 the Porygon authors.
This file is part of Porygon.

Porygon is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Porygon is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Porygon.  If not, see <http://www.gnu.org/licenses/>.
*/

package porygon

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ValidationError is returned when input is malformed or would violate
// an invariant of the structure being built.
type ValidationError struct {
	Op     string // Operation that rejected the input.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("porygon: %s: %s", e.Op, e.Reason)
}

func validationErrorf(op, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedInputError is returned when a validator does not recognize
// the type of its input.
type UnsupportedInputError struct {
	Op   string
	Type string
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("porygon: %s: unsupported input type %s", e.Op, e.Type)
}

// WarningKind classifies a ConfigurationWarning.
type WarningKind int

const (
	// NumericIndex means polygon identifiers are numeric, which
	// some map renderers do not key correctly.
	NumericIndex WarningKind = iota
	// TooManyCategories means a categorical map has more categories
	// than available colors and the color key was truncated.
	TooManyCategories
)

func (k WarningKind) String() string {
	switch k {
	case NumericIndex:
		return "numeric index"
	case TooManyCategories:
		return "too many categories"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// ConfigurationWarning is a non-fatal problem with the way a structure
// was configured. Processing continues after one is raised.
type ConfigurationWarning struct {
	Kind    WarningKind
	Message string
}

func (w ConfigurationWarning) Error() string {
	return fmt.Sprintf("porygon: warning: %s", w.Message)
}

// Warn logs w to log and returns it.
func Warn(log logrus.FieldLogger, kind WarningKind, format string, args ...interface{}) ConfigurationWarning {
	w := ConfigurationWarning{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("warning", kind.String()).Warn(w.Message)
	return w
}

func quoteAll(s []string) string {
	q := make([]string, len(s))
	for i, v := range s {
		q[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(q, ", ")
}
