// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package strategydoc

import (
	"fmt"

	"github.com/blsforme/provision-disk/errors"
)

// Severity distinguishes a diagnostic that short-circuits its containing
// strategy from one that is merely noted and parsing continues.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// DiagnosticKind taxonomizes why a diagnostic was raised. Callers compare on
// this, not on the formatted Message.
type DiagnosticKind int

const (
	UnknownType DiagnosticKind = iota
	UnknownVariant
	UnsupportedNode
	UnsupportedValue
	MissingNode
	MissingProperty
	MissingEntry
	InvalidType
	InvalidArguments
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnknownType:
		return "unknown type"
	case UnknownVariant:
		return "unknown variant"
	case UnsupportedNode:
		return "unsupported node"
	case UnsupportedValue:
		return "unsupported value"
	case MissingNode:
		return "missing node"
	case MissingProperty:
		return "missing property"
	case MissingEntry:
		return "missing entry"
	case InvalidType:
		return "invalid type"
	case InvalidArguments:
		return "invalid arguments"
	default:
		return "unknown"
	}
}

// Span locates a diagnostic in the source document, 1-based as reported by
// the scanner.
type Span struct {
	Line   int
	Column int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Diagnostic is a source-spanned parse problem. It is a typed value,
// distinct from error, so callers can branch on Kind rather than on a
// formatted string — but ToError gives it an escape hatch into the rest of
// the repository's error handling at the point it crosses into logging or
// CLI reporting.
type Diagnostic struct {
	Span     Span
	Severity Severity
	Kind     DiagnosticKind
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s (%s)", d.Span, d.Severity, d.Message, d.Kind)
}

// ToError wraps the diagnostic as a ValidationError, the convention this
// repository uses for any failure attributable to bad input.
func (d Diagnostic) ToError() error {
	return errors.ValidationErrorf("%s", d.String())
}

// Fatal reports whether this diagnostic's severity should short-circuit the
// strategy it belongs to.
func (d Diagnostic) Fatal() bool {
	return d.Severity == SeverityError
}
