// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package xerr defines the typed error shared by every stage of the
// recompiler pipeline, mirroring the per-backend Error type naga's
// HLSL backend uses but generalized to one shared type for a single
// throughline pipeline instead of independent backends.
package xerr

import "fmt"

// Kind categorizes a recompiler failure.
type Kind uint8

const (
	// BadContainer indicates a magic mismatch, nonzero reserved field, or
	// a zero constant-table offset.
	BadContainer Kind = iota

	// UnsupportedConstant indicates a constant record with register_set
	// == Int4.
	UnsupportedConstant

	// UnmappedVertexAttribute indicates a vertex element with no entry in
	// the fixed usage-location table.
	UnmappedVertexAttribute

	// MissingInterpolator indicates a vertex-shader export_data
	// instruction targeting a vector_dest absent from the interpolator
	// map.
	MissingInterpolator

	// MissingVertexElement indicates a vertex-fetch instruction whose
	// address is not present in vertex_elements.
	MissingVertexElement

	// ToolNotFound indicates a downstream compiler binary was not found
	// on PATH.
	ToolNotFound

	// CompileFailed indicates a downstream compiler invocation returned
	// a nonzero exit status.
	CompileFailed
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case BadContainer:
		return "BadContainer"
	case UnsupportedConstant:
		return "UnsupportedConstant"
	case UnmappedVertexAttribute:
		return "UnmappedVertexAttribute"
	case MissingInterpolator:
		return "MissingInterpolator"
	case MissingVertexElement:
		return "MissingVertexElement"
	case ToolNotFound:
		return "ToolNotFound"
	case CompileFailed:
		return "CompileFailed"
	default:
		return "Unknown"
	}
}

// Span identifies a byte range within the container the error pertains to.
type Span struct {
	Start uint32
	End   uint32
}

// Error is the shared error type of the recompiler pipeline.
type Error struct {
	Kind    Kind
	Message string
	Span    *Span
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("xenorecomp %s at [%d:%d]: %s", e.Kind, e.Span.Start, e.Span.End, e.Message)
	}
	return fmt.Sprintf("xenorecomp %s: %s", e.Kind, e.Message)
}

// New creates an Error without span information.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error without span information, formatting the message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewWithSpan creates an Error carrying a source span.
func NewWithSpan(kind Kind, message string, start, end uint32) *Error {
	return &Error{Kind: kind, Message: message, Span: &Span{Start: start, End: end}}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
