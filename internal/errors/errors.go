// Package errors provides structured error values for the mapping exporter.
// Every failure carries a stable code, a category and an optional suggestion,
// and can be rendered for the terminal or as JSON for tooling.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode string

// ErrorCategory represents the category of a mapping error
type ErrorCategory string

const (
	// CategoryLiteral covers values the literal formatter cannot express
	CategoryLiteral ErrorCategory = "literal"
	// CategoryMetadata covers inconsistent class-metadata graphs
	CategoryMetadata ErrorCategory = "metadata"
	// CategoryProgram covers parsing and executing exported programs
	CategoryProgram ErrorCategory = "program"
	// CategorySnapshot covers snapshot documents and class lookup
	CategorySnapshot ErrorCategory = "snapshot"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError aborts the current operation
	SeverityError ErrorSeverity = "error"
	// SeverityWarning reports a potential issue
	SeverityWarning ErrorSeverity = "warning"
)

const (
	// ErrUnsupportedValueKind indicates a value outside the literal domain
	ErrUnsupportedValueKind ErrorCode = "EXP001"
	// ErrInconsistentMetadata indicates a class-metadata graph that cannot be exported
	ErrInconsistentMetadata ErrorCode = "EXP002"
	// ErrProgramSyntax indicates a program text that cannot be parsed
	ErrProgramSyntax ErrorCode = "EXP003"
	// ErrProgramExecution indicates a program that cannot be loaded
	ErrProgramExecution ErrorCode = "EXP004"
	// ErrClassNotFound indicates a class name no source could resolve
	ErrClassNotFound ErrorCode = "EXP005"
	// ErrSnapshotInvalid indicates a malformed metadata snapshot
	ErrSnapshotInvalid ErrorCode = "EXP006"
)

// MappingError is a structured error raised by the exporter toolchain
type MappingError struct {
	Code       ErrorCode     `json:"code"`
	Type       string        `json:"type"`
	Category   ErrorCategory `json:"category"`
	Severity   ErrorSeverity `json:"severity"`
	Message    string        `json:"message"`
	Subject    string        `json:"subject,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Line       int           `json:"line,omitempty"`
}

// Error implements the error interface
func (e *MappingError) Error() string {
	return FormatCompact(e)
}

// Format returns a human-readable error message for terminal output
func (e *MappingError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as a JSON string
func (e *MappingError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithSubject records the offending value or metadata object
func (e *MappingError) WithSubject(subject string) *MappingError {
	e.Subject = subject
	return e
}

// WithDetail sets additional detail for the error
func (e *MappingError) WithDetail(detail string) *MappingError {
	e.Detail = detail
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *MappingError) WithSuggestion(suggestion string) *MappingError {
	e.Suggestion = suggestion
	return e
}

// WithLine sets the program line the error refers to
func (e *MappingError) WithLine(line int) *MappingError {
	e.Line = line
	return e
}

// ErrorList is a collection of mapping errors
type ErrorList []*MappingError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// HasErrors returns true if the list contains any errors (excludes warnings)
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err returns nil for an empty list and the list itself otherwise
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// HasCode reports whether err, or any error it wraps, carries code.
// ErrorList values match when any member does.
func HasCode(err error, code ErrorCode) bool {
	var list ErrorList
	if stderrors.As(err, &list) {
		for _, e := range list {
			if e.Code == code {
				return true
			}
		}
	}
	var me *MappingError
	if stderrors.As(err, &me) {
		return me.Code == code
	}
	return false
}

// NewUnsupportedValueKind creates an EXP001 error
func NewUnsupportedValueKind(value interface{}) *MappingError {
	return newError(
		ErrUnsupportedValueKind,
		"unsupported_value_kind",
		CategoryLiteral,
		fmt.Sprintf("value of kind %T cannot be expressed as a literal", value),
	).WithSubject(fmt.Sprintf("%#v", value)).
		WithSuggestion("Use booleans, integers, strings, nil, sequences or string-keyed maps")
}

// NewInconsistentMetadata creates an EXP002 error
func NewInconsistentMetadata(subject, reason string) *MappingError {
	return newError(
		ErrInconsistentMetadata,
		"inconsistent_metadata",
		CategoryMetadata,
		fmt.Sprintf("inconsistent metadata for %s: %s", subject, reason),
	).WithSubject(subject)
}

// NewProgramSyntax creates an EXP003 error
func NewProgramSyntax(line int, reason string) *MappingError {
	return newError(
		ErrProgramSyntax,
		"program_syntax",
		CategoryProgram,
		fmt.Sprintf("syntax error: %s", reason),
	).WithLine(line)
}

// NewProgramExecution creates an EXP004 error
func NewProgramExecution(reason string) *MappingError {
	return newError(
		ErrProgramExecution,
		"program_execution",
		CategoryProgram,
		fmt.Sprintf("cannot load program: %s", reason),
	)
}

// NewClassNotFound creates an EXP005 error
func NewClassNotFound(className string) *MappingError {
	return newError(
		ErrClassNotFound,
		"class_not_found",
		CategorySnapshot,
		fmt.Sprintf("class metadata for %q not found", className),
	).WithSubject(className).
		WithSuggestion("Check the class name or add the snapshot that declares it")
}

// NewSnapshotInvalid creates an EXP006 error
func NewSnapshotInvalid(source, reason string) *MappingError {
	return newError(
		ErrSnapshotInvalid,
		"snapshot_invalid",
		CategorySnapshot,
		fmt.Sprintf("invalid snapshot %s: %s", source, reason),
	).WithSubject(source)
}

func newError(code ErrorCode, typ string, category ErrorCategory, message string) *MappingError {
	return &MappingError{
		Code:     code,
		Type:     typ,
		Category: category,
		Severity: SeverityError,
		Message:  message,
	}
}
