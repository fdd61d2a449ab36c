package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *MappingError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s [%s]\n", severityIcon(e.Severity), categoryDisplayName(e.Category), e.Code)
	if e.Line > 0 {
		fmt.Fprintf(&b, "Line %d:\n", e.Line)
	}
	fmt.Fprintf(&b, "  %s\n", e.Message)

	if e.Subject != "" {
		fmt.Fprintf(&b, "  Subject: %s\n", e.Subject)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, "  Detail:  %s\n", e.Detail)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", e.Suggestion)
	}

	return b.String()
}

// FormatErrorList returns a formatted string of all errors
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d error(s)\n\n", len(errors))
	for i, err := range errors {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
		}
		b.WriteString(err.Format())
	}
	return b.String()
}

// FormatCompact returns a compact one-line error format
func FormatCompact(e *MappingError) string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s [%s]", e.Line, e.Message, e.Code)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code)
}

func severityIcon(severity ErrorSeverity) string {
	switch severity {
	case SeverityError:
		return "❌"
	case SeverityWarning:
		return "⚠️ "
	default:
		return "❓"
	}
}

func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategoryLiteral:
		return "Literal Error"
	case CategoryMetadata:
		return "Metadata Error"
	case CategoryProgram:
		return "Program Error"
	case CategorySnapshot:
		return "Snapshot Error"
	default:
		return "Mapping Error"
	}
}
