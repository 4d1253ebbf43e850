// Package errors provides classified errors for docbuild.
//
// A ClassifiedError carries a category, a severity and structured context so
// callers can decide how to report a failure without string matching.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory groups errors by the subsystem that produced them.
type ErrorCategory string

const (
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryToolchain     ErrorCategory = "toolchain"
	CategoryBuild         ErrorCategory = "build"
	CategoryFileSystem    ErrorCategory = "filesystem"
	CategoryValidation    ErrorCategory = "validation"
	CategoryStorage       ErrorCategory = "storage"
)

// ErrorSeverity indicates how a classified error should be surfaced.
type ErrorSeverity string

const (
	SeverityWarning ErrorSeverity = "warning"
	SeverityError   ErrorSeverity = "error"
	SeverityFatal   ErrorSeverity = "fatal"
)

// ClassifiedError is an error with category, severity and context attached.
type ClassifiedError struct {
	Category ErrorCategory
	Severity ErrorSeverity
	Message  string
	Cause    error
	Context  map[string]any
}

func (e *ClassifiedError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Category))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *ClassifiedError) Unwrap() error { return e.Cause }

// Builder provides a fluent API for creating ClassifiedError instances.
type Builder struct {
	err ClassifiedError
}

// NewError creates a Builder with the given category and message.
func NewError(category ErrorCategory, message string) *Builder {
	return &Builder{err: ClassifiedError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
	}}
}

// WrapError creates a Builder wrapping an existing error.
func WrapError(err error, category ErrorCategory, message string) *Builder {
	b := NewError(category, message)
	b.err.Cause = err
	return b
}

// WithSeverity sets the error severity.
func (b *Builder) WithSeverity(severity ErrorSeverity) *Builder {
	b.err.Severity = severity
	return b
}

// WithContext adds a context key-value pair.
func (b *Builder) WithContext(key string, value any) *Builder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]any)
	}
	b.err.Context[key] = value
	return b
}

// Build finalizes the error.
func (b *Builder) Build() *ClassifiedError {
	e := b.err
	if e.Context != nil {
		ctx := make(map[string]any, len(e.Context))
		for k, v := range e.Context {
			ctx[k] = v
		}
		e.Context = ctx
	}
	return &e
}

// CategoryOf returns the category of err if it is (or wraps) a
// ClassifiedError, or an empty category otherwise.
func CategoryOf(err error) ErrorCategory {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}
