// Package apperror provides tests for the custom error types and utility functions.
package apperror

import (
	"errors"
	"net/http"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeValidation, "request is invalid"),
			expected: "[VALIDATION_ERROR] request is invalid",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeInvalidLocode, "not a UN/LOCODE", "origin"),
			expected: "[INVALID_LOCODE] not a UN/LOCODE (field: origin)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, CodeInternal, "wrapped error")

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     ErrorCode
		expected int
	}{
		{"validation", CodeValidation, http.StatusBadRequest},
		{"invalid locode", CodeInvalidLocode, http.StatusBadRequest},
		{"same origin destination", CodeSameOriginDest, http.StatusBadRequest},
		{"port not found", CodePortNotFound, http.StatusNotFound},
		{"deadline exceeded", CodeDeadlineExceeded, http.StatusRequestTimeout},
		{"overloaded", CodeOverloaded, http.StatusTooManyRequests},
		{"backend unavailable", CodeBackendUnavailable, http.StatusServiceUnavailable},
		{"graph build failed", CodeGraphBuildFailed, http.StatusServiceUnavailable},
		{"internal", CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "test message")
			if got := err.HTTPStatus(); got != tt.expected {
				t.Errorf("HTTPStatus() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	err := New(CodeValidation, "request is invalid")

	if err.Code != CodeValidation {
		t.Errorf("Code = %v, want %v", err.Code, CodeValidation)
	}
	if err.Message != "request is invalid" {
		t.Errorf("Message = %v, want %v", err.Message, "request is invalid")
	}
	if err.Severity != SeverityError {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityError)
	}
}

func TestNewWarning(t *testing.T) {
	err := NewWarning(CodeGraphDisconnected, "unreachable ports present")

	if err.Severity != SeverityWarning {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityWarning)
	}
}

func TestNewCritical(t *testing.T) {
	err := NewCritical(CodeInternal, "critical failure")

	if err.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityCritical)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "invalid").
		WithDetails("origin", "ZZZZZ").
		WithDetails("destination", "YYYYY")

	if err.Details["origin"] != "ZZZZZ" {
		t.Errorf("Details[origin] = %v, want ZZZZZ", err.Details["origin"])
	}
	if err.Details["destination"] != "YYYYY" {
		t.Errorf("Details[destination] = %v, want YYYYY", err.Details["destination"])
	}
}

func TestWithField(t *testing.T) {
	err := New(CodeInvalidLocode, "invalid").WithField("origin")

	if err.Field != "origin" {
		t.Errorf("Field = %v, want origin", err.Field)
	}
}

func TestWithSeverity(t *testing.T) {
	err := New(CodeValidation, "invalid").WithSeverity(SeverityCritical)

	if err.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityCritical)
	}
}

func TestIs(t *testing.T) {
	err := New(CodePortNotFound, "port not found")

	if !Is(err, CodePortNotFound) {
		t.Error("Is() should return true for matching code")
	}
	if Is(err, CodeValidation) {
		t.Error("Is() should return false for non-matching code")
	}
	if Is(errors.New("regular error"), CodePortNotFound) {
		t.Error("Is() should return false for non-Error")
	}
}

func TestCode(t *testing.T) {
	err := New(CodeNoRouteFound, "no route")

	if Code(err) != CodeNoRouteFound {
		t.Errorf("Code() = %v, want %v", Code(err), CodeNoRouteFound)
	}

	regularErr := errors.New("regular error")
	if Code(regularErr) != CodeInternal {
		t.Errorf("Code() for regular error = %v, want %v", Code(regularErr), CodeInternal)
	}
}

func TestIsWarning(t *testing.T) {
	warning := NewWarning(CodeGraphDisconnected, "unreachable ports")
	err := New(CodeValidation, "invalid")

	if !IsWarning(warning) {
		t.Error("IsWarning() should return true for warning")
	}
	if IsWarning(err) {
		t.Error("IsWarning() should return false for error")
	}
}

func TestIsCritical(t *testing.T) {
	critical := NewCritical(CodeInternal, "critical")
	err := New(CodeValidation, "invalid")

	if !IsCritical(critical) {
		t.Error("IsCritical() should return true for critical")
	}
	if IsCritical(err) {
		t.Error("IsCritical() should return false for error")
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.expected {
			t.Errorf("Severity.String() = %v, want %v", got, tt.expected)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	t.Run("new validation errors", func(t *testing.T) {
		ve := NewValidationErrors()
		if ve.HasErrors() {
			t.Error("new ValidationErrors should not have errors")
		}
		if ve.HasWarnings() {
			t.Error("new ValidationErrors should not have warnings")
		}
		if !ve.IsValid() {
			t.Error("new ValidationErrors should be valid")
		}
	})

	t.Run("add error", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddError(CodeValidation, "invalid vessel")

		if !ve.HasErrors() {
			t.Error("should have errors")
		}
		if ve.IsValid() {
			t.Error("should not be valid")
		}
		if len(ve.Errors) != 1 {
			t.Errorf("errors count = %d, want 1", len(ve.Errors))
		}
	})

	t.Run("add warning", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddWarning(CodeGraphDisconnected, "unreachable ports")

		if !ve.HasWarnings() {
			t.Error("should have warnings")
		}
		if !ve.IsValid() {
			t.Error("should be valid (warnings don't affect validity)")
		}
	})

	t.Run("add error with field", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddErrorWithField(CodeInvalidLocode, "invalid", "origin")

		if ve.Errors[0].Field != "origin" {
			t.Errorf("Field = %v, want origin", ve.Errors[0].Field)
		}
	})

	t.Run("add via Add method", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.Add(NewWarning(CodeGraphDisconnected, "warning"))
		ve.Add(New(CodeValidation, "error"))

		if len(ve.Warnings) != 1 {
			t.Errorf("warnings count = %d, want 1", len(ve.Warnings))
		}
		if len(ve.Errors) != 1 {
			t.Errorf("errors count = %d, want 1", len(ve.Errors))
		}
	})

	t.Run("merge", func(t *testing.T) {
		ve1 := NewValidationErrors()
		ve1.AddError(CodeValidation, "error1")

		ve2 := NewValidationErrors()
		ve2.AddError(CodeInvalidLocode, "error2")
		ve2.AddWarning(CodeGraphDisconnected, "warning")

		ve1.Merge(ve2)

		if len(ve1.Errors) != 2 {
			t.Errorf("errors count = %d, want 2", len(ve1.Errors))
		}
		if len(ve1.Warnings) != 1 {
			t.Errorf("warnings count = %d, want 1", len(ve1.Warnings))
		}
	})

	t.Run("merge nil", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.Merge(nil)
	})

	t.Run("error messages", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddError(CodeValidation, "error1")
		ve.AddError(CodeInvalidLocode, "error2")

		messages := ve.ErrorMessages()
		if len(messages) != 2 {
			t.Errorf("messages count = %d, want 2", len(messages))
		}
	})

	t.Run("warning messages", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddWarning(CodeGraphDisconnected, "warning1")

		messages := ve.WarningMessages()
		if len(messages) != 1 {
			t.Errorf("messages count = %d, want 1", len(messages))
		}
		if messages[0] != "warning1" {
			t.Errorf("message = %v, want warning1", messages[0])
		}
	})
}

func TestPredefinedErrors(t *testing.T) {
	predefinedErrors := []*Error{
		ErrSameOriginDestination,
		ErrNoRouteFound,
		ErrGraphDisconnected,
		ErrDeadlineExceeded,
		ErrOverloaded,
		ErrNilInput,
	}

	for _, err := range predefinedErrors {
		if err == nil {
			t.Error("predefined error should not be nil")
			continue
		}
		if err.Code == "" {
			t.Error("predefined error should have a code")
		}
		if err.Message == "" {
			t.Error("predefined error should have a message")
		}
	}
}
