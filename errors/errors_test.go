package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection timeout", ErrConnectionTimeout, true},
		{"connection lost", ErrConnectionLost, true},
		{"storage unavailable", ErrStorageUnavailable, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"parsing failed", ErrParsingFailed, false},
		{"timeout in message", fmt.Errorf("operation timeout occurred"), true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsTransient(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"parsing failed", ErrParsingFailed, true},
		{"duplicate name", ErrDuplicateName, true},
		{"teardown order", ErrTeardownOrder, true},
		{"wrapped unknown parent", fmt.Errorf("ctx: %w", ErrUnknownParent), true},
		{"connection timeout", ErrConnectionTimeout, false},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsInvalid(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("nil should not be fatal")
	}
	if IsFatal(ErrInvalidConfig) {
		t.Error("unclassified sentinel should not be fatal")
	}
	if !IsFatal(WrapFatal(fmt.Errorf("boom"), "Registry", "Shutdown", "drain")) {
		t.Error("WrapFatal result should be fatal")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil error", nil, ErrorTransient},
		{"connection timeout", ErrConnectionTimeout, ErrorTransient},
		{"duplicate name", ErrDuplicateName, ErrorInvalid},
		{"unknown error", fmt.Errorf("unknown error"), ErrorInvalid},
		{"classified error", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, ErrorFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Classify(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestClassifiedError_NoMessage(t *testing.T) {
	baseErr := fmt.Errorf("base error")
	ce := newClassified(ErrorTransient, baseErr, "testComponent", "testOperation", "")

	if ce.Error() != "base error" {
		t.Errorf("expected 'base error', got %s", ce.Error())
	}
	if !errors.Is(ce, baseErr) {
		t.Error("classified error should unwrap to base error")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "a", "b", "c") != nil {
		t.Error("wrapping nil should return nil")
	}

	result := Wrap(fmt.Errorf("original error"), "Resolver", "Resolve", "load json")
	expected := "Resolver.Resolve: load json failed: original error"
	if result == nil || result.Error() != expected {
		t.Errorf("expected '%s', got '%v'", expected, result)
	}
}

func TestWrapClassified(t *testing.T) {
	baseErr := fmt.Errorf("original error")

	tests := []struct {
		name     string
		wrapFunc func(error, string, string, string) error
		class    ErrorClass
	}{
		{"WrapTransient", WrapTransient, ErrorTransient},
		{"WrapFatal", WrapFatal, ErrorFatal},
		{"WrapInvalid", WrapInvalid, ErrorInvalid},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.wrapFunc(baseErr, "component", "method", "action")

			var ce *ClassifiedError
			if !errors.As(result, &ce) {
				t.Fatal("result should be a ClassifiedError")
			}
			if ce.Class != test.class {
				t.Errorf("expected %v, got %v", test.class, ce.Class)
			}
			if ce.Component != "component" || ce.Operation != "method" {
				t.Errorf("unexpected component/operation %s/%s", ce.Component, ce.Operation)
			}
			if !strings.Contains(ce.Error(), "component.method: action failed") {
				t.Errorf("error should contain standard format, got: %s", ce.Error())
			}
		})
	}
}

func TestWrapKind(t *testing.T) {
	cause := fmt.Errorf("disk read")

	t.Run("sentinel and cause reachable", func(t *testing.T) {
		err := WrapKind(ErrLoaderFailure, cause, "Resolver", "Resolve", "load")
		if !errors.Is(err, ErrLoaderFailure) {
			t.Error("expected ErrLoaderFailure in chain")
		}
		if !errors.Is(err, cause) {
			t.Error("expected cause in chain")
		}
		if Classify(err) != ErrorInvalid {
			t.Errorf("expected invalid, got %v", Classify(err))
		}
	})

	t.Run("transient loader cause stays transient", func(t *testing.T) {
		err := WrapKind(ErrLoaderFailure, ErrConnectionLost, "Resolver", "Resolve", "load")
		if !IsTransient(err) {
			t.Error("expected transient classification")
		}
	})

	t.Run("nil cause", func(t *testing.T) {
		err := WrapKind(ErrDuplicateName, nil, "Context", "Create", "name check")
		if !errors.Is(err, ErrDuplicateName) {
			t.Error("expected ErrDuplicateName in chain")
		}
		if !strings.HasPrefix(err.Error(), "Context.Create: name check failed") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})
}

func TestRetryConfig_ShouldRetry(t *testing.T) {
	config := DefaultRetryConfig()

	if !config.ShouldRetry(ErrConnectionLost, 0) {
		t.Error("transient error should be retried on first attempt")
	}
	if config.ShouldRetry(ErrConnectionLost, config.MaxRetries) {
		t.Error("should not retry once MaxRetries is reached")
	}
	if config.ShouldRetry(ErrDuplicateName, 0) {
		t.Error("invalid error should not be retried")
	}

	config.RetryableErrors = []error{ErrStorageUnavailable}
	if config.ShouldRetry(ErrConnectionLost, 0) {
		t.Error("error outside RetryableErrors should not be retried")
	}
}

func TestRetryConfig_ToRetryConfig(t *testing.T) {
	rc := RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Second, BackoffFactor: 3}
	cfg := rc.ToRetryConfig()

	if cfg.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.Multiplier != 3 || !cfg.AddJitter {
		t.Errorf("unexpected conversion %+v", cfg)
	}
}

func TestRetryConfig_BackoffDelay(t *testing.T) {
	rc := RetryConfig{InitialDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond, BackoffFactor: 2}

	if d := rc.BackoffDelay(0); d != 10*time.Millisecond {
		t.Errorf("attempt 0: got %v", d)
	}
	if d := rc.BackoffDelay(2); d != 40*time.Millisecond {
		t.Errorf("attempt 2: got %v", d)
	}
	if d := rc.BackoffDelay(10); d != 50*time.Millisecond {
		t.Errorf("attempt 10: got %v", d)
	}
}
