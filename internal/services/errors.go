package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingSource marks operations on a file that was expected to exist.
	ErrMissingSource = errors.New("missing source")
	// ErrConversionTimeout marks converter runs that produced no output in time.
	ErrConversionTimeout = errors.New("conversion timeout")
	// ErrUnmatchedOutput marks staged files that match no known vehicle.
	ErrUnmatchedOutput = errors.New("unmatched output")
	// ErrBackup marks failures while copying an original aside.
	ErrBackup = errors.New("backup error")
	// ErrPersistence marks unreadable or corrupt settings/record files.
	ErrPersistence = errors.New("persistence error")
	// ErrConfiguration marks unset or invalid paths caught before any mutation.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalTool marks converter invocations that failed outright.
	ErrExternalTool = errors.New("external tool error")
	// ErrTransient marks failures with no better classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes operation context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should abort the whole invocation rather
// than a single vehicle. Only preflight configuration problems qualify; every
// per-vehicle failure is isolated into the batch report.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
