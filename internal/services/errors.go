package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks conditions expected to clear on a later scan cycle,
	// such as a file vanishing mid-scan or still being written. Transient
	// failures are deferred, never recorded in the ledger.
	ErrTransient = errors.New("transient failure")
	// ErrNotFound marks a file or remote object that no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrExternalTool marks a pipeline collaborator failure (ffprobe, the
	// transcription API, the document API). Recorded as a failed outcome.
	ErrExternalTool = errors.New("external tool error")
	// ErrStorage marks a ledger read/write failure. Fatal to the current
	// scan cycle but never to the daemon.
	ErrStorage = errors.New("storage error")
	// ErrConfiguration marks invalid settings detected at runtime.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks malformed inputs or responses.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
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

// IsDeferrable reports whether an error should defer the file to the next
// scan cycle instead of recording a failed ledger outcome.
func IsDeferrable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrNotFound)
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
