// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced by the planners and executors wraps
// exactly one of these so callers can classify it with errors.Is.
var (
	// ErrValidation marks bad user input: malformed ranges, out-of-bounds
	// pages, empty selections, oversized or unsupported files.
	ErrValidation = errors.New("validation error")

	// ErrSourceRead marks an unreadable or corrupted input document.
	ErrSourceRead = errors.New("source read error")

	// ErrAssembly marks a failure of the PDF engine while building or
	// serializing output.
	ErrAssembly = errors.New("assembly error")

	// ErrBusy is returned when an operation is started while another one
	// is still marked as running.
	ErrBusy = errors.New("operation already in progress")

	// ErrResourceLimit marks a non-fatal resource warning that needs an
	// explicit confirmation before the operation proceeds.
	ErrResourceLimit = errors.New("resource limit exceeded")
)

// Validation errors. Each wraps ErrValidation.
var (
	ErrNoRanges         = fmt.Errorf("%w: no ranges provided", ErrValidation)
	ErrNoRangesFound    = fmt.Errorf("%w: no valid ranges found", ErrValidation)
	ErrInvalidNumber    = fmt.Errorf("%w: invalid page number", ErrValidation)
	ErrOutOfBounds      = fmt.Errorf("%w: page out of bounds", ErrValidation)
	ErrReversedRange    = fmt.Errorf("%w: range start is after range end", ErrValidation)
	ErrEmptySelection   = fmt.Errorf("%w: no pages selected", ErrValidation)
	ErrFileTooLarge     = fmt.Errorf("%w: file exceeds size limit", ErrValidation)
	ErrUnsupportedType  = fmt.Errorf("%w: unsupported file type", ErrValidation)
	ErrInvalidDivider   = fmt.Errorf("%w: divider out of bounds", ErrValidation)
	ErrNotAPartition    = fmt.Errorf("%w: ranges do not partition the document", ErrValidation)
	ErrUnknownDocument  = fmt.Errorf("%w: unknown document", ErrValidation)
	ErrUnknownSplitMode = fmt.Errorf("%w: unknown split mode", ErrValidation)
)

// ResourceLimitWarning reports that an operation's estimated memory use
// exceeds the configured budget. It is not fatal: the caller decides
// whether to proceed after asking the user.
type ResourceLimitWarning struct {
	// Estimated is the estimated peak memory use in bytes.
	Estimated int64

	// Budget is the configured memory budget in bytes.
	Budget int64
}

func (w *ResourceLimitWarning) Error() string {
	return fmt.Sprintf("estimated memory use %s exceeds budget %s",
		FormatSize(w.Estimated), FormatSize(w.Budget))
}

// Unwrap lets errors.Is(err, ErrResourceLimit) match the warning.
func (w *ResourceLimitWarning) Unwrap() error {
	return ErrResourceLimit
}

// FormatSize renders a byte count using binary units (e.g. "1.5 MiB").
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
