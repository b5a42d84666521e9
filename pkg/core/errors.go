package core

import (
	"context"
	"errors"
	"fmt"
	"net"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Sentinel errors of the resolution and leadership taxonomy.
var (
	// ErrParse is returned when no format in the parse chain accepts the content.
	ErrParse = errors.New("content is not valid in any supported format")
	// ErrUnsupportedFileType is returned for unknown extensions or unrenderable pairings.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrIncompatibleFileTypes is returned when documents of different shapes are merged.
	ErrIncompatibleFileTypes = errors.New("incompatible file types")
	// ErrLeaseHeldByAnotherPod is returned when the leader lease belongs to someone else.
	ErrLeaseHeldByAnotherPod = errors.New("lease held by another pod")
	// ErrLeaseExpired is returned after an abandoned lease has been removed.
	ErrLeaseExpired = errors.New("lease expired and was removed")
	// ErrCancelled is returned when a blocking loop stops because its context ended.
	ErrCancelled = errors.New("cancelled")
	// ErrTargetTooLarge is returned when rendered data exceeds TargetSizeLimitBytes.
	ErrTargetTooLarge = errors.New("rendered target exceeds size limit")
)

// SerializationError reports a failure to read or write a specific format.
type SerializationError struct {
	Format string
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s serialization: %v", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// ConfigStoreError reports that no store could provide a file.
type ConfigStoreError struct {
	Filename string
	Err      error
}

func (e *ConfigStoreError) Error() string {
	return fmt.Sprintf("no configuration store could provide %q: %v", e.Filename, e.Err)
}

func (e *ConfigStoreError) Unwrap() error { return e.Err }

// HTTPStoreErrorKind distinguishes HTTP store failures.
type HTTPStoreErrorKind string

const (
	HTTPStoreClientError    HTTPStoreErrorKind = "client"
	HTTPStoreServerError    HTTPStoreErrorKind = "server"
	HTTPStoreTransportError HTTPStoreErrorKind = "transport"
)

// HTTPStoreError reports a failed HTTP store request.
type HTTPStoreError struct {
	Kind       HTTPStoreErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *HTTPStoreError) Error() string {
	if e.Kind == HTTPStoreTransportError {
		return fmt.Sprintf("http store transport error: %v", e.Err)
	}
	return fmt.Sprintf("http store %s error (status %d): %s", e.Kind, e.StatusCode, e.Body)
}

func (e *HTTPStoreError) Unwrap() error { return e.Err }

// PlatformAPIError wraps an error returned by the Kubernetes API.
type PlatformAPIError struct {
	Operation string
	Err       error
}

func (e *PlatformAPIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *PlatformAPIError) Unwrap() error { return e.Err }

// NewPlatformAPIError wraps err, returning nil for a nil err.
func NewPlatformAPIError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &PlatformAPIError{Operation: operation, Err: err}
}

// FinalizerPhase names the side of the finalizer state machine that failed.
type FinalizerPhase string

const (
	PhaseApplying FinalizerPhase = "Applying"
	PhaseCleaning FinalizerPhase = "Cleaning"
)

// FinalizerError wraps a reconcile or cleanup failure with its phase.
type FinalizerError struct {
	Phase FinalizerPhase
	Err   error
}

func (e *FinalizerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *FinalizerError) Unwrap() error { return e.Err }

// MetricLabel maps an error chain to the label used on failure metrics.
func MetricLabel(err error) string {
	if err == nil {
		return ""
	}

	var (
		storeErr         *ConfigStoreError
		httpErr          *HTTPStoreError
		serializationErr *SerializationError
		platformErr      *PlatformAPIError
		finalizerErr     *FinalizerError
		statusErr        apierrors.APIStatus
	)

	switch {
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &storeErr):
		return "config_store_error"
	case errors.As(err, &httpErr):
		return "http_store_" + string(httpErr.Kind) + "_error"
	case errors.As(err, &serializationErr):
		return "serialization_error"
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrUnsupportedFileType):
		return "unsupported_file_type"
	case errors.Is(err, ErrIncompatibleFileTypes):
		return "incompatible_file_types"
	case errors.Is(err, ErrTargetTooLarge):
		return "target_too_large"
	case errors.Is(err, ErrLeaseHeldByAnotherPod):
		return "lease_held_by_another_pod"
	case errors.Is(err, ErrLeaseExpired):
		return "lease_expired"
	case errors.As(err, &platformErr), errors.As(err, &statusErr):
		return "platform_api_error"
	case errors.As(err, &finalizerErr):
		return "finalizer_error"
	default:
		return "unknown"
	}
}

// ErrorCategory describes the class of an error encountered while reconciling.
type ErrorCategory string

const (
	// ErrorCategoryNone indicates no error.
	ErrorCategoryNone ErrorCategory = ""
	// ErrorCategoryRBAC indicates insufficient permissions (Forbidden/Unauthorized).
	ErrorCategoryRBAC ErrorCategory = "rbac"
	// ErrorCategoryTransient indicates a retryable/transient failure.
	ErrorCategoryTransient ErrorCategory = "transient"
	// ErrorCategoryPermanent indicates a non-retryable failure unrelated to RBAC.
	ErrorCategoryPermanent ErrorCategory = "permanent"
)

// ClassifyError inspects an error and returns the appropriate category.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}
	for current := err; current != nil; current = errors.Unwrap(current) {
		switch {
		case apierrors.IsForbidden(current) || apierrors.IsUnauthorized(current):
			return ErrorCategoryRBAC
		case apierrors.IsTooManyRequests(current), apierrors.IsTimeout(current), apierrors.IsServerTimeout(current):
			return ErrorCategoryTransient
		}
		if errors.Is(current, context.DeadlineExceeded) || errors.Is(current, context.Canceled) {
			return ErrorCategoryTransient
		}
		var httpErr *HTTPStoreError
		if errors.As(current, &httpErr) && httpErr.Kind != HTTPStoreClientError {
			return ErrorCategoryTransient
		}
		if ne, ok := current.(net.Error); ok && ne.Timeout() {
			return ErrorCategoryTransient
		}
	}
	return ErrorCategoryPermanent
}
