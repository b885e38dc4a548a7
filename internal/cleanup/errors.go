package cleanup

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a per-crop failure.
type ErrorCode string

const (
	// CodeInvalidCrop: missing or zero-size pixel buffer, or coordinates
	// that disagree with it. The crop is returned unchanged.
	CodeInvalidCrop ErrorCode = "INVALID_CROP"

	// CodeNoDetections: the detection list was empty or fully filtered.
	CodeNoDetections ErrorCode = "NO_DETECTIONS"

	// CodeNoValidClusters: every cluster was rejected, or no text block
	// was found for the polygon mask.
	CodeNoValidClusters ErrorCode = "NO_VALID_CLUSTERS"

	// CodeCompositingFailure: the fill could not be applied.
	CodeCompositingFailure ErrorCode = "COMPOSITING_FAILURE"
)

// Sentinels matching each code with errors.Is.
var (
	ErrInvalidCrop     = errors.New("invalid crop")
	ErrNoDetections    = errors.New("no detections")
	ErrNoValidClusters = errors.New("no valid clusters")
	ErrCompositing     = errors.New("compositing failure")
)

func (c ErrorCode) sentinel() error {
	switch c {
	case CodeInvalidCrop:
		return ErrInvalidCrop
	case CodeNoDetections:
		return ErrNoDetections
	case CodeNoValidClusters:
		return ErrNoValidClusters
	case CodeCompositingFailure:
		return ErrCompositing
	default:
		return nil
	}
}

// CleanError is a non-fatal failure while cleaning one crop. It never
// affects other crops.
type CleanError struct {
	Code    ErrorCode
	CropID  string
	Message string
	Cause   error
}

func (e *CleanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: crop %s: %s (caused by: %v)", e.Code, e.CropID, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: crop %s: %s", e.Code, e.CropID, e.Message)
}

func (e *CleanError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel for e.Code.
func (e *CleanError) Is(target error) bool {
	s := e.Code.sentinel()
	return s != nil && target == s
}

// ToMap converts the error for JSON responses.
func (e *CleanError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"code":    string(e.Code),
		"crop_id": e.CropID,
		"message": e.Message,
	}
	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}
	return result
}

func newInvalidCropError(cropID, message string) *CleanError {
	return &CleanError{
		Code:    CodeInvalidCrop,
		CropID:  cropID,
		Message: message,
	}
}

func newNoDetectionsError(cropID string, total int) *CleanError {
	return &CleanError{
		Code:    CodeNoDetections,
		CropID:  cropID,
		Message: fmt.Sprintf("no usable detections out of %d", total),
	}
}

func newNoValidClustersError(cropID string, rejected int, cause error) *CleanError {
	return &CleanError{
		Code:    CodeNoValidClusters,
		CropID:  cropID,
		Message: fmt.Sprintf("all %d clusters rejected", rejected),
		Cause:   cause,
	}
}

func newCompositingError(cropID string, cause error) *CleanError {
	return &CleanError{
		Code:    CodeCompositingFailure,
		CropID:  cropID,
		Message: "failed to apply fill",
		Cause:   cause,
	}
}
