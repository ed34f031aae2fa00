package timeseries

import "errors"

// AnalysisError represents a coded failure raised before or during analysis.
type AnalysisError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidSignal      = "INVALID_SIGNAL"
	ErrCodeInsufficientSignal = "INSUFFICIENT_SIGNAL"
	ErrCodeModelFitFailure    = "MODEL_FIT_FAILURE"
	ErrCodeConfiguration      = "CONFIGURATION_ERROR"
)

// NewAnalysisError creates a new analysis error
func NewAnalysisError(code, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsCode reports whether err is an *AnalysisError carrying the given code.
func IsCode(err error, code string) bool {
	var ae *AnalysisError
	return errors.As(err, &ae) && ae.Code == code
}
