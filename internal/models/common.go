package models

// ErrorDetail provides a structured way to represent an error.
type ErrorDetail struct {
	// Code is an application-specific error code.
	Code int `json:"code"`
	// Message is a human-readable error message naming the path and offsets involved.
	Message string `json:"message"`
	// Data holds additional context about the error, like path, operation and type.
	Data map[string]interface{} `json:"data,omitempty"`
	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

func (e *ErrorDetail) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ErrorDetail) Unwrap() error { return e.Err }
