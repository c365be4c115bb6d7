package errors

import (
	stdErrors "errors"
	"fmt"

	"line-splicer/internal/models"
)

// Error Codes
const (
	CodeInvalidParams = -32602 // Invalid request or descriptor parameter(s).
	CodeInternalError = -32603 // Unexpected failure.

	// CodeFileSystemError is a generic code for file system related issues.
	// Specific issues like file not found or permission denied use this code
	// and carry the detail in Data["type"].
	CodeFileSystemError = -32001

	// CodeOperationLockFailed indicates the advisory lock could not be acquired.
	CodeOperationLockFailed = -32002

	// CodeFileTooLarge indicates the file exceeds the configured size limit.
	CodeFileTooLarge = -32003

	// CodeOutOfRange indicates start/end do not fit the current document.
	CodeOutOfRange = -32004

	// CodeInvalidEncoding indicates the bytes are not UTF-8.
	CodeInvalidEncoding = -32005

	// CodeContentMismatch indicates the lines to be removed are not the expected ones.
	CodeContentMismatch = -32006
)

// Values of Data["type"].
const (
	TypeInvalidParams   = "invalid_params"
	TypeInternal        = "internal"
	TypeFileSystem      = "filesystem_error"
	TypeFileNotFound    = "file_not_found"
	TypeNotReadable     = "not_readable"
	TypeNotWritable     = "not_writable"
	TypeOutOfRange      = "out_of_range"
	TypeInvalidEncoding = "invalid_encoding"
	TypeContentMismatch = "content_mismatch"
	TypeLockFailed      = "lock_failed"
	TypeFileTooLarge    = "file_too_large"
)

// Process exit codes.
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitInvalidParams   = 2
	ExitFileNotFound    = 3
	ExitNotReadable     = 4
	ExitNotWritable     = 5
	ExitOutOfRange      = 6
	ExitInvalidEncoding = 7
	ExitContentMismatch = 8
	ExitLockFailed      = 9
	ExitFileTooLarge    = 10
)

// NewErrorDetail creates a new ErrorDetail.
func NewErrorDetail(code int, message string, data map[string]interface{}, cause error) *models.ErrorDetail {
	return &models.ErrorDetail{
		Code:    code,
		Message: message,
		Data:    data,
		Err:     cause,
	}
}

// NewInvalidParamsError creates an ErrorDetail for invalid request or descriptor fields.
// paramIssues can name the specific fields that were rejected.
func NewInvalidParamsError(summary string, paramIssues map[string]interface{}) *models.ErrorDetail {
	if summary == "" {
		summary = "Invalid params"
	}
	data := map[string]interface{}{"type": TypeInvalidParams}
	if paramIssues != nil {
		data["param_issues"] = paramIssues
	}
	return NewErrorDetail(CodeInvalidParams, summary, data, nil)
}

// NewInternalError creates an ErrorDetail for unexpected failures.
func NewInternalError(details string, cause error) *models.ErrorDetail {
	return NewErrorDetail(CodeInternalError, "Internal error: "+details, map[string]interface{}{"type": TypeInternal}, cause)
}

// NewFileSystemError creates a generic file system ErrorDetail.
func NewFileSystemError(path, operation string, cause error) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("File system error during %s on '%s'", operation, path), map[string]interface{}{
		"path":      path,
		"operation": operation,
		"type":      TypeFileSystem,
	}, cause)
}

// NewFileNotFoundError creates an ErrorDetail for a missing target file.
func NewFileNotFoundError(path, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("File '%s' not found", path), map[string]interface{}{
		"path":      path,
		"operation": operation,
		"type":      TypeFileNotFound,
	}, nil)
}

// NewNotReadableError creates an ErrorDetail for a file that cannot be read.
func NewNotReadableError(path, operation string, cause error) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("Permission denied reading '%s'", path), map[string]interface{}{
		"path":      path,
		"operation": operation,
		"type":      TypeNotReadable,
	}, cause)
}

// NewNotWritableError creates an ErrorDetail for a file that cannot be written.
func NewNotWritableError(path, operation string, cause error) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("Permission denied writing '%s'", path), map[string]interface{}{
		"path":      path,
		"operation": operation,
		"type":      TypeNotWritable,
	}, cause)
}

// NewOutOfRangeError creates an ErrorDetail for a start/end pair that does not fit.
// total is -1 when the document has not been read yet.
func NewOutOfRangeError(path string, start, end, total int, cause error) *models.ErrorDetail {
	msg := fmt.Sprintf("Range [%d, %d) is out of range for '%s'", start, end, path)
	if total >= 0 {
		msg = fmt.Sprintf("Range [%d, %d) is out of range for '%s' (%d lines)", start, end, path, total)
	}
	return NewErrorDetail(CodeOutOfRange, msg, map[string]interface{}{
		"path":        path,
		"start":       start,
		"end":         end,
		"total_lines": total,
		"type":        TypeOutOfRange,
	}, cause)
}

// NewInvalidEncodingError creates an ErrorDetail for content that is not UTF-8.
func NewInvalidEncodingError(path, operation, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInvalidEncoding, fmt.Sprintf("Invalid encoding in '%s': %s", path, details), map[string]interface{}{
		"path":      path,
		"operation": operation,
		"details":   details,
		"type":      TypeInvalidEncoding,
	}, nil)
}

// NewContentMismatchError creates an ErrorDetail for a failed content guard.
func NewContentMismatchError(path string, start, end int, expected, actual string) *models.ErrorDetail {
	return NewErrorDetail(CodeContentMismatch,
		fmt.Sprintf("Lines [%d, %d) of '%s' do not match the expected content (expected %s, found %s)", start, end, path, expected, actual),
		map[string]interface{}{
			"path":     path,
			"start":    start,
			"end":      end,
			"expected": expected,
			"actual":   actual,
			"type":     TypeContentMismatch,
		}, nil)
}

// NewFileTooLargeError creates an ErrorDetail for files exceeding size limits.
func NewFileTooLargeError(path string, size int64, maxSizeMB int) *models.ErrorDetail {
	return NewErrorDetail(CodeFileTooLarge,
		fmt.Sprintf("File '%s' (%d bytes) exceeds maximum allowed size of %d MB", path, size, maxSizeMB),
		map[string]interface{}{
			"path":        path,
			"size":        size,
			"max_size_mb": maxSizeMB,
			"type":        TypeFileTooLarge,
		}, nil)
}

// NewOperationLockFailedError creates an ErrorDetail for failures to acquire a lock.
func NewOperationLockFailedError(path string, cause error) *models.ErrorDetail {
	return NewErrorDetail(CodeOperationLockFailed,
		fmt.Sprintf("Could not acquire lock on '%s'", path),
		map[string]interface{}{
			"path": path,
			"type": TypeLockFailed,
		}, cause)
}

// TypeOf returns Data["type"] of the first ErrorDetail in err's chain.
func TypeOf(err error) string {
	var detail *models.ErrorDetail
	if !stdErrors.As(err, &detail) || detail == nil {
		return ""
	}
	if t, ok := detail.Data["type"].(string); ok {
		return t
	}
	return ""
}

// MapErrorToExitCode maps an error to the process exit status.
func MapErrorToExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch TypeOf(err) {
	case TypeInvalidParams:
		return ExitInvalidParams
	case TypeFileNotFound:
		return ExitFileNotFound
	case TypeNotReadable:
		return ExitNotReadable
	case TypeNotWritable:
		return ExitNotWritable
	case TypeOutOfRange:
		return ExitOutOfRange
	case TypeInvalidEncoding:
		return ExitInvalidEncoding
	case TypeContentMismatch:
		return ExitContentMismatch
	case TypeLockFailed:
		return ExitLockFailed
	case TypeFileTooLarge:
		return ExitFileTooLarge
	default:
		return ExitFailure
	}
}
