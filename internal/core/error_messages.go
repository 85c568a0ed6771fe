package core

// error_messages.go maps import failures to user-friendly messages with
// codes for support reference.
//
// # Metadata Errors (META001-META099)
//
//	META001 - Missing field: A required element is missing from a sweep's metadata
//	          Action: Re-export the sweep from the acquisition software
//	META002 - Malformed document: A metadata or data file could not be read
//	          Action: Check the file is a complete, unmodified export
//	META003 - Invalid channel type: A patch-clamp channel code is not 0 or 1
//	          Action: Check the amplifier channel settings of the recording
//
// # Calibration Errors (CAL001-CAL099)
//
//	CAL001 - Calibration: A channel has a zero or missing divisor
//	         Action: Fix the channel's divisor in the acquisition settings
//
// # CSV Errors (CSV001-CSV099)
//
//	CSV001 - Column count: A data file's columns do not match its channels
//	         Action: Check that the CSV belongs to the metadata that references it
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Not found: A referenced data file or the folder does not exist
//	          Action: Make sure the whole experiment folder was copied
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Cancelled: The import was cancelled or timed out
//	IMP002 - Busy: Too many imports are running
//	IMP003 - Bad folder: The folder is outside the data root
//
// # Default Error (ERR000)
//
// Typed errors are matched first with errors.As / errors.Is; untyped errors
// fall back to case-insensitive substring patterns, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgMissingField = UserMessage{
		Message: "A required field is missing from a sweep's metadata",
		Action:  "Re-export the sweep from the acquisition software",
		Code:    "META001",
	}
	msgMalformed = UserMessage{
		Message: "A metadata or data file could not be read",
		Action:  "Check the file is a complete, unmodified export",
		Code:    "META002",
	}
	msgChannelType = UserMessage{
		Message: "A patch-clamp channel has an unknown channel type",
		Action:  "Check the amplifier channel settings of the recording",
		Code:    "META003",
	}
	msgCalibration = UserMessage{
		Message: "A channel has a zero or missing calibration divisor",
		Action:  "Fix the channel's divisor in the acquisition settings",
		Code:    "CAL001",
	}
	msgColumnCount = UserMessage{
		Message: "A data file's columns do not match its channel list",
		Action:  "Check that the CSV belongs to the metadata that references it",
		Code:    "CSV001",
	}
	msgNotFound = UserMessage{
		Message: "A referenced file or folder does not exist",
		Action:  "Make sure the whole experiment folder was copied",
		Code:    "FILE001",
	}
	msgCancelled = UserMessage{
		Message: "The import was cancelled or timed out",
		Action:  "Try again, or import a smaller folder",
		Code:    "IMP001",
	}
	msgBusy = UserMessage{
		Message: "Too many imports are running",
		Action:  "Please wait a moment and try again",
		Code:    "IMP002",
	}
	msgOutsideRoot = UserMessage{
		Message: "The folder is outside the data root",
		Action:  "Use a folder path relative to the data root",
		Code:    "IMP003",
	}
)

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// errorPattern maps a substring of an untyped error to a message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{pattern: "context deadline exceeded", msg: msgCancelled},
	{pattern: "context canceled", msg: msgCancelled},
	{pattern: "too many concurrent imports", msg: msgBusy},
	{pattern: "no such file or directory", msg: msgNotFound},
	{pattern: "reading folder", msg: msgNotFound},
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		missing  *MissingFieldError
		chanType *InvalidChannelTypeError
		calib    *CalibrationError
		colCount *ColumnCountMismatchError
		notFound *FileNotFoundError
		bad      *MalformedDocumentError
	)
	switch {
	case errors.Is(err, ErrImportCancelled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return msgCancelled
	case errors.Is(err, ErrTooManyImports):
		return msgBusy
	case errors.Is(err, ErrFolderOutsideRoot):
		return msgOutsideRoot
	case errors.As(err, &missing):
		return msgMissingField
	case errors.As(err, &chanType):
		return msgChannelType
	case errors.As(err, &calib):
		return msgCalibration
	case errors.As(err, &colCount):
		return msgColumnCount
	case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
		return msgNotFound
	case errors.As(err, &bad):
		return msgMalformed
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
