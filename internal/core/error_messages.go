package core

// error_messages.go maps failures to user-facing messages with support codes.
//
// # Error Codes Reference
//
// Codes are grouped by category so a user can quote one to support staff.
//
// # Validation (VAL001)
//
//	VAL001 - Invalid input: the request or row failed validation
//	         Action: Fix the listed fields and try again
//	         Kind: validation
//
// # Database (DB001-DB099)
//
//	DB001 - Duplicate key: a product with this handle already exists
//	        Action: Use a different handle or update the existing product
//	        Kind: duplicate_parent_key, or pattern "duplicate key"
//
//	DB003 - Foreign key: a referenced record does not exist, or the record is still referenced
//	        Action: Check the product, category, user and address ids
//	        Kind: foreign_key_violation, or pattern "foreign key"
//
//	DB004 - Connection refused: unable to reach the database
//	DB005 - Connection reset: the database connection was interrupted
//	DB006 - Timeout: the operation took too long
//	DB007 - Deadlock or serialization conflict
//	        Action (DB004-DB007): please try again
//	        Kind: transient, split by pattern
//
// # Not Found (NF001)
//
//	NF001 - Not found: the record does not exist or belongs to someone else
//	        Kind: not_found
//
// # Import (IMP001-IMP099)
//
//	IMP001 - Nothing to import: no row carries a product handle
//	IMP002 - System busy: too many imports in progress
//	IMP003 - Unsupported file: only .csv and .xlsx are accepted
//	IMP004 - File too large: the upload exceeds the configured size limit
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: check application logs for the technical error
//
// # Matching
//
// A classified *WriteError is matched by Kind first. Anything else, and
// transient errors, fall back to case-insensitive pattern matching against
// the error text; the first matching pattern wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgValidation = UserMessage{
		Message: "Some of the submitted values are invalid",
		Action:  "Fix the listed fields and try again",
		Code:    "VAL001",
	}
	msgDuplicate = UserMessage{
		Message: "A record with this key already exists",
		Action:  "Use a different handle or update the existing product",
		Code:    "DB001",
	}
	msgForeignKey = UserMessage{
		Message: "A referenced record does not exist or is still in use",
		Action:  "Check the product, category, user and address ids",
		Code:    "DB003",
	}
	msgTimeout = UserMessage{
		Message: "The operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB006",
	}
	msgNotFound = UserMessage{
		Message: "The requested record was not found",
		Action:  "Check the id and try again",
		Code:    "NF001",
	}
	msgNothingToImport = UserMessage{
		Message: "The file has no rows with a product handle",
		Action:  "Check that the key column is present and filled in",
		Code:    "IMP001",
	}
	msgTooManyImports = UserMessage{
		Message: "Too many imports in progress",
		Action:  "Please wait a moment and try again",
		Code:    "IMP002",
	}
)

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first matching pattern wins, so more specific patterns come first.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Database Constraint Errors (DB001, DB003)
	// =========================================================================
	{pattern: "duplicate key", msg: msgDuplicate},
	{pattern: "foreign key", msg: msgForeignKey},

	// =========================================================================
	// Connection / Transient Errors (DB004-DB007)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{pattern: "deadline exceeded", msg: msgTimeout},
	{pattern: "timeout", msg: msgTimeout},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "could not serialize",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// Import Errors (IMP001-IMP004)
	// =========================================================================
	{pattern: "nothing to import", msg: msgNothingToImport},
	{pattern: "too many concurrent imports", msg: msgTooManyImports},
	{
		pattern: "unsupported file",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a .csv or .xlsx file",
			Code:    "IMP003",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The file is larger than the upload limit",
			Action:  "Split the file into smaller parts",
			Code:    "IMP004",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
//
// Example:
//
//	err := &WriteError{Kind: KindDuplicateParentKey, Entity: "product", Key: "linen-shirt"}
//	msg := MapError(err)
//	// msg.Code == "DB001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	switch {
	case errors.Is(err, ErrValidation):
		return msgValidation
	case errors.Is(err, ErrDuplicateParentKey):
		return msgDuplicate
	case errors.Is(err, ErrForeignKeyViolation):
		return msgForeignKey
	case errors.Is(err, ErrNotFound):
		return msgNotFound
	case errors.Is(err, ErrNothingToImport):
		return msgNothingToImport
	case errors.Is(err, ErrTooManyImports):
		return msgTooManyImports
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if errors.Is(err, ErrTransient) {
		return msgTimeout
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
