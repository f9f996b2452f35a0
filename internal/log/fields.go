// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID     = "request_id"
	FieldCorrelationID = "correlation_id"
	FieldUserID        = "user_id"
	FieldUsername      = "username"
	FieldSessionID     = "session_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Blog entity fields
	FieldPostID    = "post_id"
	FieldCommentID = "comment_id"
	FieldCategory  = "category_slug"

	// HTTP fields
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldRemoteAddr = "remote_addr"
	FieldDurationMS = "duration_ms"
)
