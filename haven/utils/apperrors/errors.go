package apperrors

import "errors"

var (
	ErrEmptyMessage         = errors.New("A message is required.")
	ErrConversationNotFound = errors.New("Conversation not found.")
	ErrExportDisabled       = errors.New("Transcript export is not configured.")
)
