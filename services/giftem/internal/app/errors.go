package app

import (
	"errors"

	"giftem/pkg/store"
)

var (
	// ErrInvalidProduct wraps every AddCustomProduct validation failure.
	ErrInvalidProduct  = errors.New("invalid product")
	ErrProductNotFound = errors.New("product not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNoViewer        = errors.New("no active viewer")
	ErrInvalidSeed     = errors.New("invalid seed")

	// Re-exported so callers of App need not import the store package.
	ErrConversationNotFound = store.ErrConversationNotFound
	ErrNotParticipant       = store.ErrNotParticipant
	ErrSelfConversation     = store.ErrSelfConversation
	ErrEmptyMessage         = store.ErrEmptyMessage
	ErrUnknownUser          = store.ErrUnknownUser
)
