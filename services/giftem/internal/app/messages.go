package app

import (
	"fmt"

	"giftem/pkg/domain"
)

// Messaging operations act on behalf of the active viewer.

func (a *App) Conversations() ([]domain.Conversation, error) {
	viewer, err := a.CurrentUser()
	if err != nil {
		return nil, err
	}
	return a.messages.Conversations(viewer.ID), nil
}

// Conversation returns id if the active viewer takes part in it.
func (a *App) Conversation(id string) (domain.Conversation, error) {
	viewer, err := a.CurrentUser()
	if err != nil {
		return domain.Conversation{}, err
	}
	conv, ok := a.messages.Conversation(id)
	if !ok {
		return domain.Conversation{}, ErrConversationNotFound
	}
	if !conv.Includes(viewer.ID) {
		return domain.Conversation{}, ErrNotParticipant
	}
	return conv, nil
}

// StartConversation opens, or returns the existing, conversation between
// the active viewer and otherUserID.
func (a *App) StartConversation(otherUserID string) (domain.Conversation, error) {
	viewer, err := a.CurrentUser()
	if err != nil {
		return domain.Conversation{}, err
	}
	conv, err := a.messages.Start(viewer.ID, otherUserID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("start conversation: %w", err)
	}
	return conv, nil
}

func (a *App) SendMessage(conversationID, body string) (domain.Message, error) {
	viewer, err := a.CurrentUser()
	if err != nil {
		return domain.Message{}, err
	}
	msg, err := a.messages.Send(conversationID, viewer.ID, body)
	if err != nil {
		return domain.Message{}, fmt.Errorf("send message: %w", err)
	}
	a.logger.Info("message sent", "conversation_id", conversationID, "message_id", msg.ID)
	return msg, nil
}

// MarkRead marks the other participant's messages read and returns how
// many changed.
func (a *App) MarkRead(conversationID string) (int, error) {
	if _, err := a.Conversation(conversationID); err != nil {
		return 0, err
	}
	viewer, err := a.CurrentUser()
	if err != nil {
		return 0, err
	}
	return a.messages.MarkRead(conversationID, viewer.ID), nil
}

// BadgeCount is the active viewer's total unread count.
func (a *App) BadgeCount() int {
	return a.badge.Count()
}
