package store

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"giftem/internal/util"
	"giftem/pkg/domain"
)

var (
	ErrUnknownUser          = errors.New("unknown user")
	ErrSelfConversation     = errors.New("conversation needs two distinct users")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("sender is not a participant")
	ErrEmptyMessage         = errors.New("message body required")
)

// UserLookup resolves participant ids.
type UserLookup interface {
	GetByID(id string) (domain.User, bool)
}

// MessageStore owns conversations and their messages.
type MessageStore struct {
	notifier

	users UserLookup
	now   func() time.Time

	mu            sync.RWMutex
	seed          []domain.Conversation
	conversations map[string]*domain.Conversation
	order         []string
}

// NewMessageStore builds the store from seed conversations. A nil now
// defaults to time.Now.
func NewMessageStore(users UserLookup, seed []domain.Conversation, now func() time.Time) *MessageStore {
	if now == nil {
		now = time.Now
	}
	s := &MessageStore{users: users, now: now}
	s.seed = prepareConversations(seed)
	s.load(s.seed)
	return s
}

func prepareConversations(seed []domain.Conversation) []domain.Conversation {
	out := make([]domain.Conversation, len(seed))
	for i, c := range seed {
		c = c.Clone()
		if c.ID == "" {
			c.ID = util.NewID()
		}
		for j := range c.Messages {
			if c.Messages[j].ID == "" {
				c.Messages[j].ID = util.NewID()
			}
			c.Messages[j].ConversationID = c.ID
		}
		out[i] = c
	}
	return out
}

// load must be called with mu held or before the store is shared.
func (s *MessageStore) load(seed []domain.Conversation) {
	s.conversations = make(map[string]*domain.Conversation, len(seed))
	s.order = make([]string, 0, len(seed))
	for _, c := range seed {
		conv := c.Clone()
		if _, exists := s.conversations[conv.ID]; !exists {
			s.order = append(s.order, conv.ID)
		}
		s.conversations[conv.ID] = &conv
	}
}

// TotalUnreadCount sums, over the user's conversations, the messages sent by
// someone else that are still unread. It is computed on every call.
func (s *MessageStore) TotalUnreadCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, id := range s.order {
		c := s.conversations[id]
		if c.Includes(userID) {
			total += c.UnreadCount(userID)
		}
	}
	return total
}

// UnreadCount returns the unread count of one conversation for viewerID.
func (s *MessageStore) UnreadCount(conversationID, viewerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[conversationID]
	if !ok || !c.Includes(viewerID) {
		return 0
	}
	return c.UnreadCount(viewerID)
}

// Conversations lists the user's conversations, most recent activity first.
func (s *MessageStore) Conversations(userID string) []domain.Conversation {
	s.mu.RLock()
	out := make([]domain.Conversation, 0)
	for _, id := range s.order {
		if c := s.conversations[id]; c.Includes(userID) {
			out = append(out, c.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b domain.Conversation) int {
		return b.LastActivity().Compare(a.LastActivity())
	})
	return out
}

// Conversation looks up a conversation by id.
func (s *MessageStore) Conversation(id string) (domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok {
		return domain.Conversation{}, false
	}
	return c.Clone(), true
}

// Start returns the conversation between a and b, creating it if needed.
func (s *MessageStore) Start(a, b string) (domain.Conversation, error) {
	if a == b {
		return domain.Conversation{}, ErrSelfConversation
	}
	for _, id := range []string{a, b} {
		if s.users == nil {
			return domain.Conversation{}, ErrUnknownUser
		}
		if _, ok := s.users.GetByID(id); !ok {
			return domain.Conversation{}, ErrUnknownUser
		}
	}

	s.mu.Lock()
	for _, id := range s.order {
		if c := s.conversations[id]; c.Includes(a) && c.Includes(b) {
			existing := c.Clone()
			s.mu.Unlock()
			return existing, nil
		}
	}
	conv := &domain.Conversation{
		ID:           util.NewID(),
		Participants: [2]string{a, b},
		Messages:     []domain.Message{},
		CreatedAt:    s.now().UTC(),
	}
	s.conversations[conv.ID] = conv
	s.order = append(s.order, conv.ID)
	created := conv.Clone()
	s.mu.Unlock()

	s.notify()
	return created, nil
}

// Send appends an unread message from senderID.
func (s *MessageStore) Send(conversationID, senderID, body string) (domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	c, ok := s.conversations[conversationID]
	if !ok {
		s.mu.Unlock()
		return domain.Message{}, ErrConversationNotFound
	}
	if !c.Includes(senderID) {
		s.mu.Unlock()
		return domain.Message{}, ErrNotParticipant
	}
	msg := domain.Message{
		ID:             util.NewID(),
		ConversationID: c.ID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      s.now().UTC(),
	}
	c.Messages = append(c.Messages, msg)
	s.mu.Unlock()

	s.notify()
	return msg, nil
}

// MarkRead marks every message in the conversation not sent by viewerID as
// read and returns how many changed.
func (s *MessageStore) MarkRead(conversationID, viewerID string) int {
	s.mu.Lock()
	c, ok := s.conversations[conversationID]
	if !ok || !c.Includes(viewerID) {
		s.mu.Unlock()
		return 0
	}
	changed := 0
	for i := range c.Messages {
		m := &c.Messages[i]
		if m.SenderID != viewerID && !m.Read {
			m.Read = true
			changed++
		}
	}
	s.mu.Unlock()

	if changed > 0 {
		s.notify()
	}
	return changed
}

// MarkMessageRead marks a single message as read. It reports false when
// the message does not exist or was already read.
func (s *MessageStore) MarkMessageRead(conversationID, messageID string) bool {
	s.mu.Lock()
	c, ok := s.conversations[conversationID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	changed := false
	for i := range c.Messages {
		if c.Messages[i].ID == messageID && !c.Messages[i].Read {
			c.Messages[i].Read = true
			changed = true
			break
		}
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return changed
}

// ResetToSeed restores the seed conversations.
func (s *MessageStore) ResetToSeed() {
	s.mu.Lock()
	s.load(s.seed)
	s.mu.Unlock()
	s.notify()
}

// ReplaceSeed swaps the seed conversations and resets to them.
func (s *MessageStore) ReplaceSeed(seed []domain.Conversation) {
	prepared := prepareConversations(seed)
	s.mu.Lock()
	s.seed = prepared
	s.load(prepared)
	s.mu.Unlock()
	s.notify()
}
