package store

import (
	"errors"
	"testing"
	"time"

	"giftem/pkg/domain"
)

type tickingClock struct{ t time.Time }

func (c *tickingClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestMessages(seed []domain.Conversation) *MessageStore {
	users := NewUserStore(append(testUsers(), domain.User{ID: "u3", Username: "linus"}), "u1")
	clock := &tickingClock{t: feedClock}
	return NewMessageStore(users, seed, clock.Now)
}

func seedConversations() []domain.Conversation {
	return []domain.Conversation{
		{
			ID:           "c1",
			Participants: [2]string{"u1", "u2"},
			CreatedAt:    feedClock.Add(-48 * time.Hour),
			Messages: []domain.Message{
				{SenderID: "u2", Body: "is the duck still available?", CreatedAt: feedClock.Add(-47 * time.Hour)},
				{SenderID: "u1", Body: "yes!", CreatedAt: feedClock.Add(-46 * time.Hour), Read: true},
				{SenderID: "u2", Body: "great", CreatedAt: feedClock.Add(-45 * time.Hour)},
			},
		},
		{
			ID:           "c2",
			Participants: [2]string{"u3", "u1"},
			CreatedAt:    feedClock.Add(-24 * time.Hour),
			Messages: []domain.Message{
				{SenderID: "u3", Body: "nice lamp", CreatedAt: feedClock.Add(-23 * time.Hour), Read: true},
			},
		},
	}
}

func TestMessageStoreTotalUnreadCount(t *testing.T) {
	s := newTestMessages(seedConversations())
	if got := s.TotalUnreadCount("u1"); got != 2 {
		t.Fatalf("u1 unread = %d, want 2", got)
	}
	if got := s.TotalUnreadCount("u2"); got != 0 {
		t.Fatalf("u2 unread = %d, want 0", got)
	}
	if got := s.TotalUnreadCount("nobody"); got != 0 {
		t.Fatalf("user without conversations unread = %d, want 0", got)
	}
}

func TestMessageStoreSendAndMarkReadAdjustUnreadByOne(t *testing.T) {
	s := newTestMessages(seedConversations())
	before := s.TotalUnreadCount("u1")

	msg, err := s.Send("c2", "u3", "can you ship it?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := s.TotalUnreadCount("u1"); got != before+1 {
		t.Fatalf("unread after send = %d, want %d", got, before+1)
	}
	if !s.MarkMessageRead("c2", msg.ID) {
		t.Fatalf("expected message to be marked read")
	}
	if got := s.TotalUnreadCount("u1"); got != before {
		t.Fatalf("unread after read = %d, want %d", got, before)
	}
	if s.MarkMessageRead("c2", msg.ID) {
		t.Fatalf("marking an already read message should report false")
	}
}

func TestMessageStoreOwnMessagesNeverCountAsUnread(t *testing.T) {
	s := newTestMessages(seedConversations())
	if _, err := s.Send("c1", "u1", "shipping tomorrow"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := s.TotalUnreadCount("u1"); got != 2 {
		t.Fatalf("u1 unread = %d, want 2", got)
	}
	if got := s.TotalUnreadCount("u2"); got != 1 {
		t.Fatalf("u2 unread = %d, want 1", got)
	}
}

func TestMessageStoreMarkRead(t *testing.T) {
	s := newTestMessages(seedConversations())
	listener, calls := countingListener()
	s.Subscribe(listener)

	if got := s.MarkRead("c1", "u1"); got != 2 {
		t.Fatalf("marked %d, want 2", got)
	}
	if got := s.UnreadCount("c1", "u1"); got != 0 {
		t.Fatalf("c1 unread = %d, want 0", got)
	}
	if got := s.MarkRead("c1", "u1"); got != 0 {
		t.Fatalf("second mark read changed %d messages", got)
	}
	if got := s.MarkRead("c1", "u3"); got != 0 {
		t.Fatalf("non-participant marked %d messages", got)
	}
	if *calls != 1 {
		t.Fatalf("listener calls = %d, want 1", *calls)
	}
}

func TestMessageStoreSendErrors(t *testing.T) {
	s := newTestMessages(seedConversations())
	tests := []struct {
		name   string
		convID string
		sender string
		body   string
		want   error
	}{
		{name: "empty body", convID: "c1", sender: "u1", body: "   ", want: ErrEmptyMessage},
		{name: "unknown conversation", convID: "nope", sender: "u1", body: "hi", want: ErrConversationNotFound},
		{name: "outsider", convID: "c1", sender: "u3", body: "hi", want: ErrNotParticipant},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Send(tc.convID, tc.sender, tc.body); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestMessageStoreStart(t *testing.T) {
	s := newTestMessages(seedConversations())

	existing, err := s.Start("u2", "u1")
	if err != nil || existing.ID != "c1" {
		t.Fatalf("start existing = %q, %v, want c1", existing.ID, err)
	}

	created, err := s.Start("u2", "u3")
	if err != nil {
		t.Fatalf("start new: %v", err)
	}
	if !created.Includes("u2") || !created.Includes("u3") || len(created.Messages) != 0 {
		t.Fatalf("unexpected new conversation: %+v", created)
	}
	if _, err := s.Start("u1", "u1"); !errors.Is(err, ErrSelfConversation) {
		t.Fatalf("self conversation err = %v", err)
	}
	if _, err := s.Start("u1", "ghost"); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("unknown user err = %v", err)
	}
}

func TestMessageStoreConversationsOrderedByActivity(t *testing.T) {
	s := newTestMessages(seedConversations())
	got := s.Conversations("u1")
	if len(got) != 2 || got[0].ID != "c2" || got[1].ID != "c1" {
		t.Fatalf("order = %v, want [c2 c1]", conversationIDs(got))
	}
	if _, err := s.Send("c1", "u2", "still there?"); err != nil {
		t.Fatalf("send: %v", err)
	}
	got = s.Conversations("u1")
	if got[0].ID != "c1" {
		t.Fatalf("order after send = %v, want c1 first", conversationIDs(got))
	}
	if len(s.Conversations("nobody")) != 0 {
		t.Fatalf("unknown user should have no conversations")
	}
}

func TestMessageStoreSeedMessagesGetIDs(t *testing.T) {
	s := newTestMessages(seedConversations())
	c, ok := s.Conversation("c1")
	if !ok {
		t.Fatalf("c1 missing")
	}
	for _, m := range c.Messages {
		if m.ID == "" || m.ConversationID != "c1" {
			t.Fatalf("seed message not normalized: %+v", m)
		}
	}
}

func TestMessageStoreResetToSeed(t *testing.T) {
	s := newTestMessages(seedConversations())
	s.MarkRead("c1", "u1")
	if _, err := s.Start("u2", "u3"); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.ResetToSeed()
	if got := s.TotalUnreadCount("u1"); got != 2 {
		t.Fatalf("unread after reset = %d, want 2", got)
	}
	if got := len(s.Conversations("u3")); got != 1 {
		t.Fatalf("u3 conversations after reset = %d, want 1", got)
	}
}

func TestMessageStoreReturnsCopies(t *testing.T) {
	s := newTestMessages(seedConversations())
	c, _ := s.Conversation("c1")
	c.Messages[0].Read = true
	if got := s.UnreadCount("c1", "u1"); got != 2 {
		t.Fatalf("caller mutation leaked into store, unread = %d", got)
	}
}

func conversationIDs(convs []domain.Conversation) []string {
	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	return ids
}
