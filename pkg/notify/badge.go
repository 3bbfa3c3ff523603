package notify

import "giftem/pkg/domain"

// UnreadCounter is satisfied by store.MessageStore.
type UnreadCounter interface {
	TotalUnreadCount(userID string) int
}

// ViewerSource is satisfied by store.UserStore.
type ViewerSource interface {
	Current() (domain.User, bool)
}

// Badge exposes the unread badge for the active viewer. It keeps no state
// of its own, so the value is always current.
type Badge struct {
	counter UnreadCounter
	viewer  ViewerSource
}

func NewBadge(counter UnreadCounter, viewer ViewerSource) *Badge {
	return &Badge{counter: counter, viewer: viewer}
}

// Count returns the active viewer's unread total, or 0 without a viewer.
func (b *Badge) Count() int {
	if b == nil || b.viewer == nil {
		return 0
	}
	user, ok := b.viewer.Current()
	if !ok {
		return 0
	}
	return b.CountFor(user.ID)
}

// CountFor returns userID's unread total.
func (b *Badge) CountFor(userID string) int {
	if b == nil || b.counter == nil {
		return 0
	}
	return b.counter.TotalUnreadCount(userID)
}
