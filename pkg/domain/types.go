package domain

import "time"

type ProductCategory string

const (
	CategoryElectronics ProductCategory = "electronics"
	CategoryFashion     ProductCategory = "fashion"
	CategoryHome        ProductCategory = "home"
	CategoryBeauty      ProductCategory = "beauty"
	CategorySports      ProductCategory = "sports"
	CategoryBooks       ProductCategory = "books"
	CategoryToys        ProductCategory = "toys"
	CategoryFood        ProductCategory = "food"
	CategoryOther       ProductCategory = "other"
)

var categories = []ProductCategory{
	CategoryElectronics,
	CategoryFashion,
	CategoryHome,
	CategoryBeauty,
	CategorySports,
	CategoryBooks,
	CategoryToys,
	CategoryFood,
	CategoryOther,
}

// Categories returns every product category in display order.
func Categories() []ProductCategory {
	out := make([]ProductCategory, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory maps a raw string onto a known category.
func ParseCategory(raw string) (ProductCategory, bool) {
	for _, c := range categories {
		if string(c) == raw {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the enumerated categories.
func (c ProductCategory) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

type Product struct {
	ID            string          `json:"id" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	Description   string          `json:"description" yaml:"description"`
	Price         float64         `json:"price" yaml:"price"`
	OriginalPrice *float64        `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`
	ImageURLs     []string        `json:"imageUrls" yaml:"imageUrls"`
	Category      ProductCategory `json:"category" yaml:"category"`
	SellerID      string          `json:"sellerId" yaml:"sellerId"`
	Rating        float64         `json:"rating" yaml:"rating"`
	ReviewCount   int             `json:"reviewCount" yaml:"reviewCount"`
	Tags          []string        `json:"tags" yaml:"tags"`
}

// DiscountPercent derives the discount from OriginalPrice. It reports false
// when the product is not discounted.
func (p Product) DiscountPercent() (int, bool) {
	if p.OriginalPrice == nil {
		return 0, false
	}
	orig := *p.OriginalPrice
	if orig <= 0 || orig <= p.Price {
		return 0, false
	}
	return int((orig - p.Price) / orig * 100), true
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	out := p
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		out.OriginalPrice = &v
	}
	out.ImageURLs = append([]string(nil), p.ImageURLs...)
	out.Tags = append([]string(nil), p.Tags...)
	return out
}

type User struct {
	ID          string    `json:"id" yaml:"id"`
	Username    string    `json:"username" yaml:"username"`
	DisplayName string    `json:"displayName" yaml:"displayName"`
	AvatarURL   string    `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
	Bio         string    `json:"bio,omitempty" yaml:"bio,omitempty"`
	Verified    bool      `json:"verified" yaml:"verified"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt,omitempty"`
}

type Post struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	UserID       string    `json:"userId"`
	Caption      string    `json:"caption"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int       `json:"likeCount"`
	CommentCount int       `json:"commentCount"`
	Liked        bool      `json:"isLiked"`
}

type Message struct {
	ID             string    `json:"id" yaml:"id,omitempty"`
	ConversationID string    `json:"conversationId" yaml:"-"`
	SenderID       string    `json:"senderId" yaml:"senderId"`
	Body           string    `json:"body" yaml:"body"`
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt,omitempty"`
	Read           bool      `json:"read" yaml:"read"`
}

type Conversation struct {
	ID           string    `json:"id" yaml:"id,omitempty"`
	Participants [2]string `json:"participants" yaml:"participants"`
	Messages     []Message `json:"messages" yaml:"messages"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt,omitempty"`
}

// Includes reports whether userID takes part in the conversation.
func (c Conversation) Includes(userID string) bool {
	return userID != "" && (c.Participants[0] == userID || c.Participants[1] == userID)
}

// OtherParticipant returns the participant that is not userID.
func (c Conversation) OtherParticipant(userID string) string {
	if c.Participants[0] == userID {
		return c.Participants[1]
	}
	return c.Participants[0]
}

// UnreadCount counts messages not sent by viewerID that are still unread.
func (c Conversation) UnreadCount(viewerID string) int {
	n := 0
	for _, m := range c.Messages {
		if m.SenderID != viewerID && !m.Read {
			n++
		}
	}
	return n
}

// LastMessage returns the most recent message, if any.
func (c Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// LastActivity is the time of the latest message, or CreatedAt when empty.
func (c Conversation) LastActivity() time.Time {
	if m, ok := c.LastMessage(); ok {
		return m.CreatedAt
	}
	return c.CreatedAt
}

// Clone returns a copy whose message slice is not shared with c.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = append([]Message(nil), c.Messages...)
	return out
}
