package store

import (
	"math/rand/v2"
	"sync"
	"time"

	"giftem/internal/util"
	"giftem/pkg/domain"
	"github.com/google/uuid"
)

// Ranges used to seed post engagement counters, inclusive.
const (
	MinSeedLikes    = 10
	MaxSeedLikes    = 500
	MinSeedComments = 5
	MaxSeedComments = 100
)

// postNamespace scopes post ids derived from product ids.
var postNamespace = uuid.MustParse("6f1c7a52-3d0b-4c1e-9a54-2b8e0c6d9f11")

// ProductSource supplies the products a feed is derived from.
type ProductSource interface {
	All() []domain.Product
}

// UserSource supplies the users posts are attributed to.
type UserSource interface {
	All() []domain.User
}

// RandomSource is satisfied by *rand.Rand from math/rand/v2.
type RandomSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// FeedConfig wires the feed's collaborators.
type FeedConfig struct {
	Products ProductSource
	Users    UserSource
	// Rand seeds like/comment counts. Defaults to the global generator.
	Rand RandomSource
	// Now is the reference clock for post timestamps. Defaults to time.Now.
	Now func() time.Time
}

// FeedStore owns the derived post list and its like state. It does not
// follow ProductStore on its own; callers invoke Rebuild after catalog changes.
type FeedStore struct {
	notifier

	products ProductSource
	users    UserSource

	mu    sync.RWMutex
	rng   RandomSource
	now   func() time.Time
	posts []domain.Post
}

// NewFeedStore builds the feed and derives the initial posts.
func NewFeedStore(cfg FeedConfig) *FeedStore {
	f := &FeedStore{
		products: cfg.Products,
		users:    cfg.Users,
		rng:      cfg.Rand,
		now:      cfg.Now,
	}
	if f.rng == nil {
		f.rng = globalRand{}
	}
	if f.now == nil {
		f.now = time.Now
	}
	f.posts = f.derive()
	return f
}

// Rebuild re-derives every post from the current products and users.
// Like state is reset.
func (f *FeedStore) Rebuild() {
	f.mu.Lock()
	f.posts = f.derive()
	f.mu.Unlock()
	f.notify()
}

// derive must be called with mu held or before the store is shared.
func (f *FeedStore) derive() []domain.Post {
	var products []domain.Product
	var users []domain.User
	if f.products != nil {
		products = f.products.All()
	}
	if f.users != nil {
		users = f.users.All()
	}
	if len(products) == 0 || len(users) == 0 {
		return []domain.Post{}
	}

	now := f.now()
	posts := make([]domain.Post, 0, len(products))
	for i, p := range products {
		posts = append(posts, domain.Post{
			ID:           PostIDForProduct(p.ID),
			ProductID:    p.ID,
			UserID:       users[i%len(users)].ID,
			Caption:      p.Description,
			CreatedAt:    now.Add(-time.Duration(i+1) * time.Hour),
			LikeCount:    MinSeedLikes + f.rng.IntN(MaxSeedLikes-MinSeedLikes+1),
			CommentCount: MinSeedComments + f.rng.IntN(MaxSeedComments-MinSeedComments+1),
		})
	}
	return posts
}

// PostIDForProduct returns the id of the post derived from productID.
func PostIDForProduct(productID string) string {
	return util.NamedID(postNamespace, productID)
}

// All returns posts in feed order, newest first.
func (f *FeedStore) All() []domain.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.Post, len(f.posts))
	copy(out, f.posts)
	return out
}

// GetByID looks up a post.
func (f *FeedStore) GetByID(id string) (domain.Post, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, p := range f.posts {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Post{}, false
}

// PostsForUser returns the posts attributed to userID in feed order.
func (f *FeedStore) PostsForUser(userID string) []domain.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.Post, 0)
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

// ToggleLike flips the viewer's like on a post and adjusts the counter by
// one. Unknown ids are ignored and report false.
func (f *FeedStore) ToggleLike(postID string) (domain.Post, bool) {
	f.mu.Lock()
	idx := -1
	for i := range f.posts {
		if f.posts[i].ID == postID {
			idx = i
			break
		}
	}
	if idx < 0 {
		f.mu.Unlock()
		return domain.Post{}, false
	}
	post := &f.posts[idx]
	if post.Liked {
		post.LikeCount--
	} else {
		post.LikeCount++
	}
	post.Liked = !post.Liked
	updated := *post
	f.mu.Unlock()

	f.notify()
	return updated, true
}
