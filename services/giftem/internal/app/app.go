package app

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"giftem/pkg/domain"
	"giftem/pkg/notify"
	"giftem/pkg/seed"
	"giftem/pkg/store"
)

// ChangePublisher turns store changes into outbound events.
// notify.RedisPublisher satisfies it.
type ChangePublisher interface {
	Listener(topic string) func()
}

// Config holds runtime configuration for the core application.
type Config struct {
	// Seed defaults to seed.Default when nil.
	Seed *seed.Data
	// CurrentUserID overrides the seed's active viewer when set.
	CurrentUserID string
	// RandomSeed makes feed engagement counts reproducible when non-zero.
	RandomSeed uint64
	Rand       store.RandomSource
	Now        func() time.Time
	Publisher  ChangePublisher
	Logger     *slog.Logger
}

// App wires the stores together and is the single entry point for reads
// and mutations.
type App struct {
	users    *store.UserStore
	products *store.ProductStore
	feed     *store.FeedStore
	messages *store.MessageStore
	badge    *notify.Badge
	logger   *slog.Logger
}

// New builds the stores bottom-up from the seed data.
func New(cfg Config) (*App, error) {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	data := seed.Default(now())
	if cfg.Seed != nil {
		if err := cfg.Seed.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
		}
		data = *cfg.Seed
	}
	currentID := data.CurrentUserID
	override := strings.TrimSpace(cfg.CurrentUserID)
	if override != "" {
		currentID = override
	}
	rng := cfg.Rand
	if rng == nil && cfg.RandomSeed != 0 {
		rng = rand.New(rand.NewPCG(cfg.RandomSeed, cfg.RandomSeed^0x9e3779b97f4a7c15))
	}

	users := store.NewUserStore(data.Users, currentID)
	if override != "" {
		if _, ok := users.GetByID(currentID); !ok {
			return nil, fmt.Errorf("current user %q: %w", currentID, ErrUserNotFound)
		}
	}
	products := store.NewProductStore(data.Products)
	feed := store.NewFeedStore(store.FeedConfig{
		Products: products,
		Users:    users,
		Rand:     rng,
		Now:      now,
	})
	messages := store.NewMessageStore(users, data.Conversations, now)

	a := &App{
		users:    users,
		products: products,
		feed:     feed,
		messages: messages,
		badge:    notify.NewBadge(messages, users),
		logger:   logger,
	}
	if cfg.Publisher != nil {
		products.Subscribe(cfg.Publisher.Listener(notify.TopicProducts))
		users.Subscribe(cfg.Publisher.Listener(notify.TopicUsers))
		feed.Subscribe(cfg.Publisher.Listener(notify.TopicFeed))
		messages.Subscribe(cfg.Publisher.Listener(notify.TopicMessages))
	}
	return a, nil
}

// Subscription points for in-process observers.

func (a *App) SubscribeProducts(fn store.Listener) func() { return a.products.Subscribe(fn) }
func (a *App) SubscribeUsers(fn store.Listener) func()    { return a.users.Subscribe(fn) }
func (a *App) SubscribeFeed(fn store.Listener) func()     { return a.feed.Subscribe(fn) }
func (a *App) SubscribeMessages(fn store.Listener) func() { return a.messages.Subscribe(fn) }

// ReloadSeed swaps every store's seed and rebuilds the feed. The active
// viewer is kept when it still exists.
func (a *App) ReloadSeed(data seed.Data) error {
	if err := data.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	viewer := data.CurrentUserID
	if cur, ok := a.users.Current(); ok && slices.ContainsFunc(data.Users, func(u domain.User) bool { return u.ID == cur.ID }) {
		viewer = cur.ID
	}
	a.users.ReplaceSeed(data.Users, viewer)
	a.products.ReplaceSeed(data.Products)
	a.messages.ReplaceSeed(data.Conversations)
	a.feed.Rebuild()
	a.logger.Info("seed applied",
		"products", len(data.Products),
		"users", len(data.Users),
		"conversations", len(data.Conversations),
	)
	return nil
}
