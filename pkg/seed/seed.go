// Package seed provides the initial catalog, users and conversations the
// stores are populated from, either built in or loaded from YAML.
package seed

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"giftem/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Data is the injected seed configuration of every store.
type Data struct {
	CurrentUserID string                `yaml:"currentUserId"`
	Users         []domain.User         `yaml:"users"`
	Products      []domain.Product      `yaml:"products"`
	Conversations []domain.Conversation `yaml:"conversations"`
}

// Load reads and validates a YAML seed file.
func Load(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read seed: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates seed YAML.
func Parse(raw []byte) (Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("parse seed: %w", err)
	}
	if err := data.Validate(); err != nil {
		return Data{}, err
	}
	return data, nil
}

// Validate reports every problem found in d, joined.
func (d Data) Validate() error {
	var errs []error
	users := make(map[string]bool, len(d.Users))
	for i, u := range d.Users {
		if strings.TrimSpace(u.ID) == "" {
			errs = append(errs, fmt.Errorf("users[%d]: id is required", i))
			continue
		}
		if users[u.ID] {
			errs = append(errs, fmt.Errorf("users[%d]: duplicate id %q", i, u.ID))
		}
		users[u.ID] = true
	}
	if d.CurrentUserID != "" && !users[d.CurrentUserID] {
		errs = append(errs, fmt.Errorf("currentUserId %q is not a seeded user", d.CurrentUserID))
	}

	products := make(map[string]bool, len(d.Products))
	for i, p := range d.Products {
		if err := validateProduct(p); err != nil {
			errs = append(errs, fmt.Errorf("products[%d]: %w", i, err))
		}
		if p.ID == "" {
			continue
		}
		if products[p.ID] {
			errs = append(errs, fmt.Errorf("products[%d]: duplicate id %q", i, p.ID))
		}
		products[p.ID] = true
	}

	conversations := make(map[string]bool, len(d.Conversations))
	for i, c := range d.Conversations {
		a, b := c.Participants[0], c.Participants[1]
		switch {
		case a == "" || b == "":
			errs = append(errs, fmt.Errorf("conversations[%d]: two participants required", i))
		case a == b:
			errs = append(errs, fmt.Errorf("conversations[%d]: participants must differ", i))
		case !users[a] || !users[b]:
			errs = append(errs, fmt.Errorf("conversations[%d]: participants must be seeded users", i))
		}
		if c.ID != "" {
			if conversations[c.ID] {
				errs = append(errs, fmt.Errorf("conversations[%d]: duplicate id %q", i, c.ID))
			}
			conversations[c.ID] = true
		}
		for j, m := range c.Messages {
			if !c.Includes(m.SenderID) {
				errs = append(errs, fmt.Errorf("conversations[%d].messages[%d]: sender is not a participant", i, j))
			}
			if strings.TrimSpace(m.Body) == "" {
				errs = append(errs, fmt.Errorf("conversations[%d].messages[%d]: body is required", i, j))
			}
		}
	}
	return errors.Join(errs...)
}

func validateProduct(p domain.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return errors.New("name is required")
	case p.Price < 0:
		return errors.New("price must be >= 0")
	case p.OriginalPrice != nil && *p.OriginalPrice < 0:
		return errors.New("originalPrice must be >= 0")
	case !p.Category.Valid():
		return fmt.Errorf("unknown category %q", p.Category)
	case p.Rating < 1 || p.Rating > 5:
		return fmt.Errorf("rating %.1f outside [1, 5]", p.Rating)
	case p.ReviewCount < 0:
		return errors.New("reviewCount must be >= 0")
	case len(p.ImageURLs) == 0:
		return errors.New("at least one image is required")
	}
	return nil
}

// Default returns the built-in demo data. Message timestamps are relative
// to now.
func Default(now time.Time) Data {
	f := func(v float64) *float64 { return &v }
	return Data{
		CurrentUserID: "user-giftgiver",
		Users: []domain.User{
			{
				ID:          "user-giftgiver",
				Username:    "giftgiver",
				DisplayName: "Gift Giver",
				Bio:         "Always hunting for the perfect present.",
				Verified:    true,
				CreatedAt:   now.Add(-90 * 24 * time.Hour),
			},
			{
				ID:          "user-dealhunter",
				Username:    "dealhunter",
				DisplayName: "Deal Hunter",
				Bio:         "If it is on sale, I have seen it.",
				CreatedAt:   now.Add(-60 * 24 * time.Hour),
			},
			{
				ID:          "user-vintagefan",
				Username:    "vintagefan",
				DisplayName: "Vintage Fan",
				Bio:         "Old things, new homes.",
				CreatedAt:   now.Add(-30 * 24 * time.Hour),
			},
		},
		Products: []domain.Product{
			{
				Name:          "Broken Lamp",
				Description:   "Does not work but if fixed it could be a very nice lamp.",
				Price:         1.99,
				OriginalPrice: f(3.00),
				ImageURLs:     []string{"brokenlamp"},
				Category:      domain.CategoryHome,
				SellerID:      "my-store",
				Rating:        1.8,
				ReviewCount:   67,
				Tags:          []string{"lamp", "broken", "light", "vintage"},
			},
			{
				Name:          "Rubber Duck",
				Description:   "Nice rubber duck. Perfect for bath time. It was my mother's favorite.",
				Price:         4.99,
				OriginalPrice: f(7.99),
				ImageURLs:     []string{"duck"},
				Category:      domain.CategoryToys,
				SellerID:      "my-store",
				Rating:        4.8,
				ReviewCount:   234,
				Tags:          []string{"duck", "rubber", "bath", "toy", "yellow"},
			},
			{
				Name:          "Magic 8 Ball",
				Description:   "Ask it any yes or no question and shake for your answer. The fortune telling toy!",
				Price:         5.99,
				OriginalPrice: f(10.09),
				ImageURLs:     []string{"8ball"},
				Category:      domain.CategoryToys,
				SellerID:      "my-store",
				Rating:        4.5,
				ReviewCount:   156,
				Tags:          []string{"8ball", "magic", "fortune", "toy", "game"},
			},
		},
		Conversations: []domain.Conversation{
			{
				ID:           "conv-dealhunter",
				Participants: [2]string{"user-giftgiver", "user-dealhunter"},
				CreatedAt:    now.Add(-26 * time.Hour),
				Messages: []domain.Message{
					{SenderID: "user-dealhunter", Body: "Is the rubber duck still available?", CreatedAt: now.Add(-26 * time.Hour), Read: true},
					{SenderID: "user-giftgiver", Body: "Yes! Want me to hold it for you?", CreatedAt: now.Add(-25 * time.Hour), Read: true},
					{SenderID: "user-dealhunter", Body: "Please do, I'll pick it up tomorrow.", CreatedAt: now.Add(-2 * time.Hour)},
				},
			},
			{
				ID:           "conv-vintagefan",
				Participants: [2]string{"user-vintagefan", "user-giftgiver"},
				CreatedAt:    now.Add(-5 * time.Hour),
				Messages: []domain.Message{
					{SenderID: "user-vintagefan", Body: "Would you take $1.50 for the lamp?", CreatedAt: now.Add(-5 * time.Hour)},
					{SenderID: "user-vintagefan", Body: "I can fix it myself.", CreatedAt: now.Add(-4 * time.Hour)},
				},
			},
		},
	}
}
