package app

import "giftem/pkg/domain"

// FeedItem is a post joined with its product and author. Product is the
// zero value with ProductAvailable false when the post outlived it.
type FeedItem struct {
	Post             domain.Post    `json:"post"`
	Product          domain.Product `json:"product"`
	Author           domain.User    `json:"author"`
	ProductAvailable bool           `json:"productAvailable"`
}

func (a *App) Feed() []FeedItem {
	return a.join(a.feed.All())
}

func (a *App) Post(id string) (FeedItem, error) {
	post, ok := a.feed.GetByID(id)
	if !ok {
		return FeedItem{}, ErrPostNotFound
	}
	return a.join([]domain.Post{post})[0], nil
}

// PostsForUser returns userID's posts in feed order.
func (a *App) PostsForUser(userID string) ([]FeedItem, error) {
	if _, ok := a.users.GetByID(userID); !ok {
		return nil, ErrUserNotFound
	}
	return a.join(a.feed.PostsForUser(userID)), nil
}

// ToggleLike flips the viewer's like on a post.
func (a *App) ToggleLike(postID string) (domain.Post, error) {
	post, ok := a.feed.ToggleLike(postID)
	if !ok {
		return domain.Post{}, ErrPostNotFound
	}
	return post, nil
}

func (a *App) join(posts []domain.Post) []FeedItem {
	items := make([]FeedItem, 0, len(posts))
	for _, post := range posts {
		item := FeedItem{Post: post}
		item.Product, item.ProductAvailable = a.products.GetByID(post.ProductID)
		item.Author, _ = a.users.GetByID(post.UserID)
		items = append(items, item)
	}
	return items
}
