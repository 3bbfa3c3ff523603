package app

import "giftem/pkg/domain"

func (a *App) Users() []domain.User { return a.users.All() }

func (a *App) User(id string) (domain.User, error) {
	u, ok := a.users.GetByID(id)
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return u, nil
}

// CurrentUser returns the active viewer.
func (a *App) CurrentUser() (domain.User, error) {
	u, ok := a.users.Current()
	if !ok {
		return domain.User{}, ErrNoViewer
	}
	return u, nil
}

func (a *App) SetCurrentUser(id string) (domain.User, error) {
	if !a.users.SetCurrent(id) {
		return domain.User{}, ErrUserNotFound
	}
	a.logger.Info("active viewer changed", "user_id", id)
	return a.User(id)
}
