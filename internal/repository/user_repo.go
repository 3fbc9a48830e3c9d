package repository

import (
	"context"
	"strings"

	"railway/internal/domain"
	"railway/internal/storage"
)

var userSearchFields = []string{"name", "username", "email"}

type UserRepository struct {
	users *storage.Collection[domain.User]
}

func NewUserRepository(backend storage.Backend) *UserRepository {
	return &UserRepository{
		users: storage.NewCollection(backend, KindUsers, func(u *domain.User) string { return u.ID }),
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.users.Insert(ctx, u)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.users.Get(ctx, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, func(u *domain.User) bool { return u.Username == username })
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findOne(ctx, func(u *domain.User) bool { return strings.ToLower(u.Email) == email })
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.users.List(ctx)
}

// Search matches name, username and email.
func (r *UserRepository) Search(ctx context.Context, term string) ([]domain.User, error) {
	return r.users.Search(ctx, term, userSearchFields)
}

func (r *UserRepository) Update(ctx context.Context, id string, mutate func(*domain.User) error) (*domain.User, error) {
	return r.users.Update(ctx, id, mutate)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.users.Delete(ctx, id)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	return r.users.Count(ctx)
}

func (r *UserRepository) findOne(ctx context.Context, match func(*domain.User) bool) (*domain.User, error) {
	found, err := r.users.Filter(ctx, match)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}
