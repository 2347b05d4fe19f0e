package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaekwang-park/todolist/internal/middleware"
	"github.com/jaekwang-park/todolist/internal/repository"
)

// UserIDResolver resolves tokens whose subject is already a user id,
// confirming the user still exists.
type UserIDResolver struct {
	users repository.UserRepository
}

func NewUserIDResolver(users repository.UserRepository) *UserIDResolver {
	return &UserIDResolver{users: users}
}

func (r *UserIDResolver) ResolveUserID(ctx context.Context, sub string) (string, error) {
	user, err := r.users.GetByID(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", middleware.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to resolve user: %w", err)
	}
	return user.ID, nil
}

// CognitoSubResolver maps a Cognito sub claim to the mirrored user id.
type CognitoSubResolver struct {
	users repository.UserRepository
}

func NewCognitoSubResolver(users repository.UserRepository) *CognitoSubResolver {
	return &CognitoSubResolver{users: users}
}

func (r *CognitoSubResolver) ResolveUserID(ctx context.Context, sub string) (string, error) {
	user, err := r.users.GetByCognitoSub(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", middleware.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to resolve user: %w", err)
	}
	return user.ID, nil
}

var (
	_ middleware.UserResolver = (*UserIDResolver)(nil)
	_ middleware.UserResolver = (*CognitoSubResolver)(nil)
)
