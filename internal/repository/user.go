package repository

import (
	"context"

	"github.com/jaekwang-park/todolist/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user model.User) (model.User, error)
	GetByID(ctx context.Context, userID string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error)
	GetOrCreate(ctx context.Context, cognitoSub, email, name string) (model.User, error)
}
