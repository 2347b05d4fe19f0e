package cognito

import (
	"context"
	"time"
)

// Client covers the user pool calls behind register, confirm and login.
type Client interface {
	SignUp(ctx context.Context, input SignUpInput) (SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, input ConfirmSignUpInput) error
	Login(ctx context.Context, input LoginInput) (AuthOutput, error)
}

type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// SignUpOutput reports the new user's sub and whether a confirmation code
// was sent (CodeDelivery names the medium, e.g. "EMAIL").
type SignUpOutput struct {
	UserSub      string
	Confirmed    bool
	CodeDelivery string
}

type ConfirmSignUpInput struct {
	Email string
	Code  string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthOutput carries the ID token of a successful login. The API gate
// verifies ID tokens, whose audience is the app client id.
type AuthOutput struct {
	IDToken   string
	ExpiresIn time.Duration
}
