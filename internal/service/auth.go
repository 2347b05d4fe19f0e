package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jaekwang-park/todolist/internal/cognito"
	"github.com/jaekwang-park/todolist/internal/model"
	"github.com/jaekwang-park/todolist/internal/repository"
)

const MinPasswordLength = 6

// AuthService registers and signs in users. Accounts live either in the
// local user store (bcrypt password hashes, HS256 tokens) or in a Cognito
// user pool, in which case the local store only mirrors the identity.
type AuthService struct {
	users   repository.UserRepository
	tokens  *TokenIssuer
	cognito cognito.Client
}

// NewLocalAuthService creates an AuthService backed by the user store.
func NewLocalAuthService(users repository.UserRepository, tokens *TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// NewCognitoAuthService creates an AuthService backed by a Cognito user pool.
func NewCognitoAuthService(users repository.UserRepository, client cognito.Client) *AuthService {
	return &AuthService{users: users, cognito: client}
}

func (s *AuthService) UsesCognito() bool {
	return s.cognito != nil
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type ConfirmSignUpInput struct {
	Email string
	Code  string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	ID                   string `json:"_id"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Token                string `json:"token,omitempty"`
	ConfirmationRequired bool   `json:"confirmationRequired,omitempty"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	var msgs []string
	if input.Name == "" {
		msgs = append(msgs, "Please add a name")
	}
	switch {
	case input.Email == "":
		msgs = append(msgs, "Please add an email")
	case !validEmail(input.Email):
		msgs = append(msgs, "Please add a valid email")
	}
	if len(input.Password) < MinPasswordLength {
		msgs = append(msgs, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(msgs) > 0 {
		return AuthResult{}, newValidationError(msgs...)
	}

	if s.cognito != nil {
		return s.registerCognito(ctx, input)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthResult{}, fmt.Errorf("%w: User already exists", ErrConflict)
		}
		return AuthResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	return s.withToken(user)
}

func (s *AuthService) registerCognito(ctx context.Context, input RegisterInput) (AuthResult, error) {
	out, err := s.cognito.SignUp(ctx, cognito.SignUpInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.GetOrCreate(ctx, out.UserSub, input.Email, input.Name)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to get or create user: %w", err)
	}

	return AuthResult{
		ID:                   user.ID,
		Name:                 user.Name,
		Email:                user.Email,
		ConfirmationRequired: !out.Confirmed,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Password == "" {
		return AuthResult{}, newValidationError("Please provide an email and password")
	}

	if s.cognito != nil {
		return s.loginCognito(ctx, input)
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, fmt.Errorf("%w: Invalid credentials", ErrUnauthorized)
		}
		return AuthResult{}, fmt.Errorf("failed to find user: %w", err)
	}
	if user.PasswordHash == "" {
		return AuthResult{}, fmt.Errorf("%w: Invalid credentials", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return AuthResult{}, fmt.Errorf("%w: Invalid credentials", ErrUnauthorized)
	}

	return s.withToken(user)
}

func (s *AuthService) loginCognito(ctx context.Context, input LoginInput) (AuthResult, error) {
	out, err := s.cognito.Login(ctx, cognito.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return AuthResult{}, err
	}

	// The token was just issued by Cognito; the gate verifies it on use.
	sub, err := extractSub(out.IDToken)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to extract sub from id token: %w", err)
	}

	user, err := s.users.GetOrCreate(ctx, sub, input.Email, "")
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to get or create user: %w", err)
	}

	return AuthResult{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: out.IDToken,
	}, nil
}

func (s *AuthService) ConfirmSignUp(ctx context.Context, input ConfirmSignUpInput) error {
	if s.cognito == nil {
		return fmt.Errorf("%w: local accounts do not need confirmation", ErrInvalidInput)
	}

	var msgs []string
	if strings.TrimSpace(input.Email) == "" {
		msgs = append(msgs, "Please add an email")
	}
	if strings.TrimSpace(input.Code) == "" {
		msgs = append(msgs, "Please add the confirmation code")
	}
	if len(msgs) > 0 {
		return newValidationError(msgs...)
	}

	return s.cognito.ConfirmSignUp(ctx, cognito.ConfirmSignUpInput{
		Email: strings.ToLower(strings.TrimSpace(input.Email)),
		Code:  strings.TrimSpace(input.Code),
	})
}

// Me returns the user behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID string) (model.User, error) {
	if userID == "" {
		return model.User{}, ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) withToken(user model.User) (AuthResult, error) {
	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
	}, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// extractSub reads the "sub" claim without verifying the signature.
func extractSub(idToken string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(idToken, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse JWT: %w", err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("failed to read sub claim: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("sub claim not found in JWT")
	}
	return sub, nil
}
