package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domuser "example.com/voltcart/app/internal/domain/user"
)

type PasswordComparer interface {
	Compare(hash string, password string) error
}

// Claims is what a session token vouches for. SessionID keys the cart held
// for the browser session; a new login starts a new session.
type Claims struct {
	UserID    int64
	SessionID string
	RoleCode  domuser.RoleCode
	Email     string
	Name      string
}

type TokenService interface {
	GenerateToken(u *domuser.User, sessionID string) (string, error)
	ParseToken(token string) (*Claims, error)
}

type Service struct {
	userRepo domuser.Repository
	checker  PasswordComparer
	tokens   TokenService
	newID    func() string
}

func NewService(
	userRepo domuser.Repository,
	checker PasswordComparer,
	tokens TokenService,
) *Service {
	return &Service{
		userRepo: userRepo,
		checker:  checker,
		tokens:   tokens,
		newID:    uuid.NewString,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token     string
	SessionID string
	User      *domuser.User
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return nil, domuser.ErrInvalidCredential
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, domuser.ErrUnauthorized
	}
	if !u.IsActive {
		return nil, domuser.ErrUnauthorized
	}

	if err := s.checker.Compare(u.PasswordHash, in.Password); err != nil {
		return nil, domuser.ErrUnauthorized
	}

	sessionID := s.newID()
	token, err := s.tokens.GenerateToken(u, sessionID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		SessionID: sessionID,
		User:      u,
	}, nil
}

// Me returns the active account behind a token's claims.
func (s *Service) Me(ctx context.Context, claims *Claims) (*domuser.User, error) {
	if claims == nil {
		return nil, domuser.ErrUnauthorized
	}
	u, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, domuser.ErrUnauthorized
	}
	return u, nil
}
