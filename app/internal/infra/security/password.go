package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	domuser "example.com/voltcart/app/internal/domain/user"
)

var ErrPasswordTooShort = domuser.ErrPasswordTooShort

// BcryptService hashes account passwords and verifies them at login.
type BcryptService struct {
	cost int
}

func NewBcryptService(cost int) *BcryptService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptService{cost: cost}
}

func (s *BcryptService) Hash(password string) (string, error) {
	if len(password) < domuser.MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare returns nil when password matches hash. A malformed hash is
// reported as a mismatch so callers need only one failure path.
func (s *BcryptService) Compare(hash string, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return err
}
