package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var (
	ErrAuth               = errors.New("authentication error")
	ErrEmailTaken         = fmt.Errorf("%w: email already registered", ErrAuth)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrAuth)
	ErrNotFound           = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid registration")
)

const minPasswordLength = 8

// User is the persisted record of one person: credentials plus everything
// they own.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time

	Accounts     []account.Account
	Transactions []transaction.Transaction
	Rules        []matching.Rule
}

//go:generate mockgen -source=user.go -destination=repository_mock.go -package=user
type Repository interface {
	LoadUsers(ctx context.Context) ([]User, error)
	// SaveUsers replaces the full record of every given user.
	SaveUsers(ctx context.Context, users []User) error
}

// New validates the registration fields and hashes the password.
func New(name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if len(password) < minPasswordLength {
		return User{}, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	return User{
		ID:           uuid.New(),
		Name:         name,
		Email:        NormalizeEmail(addr.Address),
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}, nil
}

func (u User) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
