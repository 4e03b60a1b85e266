package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

// Service owns every user's book. Mutations of one user are serialised and
// run on a clone of the book that replaces the live one only after it was
// persisted, so a failed save leaves the in-memory state untouched.
type Service struct {
	repo      user.Repository
	publisher events.Publisher
	issuer    *auth.Issuer
	importer  *importer.Service
	now       func() time.Time

	mu      sync.RWMutex
	users   map[uuid.UUID]*entry
	byEmail map[string]uuid.UUID
}

type entry struct {
	mu   sync.RWMutex
	user user.User
	book *ledger.Book
}

// Session is the result of a successful login.
type Session struct {
	User      user.User
	Token     string
	ExpiresAt time.Time
}

// New loads every persisted user and rebuilds their books.
func New(ctx context.Context, repo user.Repository, publisher events.Publisher, issuer *auth.Issuer) (*Service, error) {
	users, err := repo.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}

	s := &Service{
		repo:      repo,
		publisher: publisher,
		issuer:    issuer,
		importer:  importer.NewService(),
		now:       time.Now,
		users:     make(map[uuid.UUID]*entry, len(users)),
		byEmail:   make(map[string]uuid.UUID, len(users)),
	}

	for _, u := range users {
		book, err := ledger.Restore(u.ID, u.Accounts, u.Transactions)
		if err != nil {
			return nil, fmt.Errorf("restoring user %s: %w", u.ID, err)
		}

		u.Accounts, u.Transactions = nil, nil
		s.users[u.ID] = &entry{user: u, book: book}
		s.byEmail[user.NormalizeEmail(u.Email)] = u.ID
	}

	slog.InfoContext(ctx, "workspace loaded", "users", len(users))

	return s, nil
}

func (s *Service) Register(ctx context.Context, name, email, password string) (user.User, error) {
	u, err := user.New(name, email, password)
	if err != nil {
		return user.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return user.User{}, user.ErrEmailTaken
	}

	if err := s.repo.SaveUsers(ctx, []user.User{u}); err != nil {
		return user.User{}, fmt.Errorf("saving user: %w", err)
	}

	s.users[u.ID] = &entry{user: u, book: ledger.New(u.ID)}
	s.byEmail[u.Email] = u.ID

	slog.InfoContext(ctx, "user registered", "user_id", u.ID)

	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	s.mu.RLock()
	id, ok := s.byEmail[user.NormalizeEmail(email)]
	s.mu.RUnlock()

	if !ok {
		return Session{}, user.ErrInvalidCredentials
	}

	e, err := s.entry(id)
	if err != nil {
		return Session{}, err
	}

	e.mu.RLock()
	u := e.user
	e.mu.RUnlock()

	if err := u.CheckPassword(password); err != nil {
		slog.WarnContext(ctx, "login failed", "user_id", id)
		return Session{}, err
	}

	token, expires, err := s.issuer.Issue(u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issuing token: %w", err)
	}

	return Session{User: u, Token: token, ExpiresAt: expires}, nil
}

// Authenticate resolves a session token to a known user id.
func (s *Service) Authenticate(token string) (uuid.UUID, error) {
	id, err := s.issuer.Parse(token)
	if err != nil {
		return uuid.Nil, err
	}

	if _, err := s.entry(id); err != nil {
		return uuid.Nil, auth.ErrInvalidToken
	}

	return id, nil
}

func (s *Service) User(userID uuid.UUID) (user.User, error) {
	e, err := s.entry(userID)
	if err != nil {
		return user.User{}, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.user, nil
}

func (s *Service) entry(userID uuid.UUID) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", user.ErrNotFound, userID)
	}

	return e, nil
}

// view runs fn against the live book under a read lock. fn must not keep
// references to the book.
func (s *Service) view(userID uuid.UUID, fn func(u user.User, b *ledger.Book) error) error {
	e, err := s.entry(userID)
	if err != nil {
		return err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return fn(e.user, e.book)
}

// mutate runs fn on a copy of the user's state, persists the result and
// only then makes it live.
func (s *Service) mutate(ctx context.Context, userID uuid.UUID, fn func(u *user.User, b *ledger.Book) error) error {
	e, err := s.entry(userID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.user
	u.Rules = slices.Clone(e.user.Rules)
	book := e.book.Clone()

	if err := fn(&u, book); err != nil {
		return err
	}

	record := u
	record.Accounts, record.Transactions = book.Snapshot()

	if err := s.repo.SaveUsers(ctx, []user.User{record}); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}

	e.user = u
	e.book = book

	return nil
}

// publish never fails the caller: the ledger change is already durable.
func (s *Service) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = s.now()

	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "publishing event failed", "type", e.Type, "user_id", e.UserID, "error", err)
	}
}
