package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"mavi-fit-game/internal/domain"
)

const minPasswordLength = 8

// TokenIssuer signs bearer tokens for an actor.
type TokenIssuer interface {
	Issue(actor domain.Actor) (string, time.Time, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token          string               `json:"token"`
	ExpiresAt      time.Time            `json:"expiresAt"`
	User           *domain.User         `json:"user"`
	UnlockedBadges []domain.BadgeUnlock `json:"unlockedBadges"`
}

// UserService covers registration, login and user administration.
type UserService struct {
	users  UserRepository
	badges *BadgeEngine
	tokens TokenIssuer
	hasher PasswordHasher
	loc    *time.Location
	now    func() time.Time
}

func NewUserService(users UserRepository, badges *BadgeEngine, tokens TokenIssuer, hasher PasswordHasher, loc *time.Location) *UserService {
	if loc == nil {
		loc = time.UTC
	}
	return &UserService{users: users, badges: badges, tokens: tokens, hasher: hasher, loc: loc, now: time.Now}
}

// WithClock is test-only for deterministic login days.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

// Register creates an employee account.
func (s *UserService) Register(ctx context.Context, email, password, displayName, storeCode string) (*domain.User, error) {
	return s.create(ctx, email, password, displayName, storeCode, domain.RoleEmployee)
}

// CreateAdmin creates an admin account; used by the CLI bootstrap.
func (s *UserService) CreateAdmin(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	return s.create(ctx, email, password, displayName, "", domain.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, email, password, displayName, storeCode string, role domain.Role) (*domain.User, error) {
	email = normalizeEmail(email)
	displayName = strings.TrimSpace(displayName)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, domain.Invalid("email", "invalid address")
	}
	if len(password) < minPasswordLength {
		return nil, domain.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if displayName == "" {
		return nil, domain.Invalid("displayName", "required")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         role,
		StoreCode:    strings.TrimSpace(storeCode),
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	slog.Info("user registered", slog.String("user_id", user.ID), slog.String("role", string(role)))
	return user, nil
}

// Login verifies credentials, advances the daily login streak and issues a token.
func (s *UserService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	streak := nextLoginStreak(user.LastLoginAt, user.LoginStreak, now, s.loc)
	longest := user.LongestLoginStreak
	if streak > longest {
		longest = streak
	}
	if err := s.users.RecordLogin(ctx, user.ID, streak, longest, now); err != nil {
		return LoginResult{}, fmt.Errorf("record login: %w", err)
	}
	user.LoginStreak = streak
	user.LongestLoginStreak = longest
	user.LastLoginAt = &now

	actor := domain.Actor{UserID: user.ID, Role: user.Role, StoreCode: user.StoreCode}
	token, expires, err := s.tokens.Issue(actor)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	unlocked := []domain.BadgeUnlock{}
	if s.badges != nil {
		all, err := s.badges.Evaluate(ctx, user.ID, EventLogin, BadgeFacts{Now: now, User: user})
		if err != nil {
			slog.Warn("login badge check failed", slog.String("user_id", user.ID), slog.Any("error", err))
		}
		unlocked = newlyUnlocked(all)
	}
	return LoginResult{Token: token, ExpiresAt: expires, User: user, UnlockedBadges: unlocked}, nil
}

// nextLoginStreak continues the streak when the previous login was yesterday, keeps it on a
// second login the same day and restarts it otherwise. Days are taken in loc.
func nextLoginStreak(last *time.Time, current int, now time.Time, loc *time.Location) int {
	if last == nil || current <= 0 {
		return 1
	}
	lastDay := dayOf(*last, loc)
	today := dayOf(now, loc)
	switch {
	case lastDay.Equal(today):
		return current
	case lastDay.AddDate(0, 0, 1).Equal(today):
		return current + 1
	}
	return 1
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Get returns a user visible to the actor.
func (s *UserService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.CanActFor(id) {
		return user, nil
	}
	if actor.Role == domain.RoleStoreManager && actor.StoreCode != "" && actor.StoreCode == user.StoreCode {
		return user, nil
	}
	return nil, domain.ErrForbidden
}

// List returns every user for admins and the own store's users for store managers.
func (s *UserService) List(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		return s.users.ListUsers(ctx, "")
	case domain.RoleStoreManager:
		if actor.StoreCode == "" {
			return nil, domain.ErrForbidden
		}
		return s.users.ListUsers(ctx, actor.StoreCode)
	}
	return nil, domain.ErrForbidden
}

// ChangeRole sets a user's role. Admin only.
func (s *UserService) ChangeRole(ctx context.Context, actor domain.Actor, id string, role domain.Role) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if !role.Valid() {
		return domain.Invalid("role", "unknown role")
	}
	return s.users.UpdateRole(ctx, id, role)
}

// Delete removes a user and everything it owns. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if id == actor.UserID {
		return domain.Invalid("id", "cannot delete own account")
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	slog.Info("user deleted", slog.String("user_id", id), slog.String("by", actor.UserID))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
