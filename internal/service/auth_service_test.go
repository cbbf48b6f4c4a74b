package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/pkg/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memUserRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{items: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.items[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) UpdateLoginAttempt(_ context.Context, id uuid.UUID, success bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if success {
		u.FailedLoginCount = 0
		u.LockedUntil = nil
		now := time.Now()
		u.LastLoginAt = &now
		return nil
	}
	u.FailedLoginCount++
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *memUserRepo) {
	t.Helper()
	repo := newMemUserRepo()
	mgr := auth.NewJWTManager(config.JWTConfig{
		Secret:          "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "clinicdesk-test",
	})
	return NewAuthService(repo, mgr, newTestAuditService(), zap.NewNop()), repo
}

func seedUser(t *testing.T, repo *memUserRepo, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &domain.User{
		Email:        "staff@clinic.test",
		PasswordHash: string(hash),
		FullName:     "Front Desk",
		IsActive:     true,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func TestLoginSuccess(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "correct horse battery")

	pair, err := svc.Login(context.Background(), "staff@clinic.test", "correct horse battery", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected both tokens")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("token type = %q", pair.TokenType)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo := newTestAuthService(t)
	u := seedUser(t, repo, "correct horse battery")

	_, err := svc.Login(context.Background(), "staff@clinic.test", "wrong", "10.0.0.1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), u.ID)
	if stored.FailedLoginCount != 1 {
		t.Errorf("failed login count = %d, want 1", stored.FailedLoginCount)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), "ghost@clinic.test", "whatever", "10.0.0.1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo := newTestAuthService(t)
	u := seedUser(t, repo, "correct horse battery")

	repo.mu.Lock()
	repo.items[u.ID].IsActive = false
	repo.mu.Unlock()

	_, err := svc.Login(context.Background(), "staff@clinic.test", "correct horse battery", "10.0.0.1")
	if !errors.Is(err, ErrAccountInactive) {
		t.Errorf("expected ErrAccountInactive, got %v", err)
	}
}

func TestLoginLockedAccount(t *testing.T) {
	svc, repo := newTestAuthService(t)
	u := seedUser(t, repo, "correct horse battery")

	until := time.Now().Add(10 * time.Minute)
	repo.mu.Lock()
	repo.items[u.ID].LockedUntil = &until
	repo.mu.Unlock()

	_, err := svc.Login(context.Background(), "staff@clinic.test", "correct horse battery", "10.0.0.1")
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("expected ErrAccountLocked, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "correct horse battery")

	pair, err := svc.Login(context.Background(), "staff@clinic.test", "correct horse battery", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	fresh, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if fresh.AccessToken == "" {
		t.Error("expected a fresh access token")
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "correct horse battery")

	pair, err := svc.Login(context.Background(), "staff@clinic.test", "correct horse battery", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.RefreshToken(context.Background(), pair.AccessToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("an access token must not refresh, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, repo := newTestAuthService(t)
	u := seedUser(t, repo, "correct horse battery")

	err := svc.ChangePassword(context.Background(), u.ID, "correct horse battery", "short")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("weak password should fail validation, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), u.ID, "wrong", "a much longer password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong current password, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), u.ID, "correct horse battery", "a much longer password"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := svc.Login(context.Background(), "staff@clinic.test", "a much longer password", "10.0.0.1"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}
