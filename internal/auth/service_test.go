package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jordanvelez/shopcore-backend/internal/users"
	pkgauth "github.com/jordanvelez/shopcore-backend/pkg/auth"
	"github.com/jordanvelez/shopcore-backend/pkg/auth/session"
	"github.com/jordanvelez/shopcore-backend/pkg/config"
	"github.com/jordanvelez/shopcore-backend/pkg/db/models"
	"github.com/jordanvelez/shopcore-backend/pkg/enums"
	pkgerrors "github.com/jordanvelez/shopcore-backend/pkg/errors"
	"github.com/jordanvelez/shopcore-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-test-secret-test-secret",
		Issuer:                 "shopcore-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// Low-cost parameters keep the suite fast.
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newAuthTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRegisterIssuesTokens(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	sessions := &stubSessionManager{}
	svc := newAuthTestService(t, repo, sessions)

	got, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "New.User@Example.com",
		Password: "hunter2hunter2",
		Name:     "New User",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got.AccessToken == "" || got.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if got.User.Email != "new.user@example.com" {
		t.Fatalf("expected normalized email, got %q", got.User.Email)
	}
	if got.User.Role != enums.UserRoleUser {
		t.Fatalf("expected default role, got %s", got.User.Role)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), got.AccessToken)
	if err != nil {
		t.Fatalf("minted token must parse: %v", err)
	}
	if claims.UserID != got.User.ID {
		t.Fatal("token bound to wrong user")
	}

	stored := repo.byEmail["new.user@example.com"]
	if stored == nil {
		t.Fatal("user not persisted")
	}
	if stored.PasswordHash == "hunter2hunter2" {
		t.Fatal("password stored in the clear")
	}
	match, err := security.VerifyPassword("hunter2hunter2", stored.PasswordHash)
	if err != nil || !match {
		t.Fatalf("stored hash must verify: match=%v err=%v", match, err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "idx_users_email"`)
	svc := newAuthTestService(t, repo, &stubSessionManager{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "taken@example.com",
		Password: "hunter2hunter2",
		Name:     "Taken",
	})
	assertAuthCode(t, err, pkgerrors.CodeConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	seedUser(t, repo, "user@example.com", "correct-password")
	svc := newAuthTestService(t, repo, &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	svc := newAuthTestService(t, newStubUserRepo(), &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever1",
	})
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginInactiveUser(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	user := seedUser(t, repo, "user@example.com", "correct-password")
	user.IsActive = false
	svc := newAuthTestService(t, repo, &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "correct-password",
	})
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRecordsLastLogin(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	user := seedUser(t, repo, "user@example.com", "correct-password")
	svc := newAuthTestService(t, repo, &stubSessionManager{})

	got, err := svc.Login(context.Background(), LoginRequest{
		Email:    "User@Example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.User.LastLoginAt == nil {
		t.Fatal("expected last login timestamp")
	}
	if repo.lastLoginFor != user.ID {
		t.Fatal("last login not persisted")
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	user := seedUser(t, repo, "user@example.com", "correct-password")
	sessions := &stubSessionManager{}
	svc := newAuthTestService(t, repo, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if pair.AccessToken == login.AccessToken {
		t.Fatal("expected a fresh access token")
	}
	if pair.RefreshToken == login.RefreshToken {
		t.Fatal("expected a fresh refresh token")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("rotated token must parse: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatal("rotated token bound to wrong user")
	}
}

func TestRefreshRejectsBadRefreshToken(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	seedUser(t, repo, "user@example.com", "correct-password")
	sessions := &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken}
	svc := newAuthTestService(t, repo, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "forged",
	})
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	sessions := &stubSessionManager{}
	svc := newAuthTestService(t, newStubUserRepo(), sessions)

	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-id" {
		t.Fatalf("expected session revocation, got %v", sessions.revoked)
	}
}

func TestLogoutRequiresSession(t *testing.T) {
	t.Parallel()

	svc := newAuthTestService(t, newStubUserRepo(), &stubSessionManager{})

	err := svc.Logout(context.Background(), "  ")
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Role:         enums.UserRoleUser,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	repo.byEmail[email] = user
	repo.byID[user.ID] = user
	return user
}

func assertAuthCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != want {
		t.Fatalf("expected %s, got %v", want, err)
	}
}

type stubUserRepo struct {
	byEmail      map[string]*models.User
	byID         map[uuid.UUID]*models.User
	createErr    error
	lastLoginFor uuid.UUID
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := dto.ToModel()
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLoginFor = id
	return nil
}

type stubSessionManager struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	next := session.NewAccessID()
	return next, "refresh-" + next, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}
