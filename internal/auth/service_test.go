package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/internal/users"
	pkgAuth "github.com/shopease/shopease-backend/pkg/auth"
	"github.com/shopease/shopease-backend/pkg/config"
	"github.com/shopease/shopease-backend/pkg/db/models"
	"github.com/shopease/shopease-backend/pkg/enums"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
	"github.com/shopease/shopease-backend/pkg/security"
)

var testJWTCfg = config.JWTConfig{
	Secret:                 "test-secret",
	Issuer:                 "shopease-test",
	ExpirationMinutes:      15,
	RefreshTokenTTLMinutes: 60,
}

var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     8,
	ArgonKeyLen:      16,
}

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
	logins  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: map[string]*models.User{}, byID: map[uuid.UUID]*models.User{}}
}

func (r *stubUserRepo) add(user *models.User) {
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
}

func (r *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	user.ID = uuid.New()
	r.add(user)
	return user, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, _ time.Time) error {
	r.logins++
	return nil
}

type stubSessionManager struct {
	generated map[string]string
	revoked   []string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{generated: map[string]string{}}
}

func (m *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	m.generated[accessID] = token
	return token, nil
}

func (m *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := m.generated[oldAccessID]
	if !ok || stored != provided {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	delete(m.generated, oldAccessID)
	newID := uuid.NewString()
	token := "refresh-" + newID
	m.generated[newID] = token
	return newID, token, nil
}

func (m *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	m.revoked = append(m.revoked, accessID)
	delete(m.generated, accessID)
	return nil
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordCfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func newTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTCfg,
		PasswordConfig: testPasswordCfg,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterIssuesTokens(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, newStubSessionManager())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Asha Verma",
		Email:    "Asha@Example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Email != "asha@example.com" {
		t.Fatalf("expected lowercased email, got %q", resp.User.Email)
	}
	if resp.User.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %q", resp.User.Role)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected access and refresh tokens")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTCfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Fatal("expected token subject to match created user")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{ID: uuid.New(), Email: "taken@example.com", Role: enums.UserRoleCustomer, IsActive: true})
	svc := newTestService(t, repo, newStubSessionManager())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Someone",
		Email:    "taken@example.com",
		Password: "whatever1",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		PasswordHash: mustHashPassword(t, "correct horse"),
		Name:         "Asha Verma",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	})
	svc := newTestService(t, repo, newStubSessionManager())

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "asha@example.com", Password: "wrong"}); err == nil {
		t.Fatal("expected login to fail with wrong password")
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "asha@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if repo.logins != 1 {
		t.Fatalf("expected last login to be recorded once, got %d", repo.logins)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{
		ID:           uuid.New(),
		Email:        "gone@example.com",
		PasswordHash: mustHashPassword(t, "correct horse"),
		Role:         enums.UserRoleCustomer,
		IsActive:     false,
	})
	svc := newTestService(t, repo, newStubSessionManager())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "gone@example.com", Password: "correct horse"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessionManager()
	svc := newTestService(t, repo, sessions)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Asha Verma",
		Email:    "asha@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.RefreshToken == resp.RefreshToken {
		t.Fatal("expected a rotated refresh token")
	}

	// the old pair can no longer be used
	if _, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}); err == nil {
		t.Fatal("expected old refresh token to be rejected")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessionManager()
	svc := newTestService(t, repo, sessions)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Asha Verma",
		Email:    "asha@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTCfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("expected one revoked session, got %d", len(sessions.revoked))
	}
}
