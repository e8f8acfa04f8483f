package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/db/backends/memory"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	memkv "github.com/erselk/ugur-sahan-website/pkg/kv/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *domain.Profile) {
	t.Helper()
	database := memory.NewDatabase()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	profile, err := database.Profiles().Upsert(context.Background(), &domain.Profile{
		Email:        "ugur@example.com",
		DisplayName:  "Uğur Şahan",
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
	})
	require.NoError(t, err)

	store := memkv.New(0)
	t.Cleanup(func() { store.Close() })

	svc := NewService(database.Profiles(), store, Config{SessionTTL: time.Hour}, zap.NewNop().Sugar())
	return svc, profile
}

func TestLogin(t *testing.T) {
	svc, profile := newTestService(t)
	ctx := context.Background()

	testCases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "ugur@example.com", password: "battery staple"},
		{name: "unknown email", email: "nobody@example.com", password: "correct horse"},
		{name: "empty", email: "", password: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tc.email, tc.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}

	session, err := svc.Login(ctx, " UGUR@example.com ", "correct horse")
	require.NoError(t, err)
	assert.Len(t, session.Token, 64)
	assert.Equal(t, profile.ID, session.UserID)
	assert.True(t, session.IsAdmin())
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)
}

func TestCurrentSessionAndLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "ugur@example.com", "correct horse")
	require.NoError(t, err)

	bearer := httptest.NewRequest(http.MethodGet, "/", nil)
	bearer.Header.Set("Authorization", "Bearer "+session.Token)
	got, err := svc.CurrentSession(bearer)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)

	rec := httptest.NewRecorder()
	svc.SetCookie(rec, session)
	cookieReq := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		cookieReq.AddCookie(c)
	}
	_, err = svc.CurrentSession(cookieReq)
	require.NoError(t, err)

	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = svc.CurrentSession(anonymous)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, svc.Logout(ctx, session.Token))
	_, err = svc.CurrentSession(bearer)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionExpiry(t *testing.T) {
	store := memkv.New(0)
	defer store.Close()

	sessions := NewSessionStore(store, time.Hour)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }

	session, err := sessions.Create(context.Background(), &domain.Profile{ID: "u1", Role: domain.RoleAuthor})
	require.NoError(t, err)
	assert.False(t, session.IsAdmin())

	now = now.Add(2 * time.Hour)
	_, err = sessions.Get(context.Background(), session.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashPassword("long enough")
	require.NoError(t, err)
	assert.NotEqual(t, "long enough", hash)
}

func TestContextHelpers(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	session := &Session{UserID: "u1"}
	assert.Same(t, session, FromContext(WithSession(context.Background(), session)))
}
