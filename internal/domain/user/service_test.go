package user_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/testutil"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      *user.Service
	mailer   *testutil.FakeMailer
	store    *testutil.MemoryStore
	sessions *auth.SessionManager
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := testutil.Config()
	f := &fixture{
		db:     testutil.NewDB(t),
		mailer: &testutil.FakeMailer{},
		store:  testutil.NewMemoryStore(),
		now:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.sessions = auth.NewSessionManager(f.store, auth.NewJWTManager(cfg))
	f.svc = user.NewService(f.db, cfg, f.sessions, f.mailer,
		user.WithClock(func() time.Time { return f.now }),
		user.WithLogger(testutil.NullLogger()),
	)
	return f
}

func (f *fixture) register(t *testing.T, username string) string {
	t.Helper()
	_, err := f.svc.Register(context.Background(), &user.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return tokenFromURL(f.mailer.LastActivation(t).ActivationURL)
}

func tokenFromURL(url string) string {
	_, token, _ := strings.Cut(url, "token=")
	return token
}

func (f *fixture) load(t *testing.T, username string) user.User {
	t.Helper()
	var u user.User
	require.NoError(t, f.db.Where("username = ?", username).First(&u).Error)
	return u
}

func TestRegisterCreatesInactiveAccountAndEmailsLink(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Register(context.Background(), &user.RegisterRequest{
		Username: "  alice ",
		Email:    "Alice@Example.COM",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	stored := f.load(t, "alice")
	assert.False(t, stored.IsActive)
	require.NotNil(t, stored.EmailVerificationToken)
	require.NotNil(t, stored.EmailVerificationSentAt)
	assert.NotEqual(t, "secret123", stored.Password)

	sent := f.mailer.LastActivation(t)
	assert.Equal(t, "alice@example.com", sent.Email)
	assert.Equal(t, "http://shop.test/activate?token="+stored.EmailVerificationToken.String(), sent.ActivationURL)
	assert.Equal(t, 24*time.Hour, sent.ExpiresIn)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	f.register(t, "bob")

	_, err := f.svc.Register(context.Background(), &user.RegisterRequest{
		Username: "bob", Email: "other@example.com", Password: "secret123",
	})
	assert.Equal(t, apperror.CodeDuplicateEntity, apperror.CodeOf(err))
	assert.Equal(t, apperror.KindDuplicateUsername, apperror.KindOf(err))

	_, err = f.svc.Register(context.Background(), &user.RegisterRequest{
		Username: "bobby", Email: "BOB@example.com", Password: "secret123",
	})
	assert.Equal(t, apperror.KindDuplicateEmail, apperror.KindOf(err))
}

func TestRegisterValidatesInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  user.RegisterRequest
		kind apperror.Kind
	}{
		{"short password", user.RegisterRequest{Username: "carol", Email: "carol@example.com", Password: "12345"}, apperror.KindTooShort},
		{"bad email", user.RegisterRequest{Username: "carol", Email: "not-an-email", Password: "secret123"}, apperror.KindInvalidEmail},
		{"missing username", user.RegisterRequest{Email: "carol@example.com", Password: "secret123"}, apperror.KindRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), &tt.req)
			assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestRegisterDeliveryFailureKeepsNoAccount(t *testing.T) {
	f := newFixture(t)
	f.mailer.Err = errors.New("smtp down")

	_, err := f.svc.Register(context.Background(), &user.RegisterRequest{
		Username: "dave", Email: "dave@example.com", Password: "secret123",
	})
	assert.Equal(t, apperror.CodeDeliveryFailed, apperror.CodeOf(err))

	exists, err := f.svc.UsernameExists(context.Background(), "dave")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestActivate(t *testing.T) {
	t.Run("activates once", func(t *testing.T) {
		f := newFixture(t)
		token := f.register(t, "erin")

		result, err := f.svc.Activate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, user.ActivationActivated, result)

		stored := f.load(t, "erin")
		assert.True(t, stored.IsActive)
		assert.Nil(t, stored.EmailVerificationToken)
		assert.Nil(t, stored.EmailVerificationSentAt)

		_, err = f.svc.Activate(context.Background(), token)
		assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
	})

	t.Run("already active account keeps its token", func(t *testing.T) {
		f := newFixture(t)
		token := f.register(t, "frank")
		require.NoError(t, f.db.Model(&user.User{}).Where("username = ?", "frank").Update("is_active", true).Error)

		result, err := f.svc.Activate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, user.ActivationAlreadyActive, result)
	})

	t.Run("valid at exactly the ttl", func(t *testing.T) {
		f := newFixture(t)
		token := f.register(t, "gina")
		f.now = f.now.Add(24 * time.Hour)

		result, err := f.svc.Activate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, user.ActivationActivated, result)
	})

	t.Run("expired token is cleared", func(t *testing.T) {
		f := newFixture(t)
		token := f.register(t, "hank")
		f.now = f.now.Add(24*time.Hour + time.Second)

		_, err := f.svc.Activate(context.Background(), token)
		assert.Equal(t, apperror.CodeExpired, apperror.CodeOf(err))

		stored := f.load(t, "hank")
		assert.False(t, stored.IsActive)
		assert.Nil(t, stored.EmailVerificationToken)

		_, err = f.svc.Activate(context.Background(), token)
		assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
	})

	t.Run("garbage token", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Activate(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestResendActivation(t *testing.T) {
	f := newFixture(t)
	first := f.register(t, "ivy")
	f.now = f.now.Add(30 * time.Hour)

	sent, err := f.svc.ResendActivation(context.Background(), &user.ResendActivationRequest{Email: "ivy@example.com"})
	require.NoError(t, err)
	assert.True(t, sent)

	second := tokenFromURL(f.mailer.LastActivation(t).ActivationURL)
	assert.NotEqual(t, first, second)

	result, err := f.svc.Activate(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, user.ActivationActivated, result)

	sent, err = f.svc.ResendActivation(context.Background(), &user.ResendActivationRequest{Email: "ivy@example.com"})
	require.NoError(t, err)
	assert.False(t, sent)

	_, err = f.svc.ResendActivation(context.Background(), &user.ResendActivationRequest{Email: "nobody@example.com"})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	testutil.SeedUser(t, f.db, "jack", true)
	testutil.SeedUser(t, f.db, "kate", false)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, &user.LoginRequest{Username: "jack", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", first.TokenType)
	assert.False(t, first.Reused)
	assert.NotNil(t, first.User.LastLoginAt)

	second, err := f.svc.Login(ctx, &user.LoginRequest{Username: "jack", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, first.AccessToken, second.AccessToken)

	_, err = f.svc.Login(ctx, &user.LoginRequest{Username: "jack", Password: "wrong-pass"})
	assert.Equal(t, apperror.CodeInvalidCredentials, apperror.CodeOf(err))

	_, err = f.svc.Login(ctx, &user.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.Equal(t, apperror.CodeInvalidCredentials, apperror.CodeOf(err))

	_, err = f.svc.Login(ctx, &user.LoginRequest{Username: "kate", Password: "secret123"})
	assert.Equal(t, apperror.CodeInvalidCredentials, apperror.CodeOf(err))
	assert.Equal(t, apperror.KindInactiveAccount, apperror.KindOf(err))
}

func TestLogoutInvalidatesCredential(t *testing.T) {
	f := newFixture(t)
	testutil.SeedUser(t, f.db, "liam", true)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, &user.LoginRequest{Username: "liam", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, resp.AccessToken))
	_, err = f.sessions.Validate(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)

	err = f.svc.Logout(ctx, resp.AccessToken)
	assert.Equal(t, apperror.CodeInvalidCredentials, apperror.CodeOf(err))

	next, err := f.svc.Login(ctx, &user.LoginRequest{Username: "liam", Password: "secret123"})
	require.NoError(t, err)
	assert.False(t, next.Reused)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	testutil.SeedUser(t, f.db, "mia", true)
	ctx := context.Background()

	old, err := f.svc.Login(ctx, &user.LoginRequest{Username: "mia", Password: "secret123"})
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, &user.ResetPasswordRequest{Email: "mia@example.com", NewPassword: "short"})
	assert.Equal(t, apperror.KindTooShort, apperror.KindOf(err))

	err = f.svc.ResetPassword(ctx, &user.ResetPasswordRequest{Email: "ghost@example.com", NewPassword: "newsecret"})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	require.NoError(t, f.svc.ResetPassword(ctx, &user.ResetPasswordRequest{Email: "MIA@example.com", NewPassword: "newsecret"}))
	require.Len(t, f.mailer.Changed, 1)
	assert.Equal(t, "mia", f.mailer.Changed[0].Username)

	_, err = f.sessions.Validate(ctx, old.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)

	_, err = f.svc.Login(ctx, &user.LoginRequest{Username: "mia", Password: "secret123"})
	assert.Equal(t, apperror.CodeInvalidCredentials, apperror.CodeOf(err))
	_, err = f.svc.Login(ctx, &user.LoginRequest{Username: "mia", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestLookups(t *testing.T) {
	f := newFixture(t)
	seeded := testutil.SeedUser(t, f.db, "noah", false)
	ctx := context.Background()

	exists, err := f.svc.UsernameExists(ctx, "noah")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.svc.EmailExists(ctx, "NOAH@example.com ")
	require.NoError(t, err)
	assert.True(t, exists)

	public, err := f.svc.GetUser(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PublicUser{ID: seeded.ID, Username: "noah", Email: "noah@example.com"}, *public)

	_, err = f.svc.GetUser(ctx, seeded.ID+100)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}
