package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/pkg/logger"
)

type fakeUserRepo struct {
	byEmail map[string]*User
	byID    map[id.ID]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*User),
		byID:    make(map[id.ID]*User),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return apperror.NewDuplicate("user", "email", u.Email)
	}
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := f.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID)
	}
	return u, nil
}

func newAuthService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	jwtSvc := NewJWTService(JWTConfig{Secret: "test-secret"})
	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	return NewService(repo, jwtSvc, log), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "ana@example.ec", "correct-horse")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	session, err := svc.Login(ctx, "ana@example.ec", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)
}

func TestRegister_RejectsBadInput(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "correct-horse")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	_, err = svc.Register(ctx, "ana@example.ec", "short")
	require.Error(t, err)
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ana@example.ec", "correct-horse")
	require.NoError(t, err)

	_, errEmail := svc.Login(ctx, "nobody@example.ec", "correct-horse")
	_, errPass := svc.Login(ctx, "ana@example.ec", "wrong-horse")

	require.Error(t, errEmail)
	require.Error(t, errPass)
	assert.Equal(t, errEmail.Error(), errPass.Error())
	assert.Equal(t, 401, apperror.GetHTTPStatus(errEmail))
	assert.Equal(t, 401, apperror.GetHTTPStatus(errPass))
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "ana@example.ec", "correct-horse")
	require.NoError(t, err)
	repo.byEmail[user.Email].IsActive = false

	_, err = svc.Login(ctx, "ana@example.ec", "correct-horse")
	require.Error(t, err)
	assert.Equal(t, 401, apperror.GetHTTPStatus(err))
}

func TestIdentify(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "ana@example.ec", "correct-horse")
	require.NoError(t, err)
	session, err := svc.Login(ctx, "ana@example.ec", "correct-horse")
	require.NoError(t, err)

	got, err := svc.Identify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	repo.byID[user.ID].IsActive = false
	_, err = svc.Identify(ctx, session.Token)
	require.Error(t, err)
	assert.Equal(t, 401, apperror.GetHTTPStatus(err))

	_, err = svc.Identify(ctx, "garbage")
	require.Error(t, err)
}
