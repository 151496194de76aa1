package service

import (
	"HalalCalendar/internal/api/dto"
	"HalalCalendar/internal/model"
	"HalalCalendar/internal/pkg/security"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(repo *MockUserRepo, revoker *fakeRevoker) (UserService, *security.TokenManager) {
	tokens := security.NewTokenManager("test-secret", "HalalCalendar", time.Hour)
	return NewUserService(repo, tokens, revoker), tokens
}

func TestRegister(t *testing.T) {
	repo := &MockUserRepo{}
	svc, _ := newUserService(repo, &fakeRevoker{})
	ctx := context.Background()

	repo.On("GetUserByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "new@example.com" && u.Role == model.RoleUser && u.Password != nil && *u.Password != "secret1"
	})).Return(nil)

	got, err := svc.Register(ctx, &dto.RegisterDTO{Email: " New@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, model.RoleUser, got.Role)
	repo.AssertExpectations(t)
}

func TestRegisterRejects(t *testing.T) {
	repo := &MockUserRepo{}
	svc, _ := newUserService(repo, &fakeRevoker{})
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterDTO{Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, &dto.RegisterDTO{Email: "a@example.com", Password: "123"})
	assert.ErrorIs(t, err, ErrValidation)

	repo.On("GetUserByEmail", mock.Anything, "taken@example.com").Return(&model.User{ID: 1}, nil)
	_, err = svc.Register(ctx, &dto.RegisterDTO{Email: "taken@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserExist)
}

func TestLoginAndLogout(t *testing.T) {
	repo := &MockUserRepo{}
	revoker := &fakeRevoker{}
	svc, tokens := newUserService(repo, revoker)
	ctx := context.Background()

	hash, err := security.HashPassword("secret1")
	require.NoError(t, err)
	repo.On("GetUserByEmail", mock.Anything, "admin@example.com").
		Return(&model.User{ID: 5, Email: "admin@example.com", Role: model.RoleAdmin, Password: &hash}, nil)
	repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	_, err = svc.Login(ctx, &dto.CredentialDTO{Email: "admin@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)

	_, err = svc.Login(ctx, &dto.CredentialDTO{Email: "ghost@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)

	token, err := svc.Login(ctx, &dto.CredentialDTO{Email: "ADMIN@example.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	require.NoError(t, svc.Logout(ctx, token.Token))
	signature, err := security.ExtractSignature(token.Token)
	require.NoError(t, err)
	assert.True(t, IsRevokedToken(ctx, revoker, signature))
	assert.LessOrEqual(t, revoker.revoked[signature], time.Hour)

	assert.ErrorIs(t, svc.Logout(ctx, "garbage"), ErrUnauthenticated)
}

func TestGetUserInfo(t *testing.T) {
	repo := &MockUserRepo{}
	svc, _ := newUserService(repo, &fakeRevoker{})
	ctx := context.Background()

	_, err := svc.GetUserInfo(ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	repo.On("GetUserById", mock.Anything, uint64(2)).Return(&model.User{ID: 2, Email: "user@example.com", Role: model.RoleUser}, nil)
	repo.On("GetUserById", mock.Anything, uint64(3)).Return(nil, nil)

	got, err := svc.GetUserInfo(ctx, userCaller)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got.Email)

	_, err = svc.GetUserInfo(ctx, &Caller{UserID: 3})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	repo := &MockUserRepo{}
	svc, _ := newUserService(repo, &fakeRevoker{})
	ctx := context.Background()

	repo.On("GetUserByEmail", mock.Anything, "existing@example.com").Return(&model.User{ID: 8, Email: "existing@example.com", Role: model.RoleUser}, nil)
	repo.On("UpdateUserRole", mock.Anything, uint64(8), model.RoleAdmin).Return(nil)

	got, err := svc.EnsureAdmin(ctx, "existing@example.com", "", nil)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)

	repo.On("GetUserByEmail", mock.Anything, "fresh@example.com").Return(nil, nil)
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleAdmin && u.Email == "fresh@example.com"
	})).Return(nil)

	got, err = svc.EnsureAdmin(ctx, "fresh@example.com", "secret1", nil)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)
	repo.AssertExpectations(t)
}
