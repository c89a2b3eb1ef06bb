package service

import (
	"context"
	"testing"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adminRepo := mocks.NewMockAdminRepository(ctrl)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	svc := NewAuthService(adminRepo, hashSvc, tokenSvc, zerolog.Nop())

	admin := &domain.AdminUser{ID: uuid.New(), Username: "ops", PasswordHash: "$argon2id$..."}
	expiresAt := time.Now().Add(time.Hour)

	adminRepo.EXPECT().GetByUsername(gomock.Any(), "ops").Return(admin, nil)
	hashSvc.EXPECT().Verify("hunter2", admin.PasswordHash).Return(true, nil)
	tokenSvc.EXPECT().Generate(admin.ID, "ops").Return("jwt-token", expiresAt, nil)

	token, expiry, err := svc.Login(context.Background(), "ops", "hunter2")

	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, expiresAt, expiry)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adminRepo := mocks.NewMockAdminRepository(ctrl)
	svc := NewAuthService(adminRepo, mocks.NewMockHashService(ctrl), mocks.NewMockTokenService(ctrl), zerolog.Nop())

	adminRepo.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)

	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	requireAppCode(t, err, "SEC_002")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adminRepo := mocks.NewMockAdminRepository(ctrl)
	hashSvc := mocks.NewMockHashService(ctrl)
	svc := NewAuthService(adminRepo, hashSvc, mocks.NewMockTokenService(ctrl), zerolog.Nop())

	admin := &domain.AdminUser{ID: uuid.New(), Username: "ops", PasswordHash: "$argon2id$..."}
	adminRepo.EXPECT().GetByUsername(gomock.Any(), "ops").Return(admin, nil)
	hashSvc.EXPECT().Verify("wrong", admin.PasswordHash).Return(false, nil)

	_, _, err := svc.Login(context.Background(), "ops", "wrong")
	requireAppCode(t, err, "SEC_002")
}

func TestArgon2HashService_RoundTrip(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("hunter2")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := svc.Verify("hunter2", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("not-hunter2", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2HashService_Verify_MalformedHash(t *testing.T) {
	svc := NewArgon2HashService()

	_, err := svc.Verify("pw", "not-a-hash")
	assert.Error(t, err)
}

func TestJWTTokenService_RoundTrip(t *testing.T) {
	svc := NewJWTTokenService("test-secret", time.Hour, "elopay")
	adminID := uuid.New()

	token, expiresAt, err := svc.Generate(adminID, "ops")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, adminID, claims.AdminID)
	assert.Equal(t, "ops", claims.Username)
}

func TestJWTTokenService_Validate_WrongSecret(t *testing.T) {
	svc := NewJWTTokenService("test-secret", time.Hour, "elopay")
	token, _, err := svc.Generate(uuid.New(), "ops")
	require.NoError(t, err)

	other := NewJWTTokenService("other-secret", time.Hour, "elopay")
	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Validate_Expired(t *testing.T) {
	svc := NewJWTTokenService("test-secret", -time.Minute, "elopay")
	token, _, err := svc.Generate(uuid.New(), "ops")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Validate_Garbage(t *testing.T) {
	svc := NewJWTTokenService("test-secret", time.Hour, "elopay")
	_, err := svc.Validate("not.a.jwt")
	assert.Error(t, err)
}
