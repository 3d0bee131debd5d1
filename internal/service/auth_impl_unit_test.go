package service

import (
	"context"
	"testing"
	"time"

	"mylibrary-server/internal/config"
	"mylibrary-server/internal/models"
	"mylibrary-server/internal/service/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:  "unit-test-secret",
		JWTIssuer:  "mylibrary-test",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
}

func newTestAuthService(userRepo *mocks.UserRepository, tokenRepo *mocks.TokenRepository, cfg *config.Config) AuthService {
	return NewAuthService(userRepo, tokenRepo, cfg, zap.NewNop())
}

func TestHashAndCheckPassword(t *testing.T) {
	password := "mysecretpassword"

	hashed, err := hashPassword(password, bcrypt.MinCost)
	require.NoError(t, err, "hashPassword should not return an error")
	require.NotEmpty(t, hashed)
	assert.NotEqual(t, password, hashed, "hash must differ from the plaintext")

	assert.True(t, checkPasswordHash(password, hashed), "correct password should verify")
	assert.False(t, checkPasswordHash("wrongpassword", hashed), "wrong password should not verify")
	assert.False(t, checkPasswordHash(password, "not-a-bcrypt-hash"), "invalid hash should not verify")
}

func TestValidateRegisterInput(t *testing.T) {
	valid := RegisterInput{Username: "alice_1", Email: "a@x.com", Password: "secret1"}
	assert.False(t, validateRegisterInput(valid).HasErrors())

	cases := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"short username", RegisterInput{Username: "ab", Email: "a@x.com", Password: "secret1"}, "username"},
		{"bad username chars", RegisterInput{Username: "al ice!", Email: "a@x.com", Password: "secret1"}, "username"},
		{"bad email", RegisterInput{Username: "alice", Email: "not-an-email", Password: "secret1"}, "email"},
		{"short password", RegisterInput{Username: "alice", Email: "a@x.com", Password: "abc"}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verr := validateRegisterInput(tc.input)
			require.True(t, verr.HasErrors())
			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	userRepo := &mocks.UserRepository{}
	tokenRepo := &mocks.TokenRepository{}
	svc := newTestAuthService(userRepo, tokenRepo, testConfig())

	userID := uuid.New()
	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, models.ErrUserNotFound)
	userRepo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(nil, models.ErrUserNotFound)
	userRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			user := args.Get(1).(*models.User)
			user.ID = userID
		}).Return(nil)
	tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	user, token, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotEmpty(t, token)
	assert.Equal(t, userID, user.ID)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	claims, err := svc.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.NotEmpty(t, claims.ID, "token should carry a jti")
	userRepo.AssertExpectations(t)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	userRepo := &mocks.UserRepository{}
	tokenRepo := &mocks.TokenRepository{}
	svc := newTestAuthService(userRepo, tokenRepo, testConfig())

	existing := &models.User{ID: uuid.New(), Username: "alice"}
	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(existing, nil)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "other@x.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, models.ErrUserAlreadyExists)
	userRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	userRepo := &mocks.UserRepository{}
	tokenRepo := &mocks.TokenRepository{}
	svc := newTestAuthService(userRepo, tokenRepo, testConfig())

	userRepo.On("GetUserByUsername", mock.Anything, "bob").Return(nil, models.ErrUserNotFound)
	userRepo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(&models.User{ID: uuid.New()}, nil)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "bob", Email: "a@x.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, models.ErrEmailAlreadyExists)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	userRepo := &mocks.UserRepository{}
	tokenRepo := &mocks.TokenRepository{}
	svc := newTestAuthService(userRepo, tokenRepo, testConfig())

	hash, err := hashPassword("rightpassword", bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Username: "alice", Email: "a@x.com", PasswordHash: hash}

	userRepo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(user, nil)
	userRepo.On("GetUserByEmail", mock.Anything, "ghost@x.com").Return(nil, models.ErrUserNotFound)

	_, _, wrongPassErr := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "wrongpassword"})
	_, _, unknownUserErr := svc.Login(context.Background(), LoginInput{Email: "ghost@x.com", Password: "whatever"})

	assert.ErrorIs(t, wrongPassErr, models.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUserErr, models.ErrInvalidCredentials)
	assert.Equal(t, wrongPassErr, unknownUserErr, "failure modes must be indistinguishable")
}

func TestLoginByUsername(t *testing.T) {
	userRepo := &mocks.UserRepository{}
	tokenRepo := &mocks.TokenRepository{}
	svc := newTestAuthService(userRepo, tokenRepo, testConfig())

	hash, err := hashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Username: "alice", Email: "a@x.com", PasswordHash: hash}
	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil)
	tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	got, token, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	claims, err := svc.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestVerifyExpiredToken(t *testing.T) {
	userRepo := &mocks.UserRepository{}
	tokenRepo := &mocks.TokenRepository{}
	cfg := testConfig()
	cfg.TokenTTL = -time.Minute // issued already expired
	svc := newTestAuthService(userRepo, tokenRepo, cfg)

	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, models.ErrUserNotFound)
	userRepo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(nil, models.ErrUserNotFound)
	userRepo.On("CreateUser", mock.Anything, mock.Anything).Return(nil)

	_, token, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrTokenExpired)
	tokenRepo.AssertNotCalled(t, "IsRevoked", mock.Anything, mock.Anything)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	cfg := testConfig()
	otherCfg := testConfig()
	otherCfg.JWTSecret = "a-different-secret"

	userRepo := &mocks.UserRepository{}
	tokenRepo := &mocks.TokenRepository{}
	issuer := newTestAuthService(userRepo, tokenRepo, cfg)
	verifier := newTestAuthService(&mocks.UserRepository{}, tokenRepo, otherCfg)

	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, models.ErrUserNotFound)
	userRepo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(nil, models.ErrUserNotFound)
	userRepo.On("CreateUser", mock.Anything, mock.Anything).Return(nil)

	_, token, err := issuer.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := newTestAuthService(&mocks.UserRepository{}, &mocks.TokenRepository{}, testConfig())
	_, err := svc.VerifyAccessToken(context.Background(), "definitely.not.a-token")
	assert.ErrorIs(t, err, models.ErrTokenMalformed)
}

func TestVerifyRevokedToken(t *testing.T) {
	userRepo := &mocks.UserRepository{}
	tokenRepo := &mocks.TokenRepository{}
	svc := newTestAuthService(userRepo, tokenRepo, testConfig())

	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, models.ErrUserNotFound)
	userRepo.On("GetUserByEmail", mock.Anything, "a@x.com").Return(nil, models.ErrUserNotFound)
	userRepo.On("CreateUser", mock.Anything, mock.Anything).Return(nil)
	tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(true, nil)

	_, token, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrTokenRevoked)
}

func TestLogoutRevokesForRemainingLifetime(t *testing.T) {
	tokenRepo := &mocks.TokenRepository{}
	svc := newTestAuthService(&mocks.UserRepository{}, tokenRepo, testConfig())

	claims := &models.Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
		},
	}
	tokenRepo.On("Revoke", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 29*time.Minute && ttl <= 30*time.Minute
	})).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), claims))
	tokenRepo.AssertExpectations(t)
}
