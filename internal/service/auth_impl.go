package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"mylibrary-server/internal/config"
	"mylibrary-server/internal/interfaces"
	"mylibrary-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type authServiceImpl struct {
	userRepo  interfaces.UserRepository
	tokenRepo interfaces.TokenRepository
	cfg       *config.Config
	logger    *zap.Logger
}

// NewAuthService creates a new instance of authServiceImpl.
func NewAuthService(userRepo interfaces.UserRepository, tokenRepo interfaces.TokenRepository, cfg *config.Config, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
		logger:    logger.Named("AuthService"),
	}
}

// Register creates a new user and issues their first token.
func (s *authServiceImpl) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = strings.TrimSpace(input.Username)

	logFields := []zap.Field{zap.String("username", input.Username), zap.String("email", input.Email)}
	s.logger.Info("Registering new user", logFields...)

	if verr := validateRegisterInput(input); verr.HasErrors() {
		s.logger.Warn("Registration input failed validation", append(logFields, zap.Error(verr))...)
		return nil, "", verr
	}

	// Existence checks before insertion give a precise message; the unique
	// constraints remain the backstop against races.
	existingUser, err := s.userRepo.GetUserByUsername(ctx, input.Username)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		s.logger.Error("Error checking existing username during registration", append(logFields, zap.Error(err))...)
		return nil, "", fmt.Errorf("error checking existing username: %w", err)
	}
	if existingUser != nil {
		s.logger.Warn("Registration attempt for existing username", logFields...)
		return nil, "", models.ErrUserAlreadyExists
	}

	existingUser, err = s.userRepo.GetUserByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		s.logger.Error("Error checking existing email during registration", append(logFields, zap.Error(err))...)
		return nil, "", fmt.Errorf("error checking existing email: %w", err)
	}
	if existingUser != nil {
		s.logger.Warn("Registration attempt for existing email", logFields...)
		return nil, "", models.ErrEmailAlreadyExists
	}

	hashedPassword, err := hashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", append(logFields, zap.Error(err))...)
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, models.ErrUserAlreadyExists) && !errors.Is(err, models.ErrEmailAlreadyExists) {
			s.logger.Error("Failed to create user via repository", append(logFields, zap.Error(err))...)
		}
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("Failed to issue token after registration", append(logFields, zap.Error(err))...)
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User registered successfully", zap.String("userID", user.ID.String()), zap.String("username", user.Username))
	return user, token, nil
}

// Login authenticates by email or username and issues a token. All failure
// modes collapse into ErrInvalidCredentials so callers cannot probe which
// part was wrong.
func (s *authServiceImpl) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	identifier := input.Email
	lookup := s.userRepo.GetUserByEmail
	if identifier == "" {
		identifier = input.Username
		lookup = s.userRepo.GetUserByUsername
	}
	s.logger.Info("Login attempt", zap.String("identifier", identifier))

	if identifier == "" || input.Password == "" {
		return nil, "", models.ErrInvalidCredentials
	}

	user, err := lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("identifier", identifier))
			return nil, "", models.ErrInvalidCredentials
		}
		s.logger.Error("Login failed: error getting user from repository", zap.Error(err), zap.String("identifier", identifier))
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !checkPasswordHash(input.Password, user.PasswordHash) {
		s.logger.Warn("Login failed: invalid password", zap.String("identifier", identifier), zap.String("userID", user.ID.String()))
		return nil, "", models.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("Failed to issue token during login", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return user, token, nil
}

// VerifyAccessToken parses and validates a token and checks the denylist.
func (s *authServiceImpl) VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			s.logger.Warn("Token verification failed: expired")
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			s.logger.Warn("Token verification failed: malformed")
			return nil, models.ErrTokenMalformed
		default:
			s.logger.Warn("Token verification failed", zap.Error(err))
			return nil, models.ErrTokenInvalid
		}
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, models.ErrTokenInvalid
	}

	if claims.ID != "" {
		revoked, err := s.tokenRepo.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Error("Failed to check token revocation", zap.Error(err), zap.String("jti", claims.ID))
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			s.logger.Warn("Token verification failed: revoked", zap.String("jti", claims.ID))
			return nil, models.ErrTokenRevoked
		}
	}

	return claims, nil
}

// Logout puts the token on the denylist until it would have expired anyway.
func (s *authServiceImpl) Logout(ctx context.Context, claims *models.Claims) error {
	log := s.logger.With(zap.String("userID", claims.UserID.String()), zap.String("jti", claims.ID))
	if claims.ID == "" || claims.ExpiresAt == nil {
		log.Warn("Logout with token missing jti or expiry; nothing to revoke")
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.tokenRepo.Revoke(ctx, claims.ID, ttl); err != nil {
		log.Error("Failed to revoke token during logout", zap.Error(err))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	log.Info("Token revoked")
	return nil
}

// issueToken signs a token embedding the user's identity, expiring after the
// configured TTL.
func (s *authServiceImpl) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func validateRegisterInput(input RegisterInput) *models.ValidationError {
	verr := &models.ValidationError{}
	if len(input.Username) < minUsernameLength || len(input.Username) > maxUsernameLength {
		verr.Add("username", fmt.Sprintf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength))
	} else if !usernameRegex.MatchString(input.Username) {
		verr.Add("username", "username can only contain letters, numbers and underscores")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		verr.Add("email", "a valid email address is required")
	}
	if len(input.Password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return verr
}

func hashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
