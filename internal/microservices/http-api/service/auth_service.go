package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"elibrary/internal/config"
	"elibrary/internal/middleware/auth"
	"elibrary/internal/microservices/http-api/models"
	"elibrary/internal/microservices/http-api/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "elibrary"

// Claims is the payload of a session token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (user *models.User, token string, err error)
	Login(ctx context.Context, email, password string) (user *models.User, token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	// Authenticate validates the token and checks the user still exists.
	Authenticate(ctx context.Context, tokenString string) (*Claims, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
	TokenTTL() time.Duration
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	ttl := cfg.JWTExpiry
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  ttl,
	}
}

func (s *authService) TokenTTL() time.Duration { return s.tokenTTL }

// Register creates an account and signs the caller in.
func (s *authService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if problems := credentialProblems(username, password); len(problems) > 0 {
		return nil, "", validationError(problems)
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, "", ErrNameInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hashedPassword, err := auth.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, "", validationError([]string{passwordTooLong})
	}
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			if _, findErr := s.userRepo.FindByUsername(ctx, username); findErr == nil {
				return nil, "", ErrNameInUse
			}
			return nil, "", ErrEmailInUse
		}
		return nil, "", err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

const (
	minUsernameLen   = 3
	maxUsernameLen   = 50
	maxPasswordBytes = 72 // bcrypt input limit
	passwordTooLong  = "password must be at most 72 bytes"
)

// credentialProblems checks what binding cannot: the trimmed username and the
// password's byte length.
func credentialProblems(username, password string) []string {
	var problems []string
	switch n := utf8.RuneCountInString(username); {
	case n < minUsernameLen:
		problems = append(problems, fmt.Sprintf("username must be at least %d characters", minUsernameLen))
	case n > maxUsernameLen:
		problems = append(problems, fmt.Sprintf("username must be at most %d characters", maxUsernameLen))
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, passwordTooLong)
	}
	return problems
}

// Login checks the email/password pair and issues a fresh token.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, "", err
		}
		// Unknown email still pays for a bcrypt compare so timing does not leak it
		auth.VerifyPassword(dummyHash(), password)
		return nil, "", ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return claims, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	dummyHashOnce sync.Once
	dummyHashVal  string
)

func dummyHash() string {
	dummyHashOnce.Do(func() {
		h, err := auth.HashPassword("elibrary-timing-equalizer")
		if err == nil {
			dummyHashVal = h
		}
	})
	return dummyHashVal
}
