package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	db "github.com/superfishal-intelligence/backend/internal/core/database"
	"github.com/superfishal-intelligence/backend/internal/models"
	"github.com/superfishal-intelligence/backend/internal/platform/apierr"
)

const DefaultTokenTTL = 24 * time.Hour

var errInvalidCredentials = apierr.New(http.StatusUnauthorized, "Invalid credentials", nil)

type UserService struct {
	db     db.Store
	secret []byte
	ttl    time.Duration
}

func NewUserService(store db.Store, jwtSecret string, ttl time.Duration) *UserService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &UserService{db: store, secret: []byte(jwtSecret), ttl: ttl}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, in *models.Credentials) (*models.User, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Username: strings.TrimSpace(in.Username), PasswordHash: string(hash)}
	if err := s.db.CreateUser(ctx, u); err != nil {
		return nil, storeErr(err, "", "Username already taken")
	}
	return u, nil
}

// Login checks the password and returns a signed bearer token.
func (s *UserService) Login(ctx context.Context, in *models.Credentials) (string, *models.User, error) {
	if err := models.Validate(in); err != nil {
		return "", nil, err
	}
	if len(s.secret) == 0 {
		return "", nil, apierr.Unavailable("Authentication is not configured")
	}
	u, err := s.db.GetUserByUsername(ctx, strings.TrimSpace(in.Username))
	if errors.Is(err, db.ErrNotFound) {
		return "", nil, errInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return "", nil, errInvalidCredentials
	}
	token, err := s.issueToken(u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	u, err := s.db.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User not found", "")
	}
	return u, nil
}

// issueToken signs an HS256 token carrying the user id.
func (s *UserService) issueToken(userID int) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
