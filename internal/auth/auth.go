// internal/auth/auth.go
//
// Account rules, password hashing and JWT issue/verify.
// Exposes:
//   - Service.Signup / Service.Login over a UserStore (scores.Store in production).
//   - Service.Authenticate: token -> Identity, re-checking that the user still exists.
//   - Tokens: HS256 JWTs carrying "id" and "username" claims.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/hangman/internal/scores"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")

	ErrUsernameLength = errors.New("username must be 3-24 chars")
	ErrUsernameChars  = errors.New("username: letters, numbers, underscore only")
	ErrPasswordLength = errors.New("password must be 8-100 chars")
)

// UserStore is the slice of the score store that accounts need.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*scores.User, error)
	UserByUsername(ctx context.Context, username string) (*scores.User, error)
	UserByID(ctx context.Context, id string) (*scores.User, error)
}

// Identity is the signed-in user attached to a request.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// NormalizeUsername trims whitespace.
func NormalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

// ValidateSignup enforces basic username/password rules.
func ValidateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return ErrUsernameLength
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ErrUsernameChars
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return ErrPasswordLength
	}
	return nil
}

// IsValidationError reports whether err came from ValidateSignup.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUsernameLength) || errors.Is(err, ErrUsernameChars) || errors.Is(err, ErrPasswordLength)
}

// ------------------------------- tokens ------------------------------------

// Tokens signs and verifies session JWTs.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

// NewTokens builds a token signer valid for days days.
func NewTokens(secret string, days int) Tokens {
	if days <= 0 {
		days = 14
	}
	return Tokens{Secret: []byte(secret), TTL: time.Duration(days) * 24 * time.Hour, now: time.Now}
}

func (t Tokens) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}
	return t.now()
}

// Sign creates an HS256 JWT for the user and returns it with its expiry.
func (t Tokens) Sign(id, username string) (string, time.Time, error) {
	now := t.clock()
	exp := now.Add(t.TTL)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := tok.SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return ss, exp, nil
}

// Parse verifies signature and expiry and returns the embedded identity.
func (t Tokens) Parse(tokenStr string) (*Identity, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (interface{}, error) { return t.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{ID: id, Username: username}, nil
}

// ------------------------------- service -----------------------------------

// Service implements signup, login and token authentication.
type Service struct {
	users  UserStore
	tokens Tokens
	cost   int
}

// NewService wires a Service with bcrypt's default cost.
func NewService(users UserStore, tokens Tokens) *Service {
	return &Service{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Tokens returns the signer used by the service.
func (s *Service) Tokens() Tokens { return s.tokens }

// Signup validates input, hashes the password and creates the user.
// A taken username surfaces as scores.ErrUsernameTaken.
func (s *Service) Signup(ctx context.Context, username, password string) (*scores.User, error) {
	username = NormalizeUsername(username)
	if err := ValidateSignup(username, password); err != nil {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.CreateUser(ctx, username, string(h))
}

// Login checks credentials. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*scores.User, error) {
	u, err := s.users.UserByUsername(ctx, NormalizeUsername(username))
	if errors.Is(err, scores.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Authenticate parses a token and makes sure its user still exists.
func (s *Service) Authenticate(ctx context.Context, tokenStr string) (*Identity, error) {
	id, err := s.tokens.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.UserByID(ctx, id.ID); err != nil {
		return nil, ErrInvalidToken
	}
	return id, nil
}
