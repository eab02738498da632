package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
)

const (
	DefaultTokenTTL   = 12 * time.Hour
	minPasswordLength = 6
	issuer            = "fyp"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailRequired      = errors.New("valid email is required")
	ErrNameRequired       = errors.New("name is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	errSecretRequired     = errors.New("jwt secret is required")
)

// Identity is the authenticated caller.
type Identity struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type Service struct {
	users  ports.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(users ports.UserRepository, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (Identity, error) {
	if ctx == nil {
		return Identity{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Identity{}, errs.Wrap(err, "check context")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Identity{}, ErrNameRequired
	}
	email, err := parseEmail(input.Email)
	if err != nil {
		return Identity{}, err
	}
	if len(input.Password) < minPasswordLength {
		return Identity{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, errs.Wrap(err, "hash password")
	}
	user, err := s.users.CreateUser(ctx, ports.UserCreate{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return Identity{}, errs.Wrap(err, "create user")
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "usecase.auth")),
		"user registered",
		slog.Uint64("user_id", user.ID),
	)
	return identityOf(user), nil
}

// Login verifies credentials and issues a signed access token.
func (s *Service) Login(ctx context.Context, email string, password string) (string, Identity, error) {
	if ctx == nil {
		return "", Identity{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", Identity{}, errs.Wrap(err, "check context")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return "", Identity{}, ErrInvalidCredentials
		}
		return "", Identity{}, errs.Wrap(err, "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", Identity{}, ErrInvalidCredentials
	}

	identity := identityOf(user)
	token, err := s.Issue(identity)
	if err != nil {
		return "", Identity{}, err
	}
	return token, identity, nil
}

func (s *Service) Issue(identity Identity) (string, error) {
	if len(s.secret) == 0 {
		return "", errSecretRequired
	}

	now := s.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(identity.ID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errs.Wrap(err, "sign token")
	}
	return signed, nil
}

// Authenticate validates a bearer token and returns the identity it carries.
func (s *Service) Authenticate(_ context.Context, token string) (Identity, error) {
	if len(s.secret) == 0 {
		return Identity{}, errSecretRequired
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	var parsed claims
	_, err := parser.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, errs.Wrapf(ErrInvalidToken, "%v", err)
	}
	if !parsed.VerifyExpiresAt(s.now(), true) {
		return Identity{}, ErrInvalidToken
	}

	id, err := strconv.ParseUint(parsed.Subject, 10, 64)
	if err != nil || id == 0 {
		return Identity{}, ErrInvalidToken
	}
	if strings.TrimSpace(parsed.Email) == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: id, Name: parsed.Name, Email: parsed.Email}, nil
}

func identityOf(user ports.User) Identity {
	return Identity{ID: user.ID, Name: user.Name, Email: user.Email}
}

func parseEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrEmailRequired
	}
	return email, nil
}
