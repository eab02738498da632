package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mkevin1491/fyp/internal/ports"
)

type memoryUsers struct {
	mu    sync.Mutex
	users []ports.User
}

func (m *memoryUsers) CreateUser(_ context.Context, user ports.UserCreate) (ports.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return ports.User{}, ports.ErrEmailTaken
		}
	}
	created := ports.User{
		ID:           uint64(len(m.users) + 1),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now(),
	}
	m.users = append(m.users, created)
	return created, nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (ports.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == strings.ToLower(strings.TrimSpace(email)) {
			return user, nil
		}
	}
	return ports.User{}, ports.ErrUserNotFound
}

func (m *memoryUsers) GetUser(_ context.Context, id uint64) (ports.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return ports.User{}, ports.ErrUserNotFound
}

func TestRegisterLoginAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(&memoryUsers{}, "test-secret", time.Hour)

	registered, err := svc.Register(ctx, RegisterInput{Name: "Aina", Email: " Aina@Example.com ", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if registered.Email != "aina@example.com" {
		t.Fatalf("registered email = %q, want aina@example.com", registered.Email)
	}

	token, identity, err := svc.Login(ctx, "aina@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if identity != registered {
		t.Fatalf("login identity = %+v, want %+v", identity, registered)
	}

	got, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got != registered {
		t.Fatalf("Authenticate() = %+v, want %+v", got, registered)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc := NewService(&memoryUsers{}, "test-secret", 0)
	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{name: "missing name", input: RegisterInput{Email: "a@b.com", Password: "secret123"}, want: ErrNameRequired},
		{name: "bad email", input: RegisterInput{Name: "A", Email: "not-an-email", Password: "secret123"}, want: ErrEmailRequired},
		{name: "short password", input: RegisterInput{Name: "A", Email: "a@b.com", Password: "123"}, want: ErrPasswordTooShort},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc.input)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: Register() error = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := NewService(&memoryUsers{}, "test-secret", time.Hour)
	input := RegisterInput{Name: "A", Email: "a@b.com", Password: "secret123"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, ports.ErrEmailTaken) {
		t.Fatalf("second Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(&memoryUsers{}, "test-secret", time.Hour)
	if _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.com", Password: "secret123"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, _, err := svc.Login(ctx, "a@b.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@b.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login(unknown user) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateRejectsInvalidTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	identity := Identity{ID: 1, Name: "A", Email: "a@b.com"}

	expired := NewService(&memoryUsers{}, "test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	oldToken, err := expired.Issue(identity)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other := NewService(&memoryUsers{}, "other-secret", time.Hour)
	foreignToken, err := other.Issue(identity)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	svc := NewService(&memoryUsers{}, "test-secret", time.Hour)
	for name, token := range map[string]string{
		"empty":   "",
		"garbage": "not.a.token",
		"expired": oldToken,
		"foreign": foreignToken,
	} {
		if _, err := svc.Authenticate(ctx, token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: Authenticate() error = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestIssueRequiresSecret(t *testing.T) {
	t.Parallel()

	svc := NewService(&memoryUsers{}, "", time.Hour)
	if _, err := svc.Issue(Identity{ID: 1, Email: "a@b.com"}); err == nil {
		t.Fatal("Issue() error = nil, want non-nil")
	}
}
