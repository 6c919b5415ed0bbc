package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"luvsick-store/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService() (UserService, *mockStore) {
	store := newMockStore()
	svc := NewUserService(store.Users(), "test-secret", time.Hour)
	return svc, store
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, _ := newTestUserService()

	user, err := svc.Register(context.Background(), "admin@example.com", "s3cret-pass", "Store Admin")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.PasswordHash == "s3cret-pass" {
		t.Fatal("password must not be stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("expected role admin, got %s", user.Role)
	}
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	svc, _ := newTestUserService()

	if _, err := svc.Register(context.Background(), "admin@example.com", "pass-one", "First"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), "admin@example.com", "pass-two", "Second")
	if !errors.Is(err, repository.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestLogin_ReturnsValidToken(t *testing.T) {
	svc, _ := newTestUserService()

	registered, err := svc.Register(context.Background(), "admin@example.com", "s3cret-pass", "Store Admin")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "admin@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("expected user %s, got %s", registered.ID, user.ID)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Errorf("expected claim user id %s, got %s", registered.ID, claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("expected claim role admin, got %s", claims.Role)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestUserService()

	if _, err := svc.Register(context.Background(), "admin@example.com", "s3cret-pass", "Store Admin"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, _, err := svc.Login(context.Background(), "admin@example.com", "wrong-pass")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newTestUserService()

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestValidateToken_RejectsTampering(t *testing.T) {
	svc, _ := newTestUserService()

	if _, err := svc.Register(context.Background(), "admin@example.com", "s3cret-pass", "Store Admin"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token, _, err := svc.Login(context.Background(), "admin@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Fatal("expected a tampered token to be rejected")
	}

	other := NewUserService(newMockStore().Users(), "other-secret", time.Hour)
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected a token signed with a different secret to be rejected")
	}
}

func TestProperty_RegisteredUsersCanLogIn(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any registered password authenticates", prop.ForAll(
		func(password string) bool {
			svc, _ := newTestUserService()

			if _, err := svc.Register(context.Background(), "admin@example.com", password, "Store Admin"); err != nil {
				return false
			}

			_, _, err := svc.Login(context.Background(), "admin@example.com", password)
			return err == nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) >= 8 && len(s) <= 64 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
