package services

import (
	"context"
	"errors"
	"testing"

	"github.com/foosleague/ladder-system/models"
)

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	players := newFakePlayerRepo()
	service := NewAuthService(players)

	player, err := service.Register(context.Background(), &RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if player.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", player.Email)
	}
	if player.Rating != models.DefaultRating {
		t.Errorf("rating = %d, want %d", player.Rating, models.DefaultRating)
	}
	if player.PasswordHash == "correct-horse" {
		t.Error("password stored in the clear")
	}

	if _, err := service.Login(context.Background(), "alice@example.com", "correct-horse"); err != nil {
		t.Errorf("Login with right password: %v", err)
	}
	if _, err := service.Login(context.Background(), "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login with wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := service.Login(context.Background(), "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login for unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	players := newFakePlayerRepo()
	service := NewAuthService(players)

	tests := []struct {
		name    string
		input   *RegisterInput
		wantErr error
	}{
		{"missing at sign", &RegisterInput{Username: "a", Email: "nope", Password: "longenough"}, ErrInvalidEmail},
		{"blank username", &RegisterInput{Username: "  ", Email: "a@b.c", Password: "longenough"}, ErrEmptyName},
		{"short password", &RegisterInput{Username: "a", Email: "a@b.c", Password: "short"}, ErrPasswordTooWeak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.Register(context.Background(), tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthServiceRegisterConflicts(t *testing.T) {
	players := newFakePlayerRepo()
	service := NewAuthService(players)

	if _, err := service.Register(context.Background(), &RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := service.Register(context.Background(), &RegisterInput{
		Username: "alice2", Email: "alice@example.com", Password: "correct-horse",
	}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
	}
	if _, err := service.Register(context.Background(), &RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "correct-horse",
	}); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username error = %v, want ErrUsernameTaken", err)
	}
}
