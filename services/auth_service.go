package services

import (
	"context"
	"errors"
	"strings"

	"github.com/foosleague/ladder-system/models"
	"github.com/foosleague/ladder-system/repositories"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

type AuthService interface {
	Register(ctx context.Context, input *RegisterInput) (*models.Player, error)
	Login(ctx context.Context, email, password string) (*models.Player, error)
}

type authService struct {
	playerRepo repositories.PlayerRepository
}

func NewAuthService(playerRepo repositories.PlayerRepository) AuthService {
	return &authService{playerRepo: playerRepo}
}

func (s *authService) Register(ctx context.Context, input *RegisterInput) (*models.Player, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(input.Username) == "" {
		return nil, ErrEmptyName
	}
	if len(input.Password) < 8 {
		return nil, ErrPasswordTooWeak
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	player := &models.Player{
		Username:     strings.TrimSpace(input.Username),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerEmailConflict):
			return nil, ErrEmailTaken
		case errors.Is(err, repositories.ErrPlayerUsernameConflict):
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return player, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.Player, error) {
	player, err := s.playerRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return player, nil
}
