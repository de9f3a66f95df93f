package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/foosleague/ladder-system/models"
	"github.com/foosleague/ladder-system/repositories"
	"github.com/foosleague/ladder-system/storage"
)

var ErrUnsupportedImageType = errors.New("avatar must be a jpeg, png or webp image")

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type PlayerService interface {
	List(ctx context.Context) ([]*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	UploadAvatar(ctx context.Context, playerID int, contentType string, body io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader, logger *slog.Logger) PlayerService {
	return &playerService{playerRepo: playerRepo, uploader: uploader, logger: logger}
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		s.fillAvatarURL(p)
	}
	return players, nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	s.fillAvatarURL(player)
	return player, nil
}

// UploadAvatar stores the image under a fresh object key and records it
// on the player. The previous object, if any, is removed best-effort.
func (s *playerService) UploadAvatar(ctx context.Context, playerID int, contentType string, body io.Reader) (*models.Player, error) {
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedImageType
	}

	player, err := s.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%d/%d%s", playerID, time.Now().UnixNano(), ext)
	if err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	if err := s.playerRepo.UpdateAvatarKey(ctx, playerID, &key); err != nil {
		return nil, err
	}

	if player.AvatarKey != nil {
		if err := s.uploader.Delete(ctx, *player.AvatarKey); err != nil {
			s.logger.Warn("failed to delete replaced avatar",
				"player_id", playerID,
				"key", *player.AvatarKey,
				"error", err)
		}
	}

	player.AvatarKey = &key
	s.fillAvatarURL(player)
	return player, nil
}

func (s *playerService) fillAvatarURL(player *models.Player) {
	if player.AvatarKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.PublicURL(*player.AvatarKey)
	player.AvatarURL = &url
}
