package services

import (
	"context"
	"strings"
	"time"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/Dosada05/blackjack-arena/repositories"
)

// PlayerService keeps the local player directory in step with the identity provider.
type PlayerService struct {
	store repositories.Store
	now   func() time.Time
}

func NewPlayerService(store repositories.Store) *PlayerService {
	return &PlayerService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Touch records the player's latest display name.
func (s *PlayerService) Touch(ctx context.Context, playerID, displayName string) error {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = playerID
	}
	return s.store.Players().Upsert(ctx, models.Player{
		ID:          playerID,
		DisplayName: name,
		LastSeenAt:  s.now(),
	})
}
