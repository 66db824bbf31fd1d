package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/Dosada05/blackjack-arena/storage"
	"github.com/gosimple/slug"
)

const (
	standingsContentType  = "application/json"
	standingsCacheControl = "public, max-age=300"
)

type standingsDocument struct {
	Tournament models.Tournament        `json:"tournament"`
	Standings  []models.TournamentEntry `json:"standings"`
	ArchivedAt time.Time                `json:"archived_at"`
}

// BucketArchiver writes final standings as JSON documents into an object store.
type BucketArchiver struct {
	objects storage.ObjectStore
	now     func() time.Time
}

func NewBucketArchiver(objects storage.ObjectStore) *BucketArchiver {
	return &BucketArchiver{objects: objects, now: func() time.Time { return time.Now().UTC() }}
}

// StandingsKey is the object key of a tournament's archived standings.
func StandingsKey(t models.Tournament) string {
	name := slug.Make(t.Name)
	if name == "" {
		name = "tournament"
	}
	return fmt.Sprintf("standings/%s-%d.json", name, t.ID)
}

func (a *BucketArchiver) ArchiveStandings(ctx context.Context, t models.Tournament, standings []models.TournamentEntry) (string, error) {
	t.Entries = nil
	t.PlayerCount = len(standings)

	body, err := json.Marshal(standingsDocument{
		Tournament: t,
		Standings:  standings,
		ArchivedAt: a.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal standings: %w", err)
	}

	stored, err := a.objects.Put(ctx, storage.Object{
		Key:          StandingsKey(t),
		ContentType:  standingsContentType,
		CacheControl: standingsCacheControl,
		Body:         body,
	})
	if err != nil {
		return "", err
	}
	if stored.URL != "" {
		return stored.URL, nil
	}
	return stored.Key, nil
}

func (a *BucketArchiver) RemoveStandings(ctx context.Context, t models.Tournament) error {
	return a.objects.Remove(ctx, StandingsKey(t))
}
