package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/Dosada05/blackjack-arena/storage"
)

type memoryObjects struct {
	objects map[string]storage.Object
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: make(map[string]storage.Object)}
}

func (m *memoryObjects) Put(_ context.Context, obj storage.Object) (*storage.StoredObject, error) {
	m.objects[obj.Key] = obj
	return &storage.StoredObject{Key: obj.Key, URL: m.URL(obj.Key)}, nil
}

func (m *memoryObjects) Remove(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryObjects) URL(key string) string {
	return "https://cdn.example.test/" + key
}

func TestStandingsKey(t *testing.T) {
	cases := []struct {
		name string
		id   int64
		want string
	}{
		{"Friday Night Felt", 7, "standings/friday-night-felt-7.json"},
		{"  Aces & Eights!  ", 12, "standings/aces-and-eights-12.json"},
		{"!!!", 3, "standings/tournament-3.json"},
	}
	for _, c := range cases {
		if got := StandingsKey(models.Tournament{ID: c.id, Name: c.name}); got != c.want {
			t.Errorf("StandingsKey(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestBucketArchiverRoundTrip(t *testing.T) {
	objects := newMemoryObjects()
	archiver := NewBucketArchiver(objects)
	ctx := context.Background()

	tournament := models.Tournament{ID: 4, Name: "Final Table", StartingBalance: 1000, Status: models.StatusCompleted}
	rank := 1
	standings := []models.TournamentEntry{{ID: 1, PlayerID: "A", Rank: &rank, IsSubmitted: true, FinalBalance: intPtr(1500), Profit: 500}}

	location, err := archiver.ArchiveStandings(ctx, tournament, standings)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	key := "standings/final-table-4.json"
	if location != "https://cdn.example.test/"+key {
		t.Fatalf("unexpected location %q", location)
	}
	stored := objects.objects[key]
	if stored.ContentType != "application/json" || stored.CacheControl == "" {
		t.Fatalf("unexpected object metadata: %q %q", stored.ContentType, stored.CacheControl)
	}

	var doc struct {
		Tournament models.Tournament        `json:"tournament"`
		Standings  []models.TournamentEntry `json:"standings"`
	}
	if err := json.Unmarshal(stored.Body, &doc); err != nil {
		t.Fatalf("decode archived document: %v", err)
	}
	if doc.Tournament.ID != 4 || doc.Tournament.PlayerCount != 1 || len(doc.Standings) != 1 || doc.Standings[0].PlayerID != "A" {
		t.Fatalf("unexpected archived document: %+v", doc)
	}

	if err := archiver.RemoveStandings(ctx, tournament); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := objects.objects[key]; ok {
		t.Fatal("expected the object to be deleted")
	}
}
