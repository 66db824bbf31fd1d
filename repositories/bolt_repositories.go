package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/blackjack-arena/models"
	"go.etcd.io/bbolt"
)

type boltTournamentRepository struct {
	store *BoltStore
}

func (r *boltTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	return r.store.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(tournamentsBucket))
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("create tournament: %w", err)
		}
		t.ID = int64(seq)

		stored := *t
		stored.PlayerCount = 0
		stored.Entries = nil
		return putJSON(b, itob(t.ID), stored)
	})
}

func getTournament(tx *bbolt.Tx, id int64) (*models.Tournament, error) {
	var t models.Tournament
	found, err := getJSON(tx.Bucket([]byte(tournamentsBucket)), itob(id), &t)
	if err != nil {
		return nil, fmt.Errorf("get tournament: %w", err)
	}
	if !found {
		return nil, ErrTournamentNotFound
	}
	return &t, nil
}

func (r *boltTournamentRepository) GetByID(ctx context.Context, id int64) (*models.Tournament, error) {
	var t *models.Tournament
	err := r.store.view(ctx, func(tx *bbolt.Tx) error {
		var err error
		t, err = getTournament(tx, id)
		return err
	})
	return t, err
}

// GetForUpdate needs no extra locking here: inside Atomic the bbolt write
// transaction already excludes every other writer.
func (r *boltTournamentRepository) GetForUpdate(ctx context.Context, id int64) (*models.Tournament, error) {
	return r.GetByID(ctx, id)
}

func (r *boltTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments := make([]models.Tournament, 0)
	err := r.store.view(ctx, func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(tournamentsBucket)).ForEach(func(_, v []byte) error {
			var t models.Tournament
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("failed to unmarshal tournament: %w", err)
			}
			if filter.Status != nil && t.Status != *filter.Status {
				return nil
			}
			if filter.CreatorID != nil && t.CreatorID != *filter.CreatorID {
				return nil
			}
			if filter.StartsBefore != nil && t.StartTime.After(*filter.StartsBefore) {
				return nil
			}
			tournaments = append(tournaments, t)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}

	sort.Slice(tournaments, func(i, j int) bool {
		if !tournaments[i].CreatedAt.Equal(tournaments[j].CreatedAt) {
			return tournaments[i].CreatedAt.After(tournaments[j].CreatedAt)
		}
		return tournaments[i].ID > tournaments[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(tournaments) {
			return tournaments[:0], nil
		}
		tournaments = tournaments[filter.Offset:]
	}
	if filter.Limit > 0 && len(tournaments) > filter.Limit {
		tournaments = tournaments[:filter.Limit]
	}
	return tournaments, nil
}

func (r *boltTournamentRepository) UpdateStatus(ctx context.Context, id int64, status models.TournamentStatus) error {
	return r.store.update(ctx, func(tx *bbolt.Tx) error {
		t, err := getTournament(tx, id)
		if err != nil {
			return err
		}
		t.Status = status
		return putJSON(tx.Bucket([]byte(tournamentsBucket)), itob(id), t)
	})
}

// Delete removes the tournament with its entries and detaches its sessions.
func (r *boltTournamentRepository) Delete(ctx context.Context, id int64) error {
	return r.store.update(ctx, func(tx *bbolt.Tx) error {
		tb := tx.Bucket([]byte(tournamentsBucket))
		if tb.Get(itob(id)) == nil {
			return ErrTournamentNotFound
		}
		if err := tb.Delete(itob(id)); err != nil {
			return fmt.Errorf("delete tournament: %w", err)
		}

		for _, name := range []string{entriesBucket, entryPlayersBucket} {
			b := tx.Bucket([]byte(name))
			var keys [][]byte
			err := forEachPrefix(b, itob(id), func(k, _ []byte) error {
				keys = append(keys, append([]byte(nil), k...))
				return nil
			})
			if err != nil {
				return err
			}
			for _, k := range keys {
				if err := b.Delete(k); err != nil {
					return fmt.Errorf("delete %s: %w", name, err)
				}
			}
		}

		sb := tx.Bucket([]byte(sessionsBucket))
		detached := make(map[string]models.GameSession)
		err := sb.ForEach(func(k, v []byte) error {
			var s models.GameSession
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("failed to unmarshal session: %w", err)
			}
			if s.TournamentID != nil && *s.TournamentID == id {
				s.TournamentID = nil
				s.EntryID = nil
				detached[string(k)] = s
			}
			return nil
		})
		if err != nil {
			return err
		}
		for k, s := range detached {
			if err := putJSON(sb, []byte(k), s); err != nil {
				return err
			}
		}
		return nil
	})
}

type boltEntryRepository struct {
	store *BoltStore
}

func storedEntry(e *models.TournamentEntry) models.TournamentEntry {
	stored := *e
	stored.DisplayName = ""
	stored.Profit = 0
	return stored
}

func (r *boltEntryRepository) Create(ctx context.Context, e *models.TournamentEntry) error {
	return r.store.update(ctx, func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(tournamentsBucket)).Get(itob(e.TournamentID)) == nil {
			return ErrEntryTournamentInvalid
		}
		pb := tx.Bucket([]byte(entryPlayersBucket))
		playerKey := compositeKey(e.TournamentID, []byte(e.PlayerID))
		if pb.Get(playerKey) != nil {
			return ErrEntryConflict
		}

		eb := tx.Bucket([]byte(entriesBucket))
		seq, err := eb.NextSequence()
		if err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		e.ID = int64(seq)

		if err := putJSON(eb, compositeKey(e.TournamentID, itob(e.ID)), storedEntry(e)); err != nil {
			return err
		}
		return pb.Put(playerKey, itob(e.ID))
	})
}

func (r *boltEntryRepository) GetByTournamentAndPlayer(ctx context.Context, tournamentID int64, playerID string) (*models.TournamentEntry, error) {
	var e models.TournamentEntry
	err := r.store.view(ctx, func(tx *bbolt.Tx) error {
		id := tx.Bucket([]byte(entryPlayersBucket)).Get(compositeKey(tournamentID, []byte(playerID)))
		if id == nil {
			return ErrEntryNotFound
		}
		found, err := getJSON(tx.Bucket([]byte(entriesBucket)), compositeKey(tournamentID, id), &e)
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		if !found {
			return ErrEntryNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *boltEntryRepository) CountByTournament(ctx context.Context, tournamentID int64) (int, error) {
	n := 0
	err := r.store.view(ctx, func(tx *bbolt.Tx) error {
		return forEachPrefix(tx.Bucket([]byte(entriesBucket)), itob(tournamentID), func(_, _ []byte) error {
			n++
			return nil
		})
	})
	return n, err
}

func listEntries(tx *bbolt.Tx, tournamentID int64, submittedOnly bool) ([]models.TournamentEntry, error) {
	entries := make([]models.TournamentEntry, 0)
	err := forEachPrefix(tx.Bucket([]byte(entriesBucket)), itob(tournamentID), func(_, v []byte) error {
		var e models.TournamentEntry
		if err := json.Unmarshal(v, &e); err != nil {
			return fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		if submittedOnly && !e.IsSubmitted {
			return nil
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].JoinedAt.Equal(entries[j].JoinedAt) {
			return entries[i].JoinedAt.Before(entries[j].JoinedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (r *boltEntryRepository) ListByTournament(ctx context.Context, tournamentID int64, submittedOnly bool) ([]models.TournamentEntry, error) {
	var entries []models.TournamentEntry
	err := r.store.view(ctx, func(tx *bbolt.Tx) error {
		var err error
		entries, err = listEntries(tx, tournamentID, submittedOnly)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (r *boltEntryRepository) MarkSubmitted(ctx context.Context, tournamentID, entryID int64, finalBalance, handsPlayed int, at time.Time) error {
	return r.store.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(entriesBucket))
		key := compositeKey(tournamentID, itob(entryID))
		var e models.TournamentEntry
		found, err := getJSON(b, key, &e)
		if err != nil {
			return fmt.Errorf("mark entry submitted: %w", err)
		}
		if !found || e.IsSubmitted {
			return ErrEntryAlreadySubmitted
		}
		e.FinalBalance = &finalBalance
		e.HandsPlayed = &handsPlayed
		e.IsSubmitted = true
		e.SubmittedAt = &at
		return putJSON(b, key, e)
	})
}

func (r *boltEntryRepository) UpdateRanks(ctx context.Context, tournamentID int64, ranks map[int64]int) error {
	if len(ranks) == 0 {
		return nil
	}
	return r.store.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(entriesBucket))
		for id, rank := range ranks {
			key := compositeKey(tournamentID, itob(id))
			var e models.TournamentEntry
			found, err := getJSON(b, key, &e)
			if err != nil {
				return fmt.Errorf("update ranks: %w", err)
			}
			if !found || !e.IsSubmitted {
				return fmt.Errorf("update ranks: entry %d: %w", id, ErrEntryNotFound)
			}
			rank := rank
			e.Rank = &rank
			if err := putJSON(b, key, e); err != nil {
				return err
			}
		}
		return nil
	})
}

type boltSessionRepository struct {
	store *BoltStore
}

func getSession(tx *bbolt.Tx, id int64) (*models.GameSession, error) {
	var s models.GameSession
	found, err := getJSON(tx.Bucket([]byte(sessionsBucket)), itob(id), &s)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func putSession(tx *bbolt.Tx, s *models.GameSession) error {
	stored := *s
	stored.Hands = nil
	return putJSON(tx.Bucket([]byte(sessionsBucket)), itob(s.ID), stored)
}

func (r *boltSessionRepository) Create(ctx context.Context, s *models.GameSession) error {
	return r.store.update(ctx, func(tx *bbolt.Tx) error {
		if s.TournamentID != nil && tx.Bucket([]byte(tournamentsBucket)).Get(itob(*s.TournamentID)) == nil {
			return ErrEntryTournamentInvalid
		}
		seq, err := tx.Bucket([]byte(sessionsBucket)).NextSequence()
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		s.ID = int64(seq)
		return putSession(tx, s)
	})
}

func (r *boltSessionRepository) GetByID(ctx context.Context, id int64) (*models.GameSession, error) {
	var s *models.GameSession
	err := r.store.view(ctx, func(tx *bbolt.Tx) error {
		var err error
		s, err = getSession(tx, id)
		return err
	})
	return s, err
}

func (r *boltSessionRepository) GetForUpdate(ctx context.Context, id int64) (*models.GameSession, error) {
	return r.GetByID(ctx, id)
}

func (r *boltSessionRepository) Complete(ctx context.Context, id int64, finalBalance int, endedAt time.Time) error {
	return r.store.update(ctx, func(tx *bbolt.Tx) error {
		s, err := getSession(tx, id)
		if err != nil {
			return err
		}
		if s.IsComplete {
			return ErrSessionAlreadyComplete
		}
		s.FinalBalance = &finalBalance
		s.EndedAt = &endedAt
		s.IsComplete = true
		return putSession(tx, s)
	})
}

func (r *boltSessionRepository) AddHand(ctx context.Context, h *models.HandResult) error {
	return r.store.update(ctx, func(tx *bbolt.Tx) error {
		s, err := getSession(tx, h.SessionID)
		if err != nil {
			return err
		}
		hb := tx.Bucket([]byte(handsBucket))
		key := compositeKey(h.SessionID, itob(int64(h.HandNumber)))
		if hb.Get(key) != nil {
			return ErrHandConflict
		}
		seq, err := hb.NextSequence()
		if err != nil {
			return fmt.Errorf("add hand: %w", err)
		}
		h.ID = int64(seq)
		if err := putJSON(hb, key, h); err != nil {
			return err
		}

		count := 0
		if err := forEachPrefix(hb, itob(h.SessionID), func(_, _ []byte) error {
			count++
			return nil
		}); err != nil {
			return err
		}
		s.HandsPlayed = count
		return putSession(tx, s)
	})
}

func (r *boltSessionRepository) ListHands(ctx context.Context, sessionID int64) ([]models.HandResult, error) {
	hands := make([]models.HandResult, 0)
	err := r.store.view(ctx, func(tx *bbolt.Tx) error {
		return forEachPrefix(tx.Bucket([]byte(handsBucket)), itob(sessionID), func(_, v []byte) error {
			var h models.HandResult
			if err := json.Unmarshal(v, &h); err != nil {
				return fmt.Errorf("failed to unmarshal hand: %w", err)
			}
			hands = append(hands, h)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list hands: %w", err)
	}
	return hands, nil
}

// completedTotals folds every completed session into per-player totals.
// A non-empty playerID restricts the scan to that player.
func (r *boltSessionRepository) completedTotals(ctx context.Context, playerID string) (map[string]*SessionTotals, error) {
	totals := make(map[string]*SessionTotals)
	err := r.store.view(ctx, func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionsBucket)).ForEach(func(_, v []byte) error {
			var s models.GameSession
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("failed to unmarshal session: %w", err)
			}
			if !s.IsComplete || (playerID != "" && s.PlayerID != playerID) {
				return nil
			}
			t, ok := totals[s.PlayerID]
			if !ok {
				t = &SessionTotals{PlayerID: s.PlayerID}
				totals[s.PlayerID] = t
			}
			t.Sessions++
			t.TotalProfit += int64(s.Profit())
			t.TotalHands += int64(s.HandsPlayed)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("completed totals: %w", err)
	}
	return totals, nil
}

func (r *boltSessionRepository) CompletedTotals(ctx context.Context, playerID string) (SessionTotals, error) {
	totals, err := r.completedTotals(ctx, playerID)
	if err != nil {
		return SessionTotals{}, err
	}
	if t, ok := totals[playerID]; ok {
		return *t, nil
	}
	return SessionTotals{PlayerID: playerID}, nil
}

func (r *boltSessionRepository) TopCompletedTotals(ctx context.Context, limit int) ([]SessionTotals, error) {
	totals, err := r.completedTotals(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]SessionTotals, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalProfit != out[j].TotalProfit {
			return out[i].TotalProfit > out[j].TotalProfit
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *HandCounts) add(o models.HandOutcome) {
	c.Total++
	switch o {
	case models.OutcomeWin:
		c.Wins++
	case models.OutcomeBlackjack:
		c.Wins++
		c.Blackjacks++
	case models.OutcomeLoss:
		c.Losses++
	case models.OutcomePush:
		c.Pushes++
	}
}

func (r *boltSessionRepository) countHands(ctx context.Context, want func(playerID string) bool) (map[string]HandCounts, error) {
	counts := make(map[string]HandCounts)
	err := r.store.view(ctx, func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(handsBucket)).ForEach(func(_, v []byte) error {
			var h models.HandResult
			if err := json.Unmarshal(v, &h); err != nil {
				return fmt.Errorf("failed to unmarshal hand: %w", err)
			}
			if !want(h.PlayerID) {
				return nil
			}
			c := counts[h.PlayerID]
			c.add(h.Outcome)
			counts[h.PlayerID] = c
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("hand counts: %w", err)
	}
	return counts, nil
}

func (r *boltSessionRepository) HandCounts(ctx context.Context, playerID string) (HandCounts, error) {
	counts, err := r.countHands(ctx, func(id string) bool { return id == playerID })
	if err != nil {
		return HandCounts{}, err
	}
	return counts[playerID], nil
}

func (r *boltSessionRepository) HandCountsByPlayer(ctx context.Context, playerIDs []string) (map[string]HandCounts, error) {
	if len(playerIDs) == 0 {
		return make(map[string]HandCounts), nil
	}
	wanted := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		wanted[id] = struct{}{}
	}
	return r.countHands(ctx, func(id string) bool {
		_, ok := wanted[id]
		return ok
	})
}

type boltPlayerRepository struct {
	store *BoltStore
}

func (r *boltPlayerRepository) Upsert(ctx context.Context, p models.Player) error {
	return r.store.update(ctx, func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket([]byte(playersBucket)), []byte(p.ID), p)
	})
}

func (r *boltPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	var p models.Player
	err := r.store.view(ctx, func(tx *bbolt.Tx) error {
		found, err := getJSON(tx.Bucket([]byte(playersBucket)), []byte(id), &p)
		if err != nil {
			return fmt.Errorf("get player: %w", err)
		}
		if !found {
			return ErrPlayerNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *boltPlayerRepository) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	err := r.store.view(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(playersBucket))
		for _, id := range ids {
			var p models.Player
			found, err := getJSON(b, []byte(id), &p)
			if err != nil {
				return fmt.Errorf("display names: %w", err)
			}
			if found {
				names[id] = p.DisplayName
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
