package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/Dosada05/blackjack-arena/repositories"
)

const (
	defaultStartingBalance = 1000
	defaultNumDecks        = 6
	defaultMaxPlayers      = 20
	maxTournamentNameLen   = 100
)

type TournamentServiceOptions struct {
	Retry RetryOptions
	// Now is the service clock. Nil means time.Now in UTC.
	Now func() time.Time
}

// TournamentService инкапсулирует жизненный цикл турнира: создание, запись
// участников, приём результатов, ранжирование и завершение.
type TournamentService struct {
	store    repositories.Store
	events   EventPublisher
	archiver StandingsArchiver
	retry    RetryOptions
	now      func() time.Time
	logger   *slog.Logger
}

// NewTournamentService создаёт TournamentService. events и archiver могут быть nil.
func NewTournamentService(
	store repositories.Store,
	events EventPublisher,
	archiver StandingsArchiver,
	opts TournamentServiceOptions,
	logger *slog.Logger,
) *TournamentService {
	if events == nil {
		events = noopPublisher{}
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	opts.Retry.FillDefaults()
	return &TournamentService{
		store:    store,
		events:   events,
		archiver: archiver,
		retry:    opts.Retry,
		now:      now,
		logger:   logger,
	}
}

type CreateTournamentInput struct {
	Name             string                  `json:"name"`
	Format           models.TournamentFormat `json:"format"`
	StartingBalance  *int                    `json:"starting_balance"`
	HandLimit        *int                    `json:"hand_limit"`
	TimeLimitMinutes *int                    `json:"time_limit_minutes"`
	NumDecks         *int                    `json:"num_decks"`
	MaxPlayers       *int                    `json:"max_players"`
	StartTime        *time.Time              `json:"start_time"`
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func (in CreateTournamentInput) validate() error {
	v := newValidationError()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		v.Add("name", "is required")
	} else if utf8.RuneCountInString(name) > maxTournamentNameLen {
		v.Add("name", fmt.Sprintf("must be at most %d characters", maxTournamentNameLen))
	}
	if !in.Format.IsValid() {
		v.Add("format", "must be one of bankroll_challenge, timed_rounds")
	}
	if in.StartingBalance != nil && *in.StartingBalance <= 0 {
		v.Add("starting_balance", "must be positive")
	}
	if in.NumDecks != nil && *in.NumDecks < 1 {
		v.Add("num_decks", "must be at least 1")
	}
	if in.MaxPlayers != nil && *in.MaxPlayers < 1 {
		v.Add("max_players", "must be at least 1")
	}
	if in.HandLimit != nil && *in.HandLimit <= 0 {
		v.Add("hand_limit", "must be positive")
	}
	if in.TimeLimitMinutes != nil && *in.TimeLimitMinutes <= 0 {
		v.Add("time_limit_minutes", "must be positive")
	}
	if in.StartTime == nil || in.StartTime.IsZero() {
		v.Add("start_time", "is required")
	}
	return v.orNil()
}

// CreateTournament создаёт турнир в статусе upcoming; создатель становится владельцем.
func (s *TournamentService) CreateTournament(ctx context.Context, creatorID string, in CreateTournamentInput) (*models.Tournament, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	t := &models.Tournament{
		Name:             strings.TrimSpace(in.Name),
		CreatorID:        creatorID,
		Format:           in.Format,
		Status:           models.StatusUpcoming,
		StartingBalance:  intOr(in.StartingBalance, defaultStartingBalance),
		HandLimit:        in.HandLimit,
		TimeLimitMinutes: in.TimeLimitMinutes,
		NumDecks:         intOr(in.NumDecks, defaultNumDecks),
		MaxPlayers:       intOr(in.MaxPlayers, defaultMaxPlayers),
		StartTime:        in.StartTime.UTC(),
		CreatedAt:        s.now(),
	}
	if err := s.store.Tournaments().Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tournament: %w", handleRepositoryError(err))
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.Int64("tournament_id", t.ID), slog.String("creator_id", creatorID))
	return t, nil
}

// ListTournaments returns tournaments newest first. An empty statusFilter lists all.
func (s *TournamentService) ListTournaments(ctx context.Context, statusFilter string) ([]models.Tournament, error) {
	filter := repositories.ListTournamentsFilter{}
	if statusFilter != "" {
		status := models.TournamentStatus(strings.ToLower(statusFilter))
		if !status.IsValid() {
			v := newValidationError()
			v.Add("status", "must be one of upcoming, active, completed")
			return nil, v
		}
		filter.Status = &status
	}

	tournaments, err := s.store.Tournaments().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	for i := range tournaments {
		count, err := s.store.Entries().CountByTournament(ctx, tournaments[i].ID)
		if err != nil {
			return nil, fmt.Errorf("count entries for tournament %d: %w", tournaments[i].ID, err)
		}
		tournaments[i].PlayerCount = count
	}
	return tournaments, nil
}

// GetTournament returns the tournament with all of its entries.
func (s *TournamentService) GetTournament(ctx context.Context, id int64) (*models.Tournament, error) {
	t, err := s.store.Tournaments().GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	entries, err := s.store.Entries().ListByTournament(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if err := decorateEntries(ctx, s.store, t.StartingBalance, entries); err != nil {
		return nil, err
	}
	sortForDetail(entries)

	t.Entries = entries
	t.PlayerCount = len(entries)
	return t, nil
}

// DeleteTournament удаляет турнир; разрешено только создателю.
func (s *TournamentService) DeleteTournament(ctx context.Context, id int64, requesterID string) error {
	var deleted models.Tournament
	err := atomicWithRetry(ctx, s.store, s.retry, s.logger, "delete tournament", func(tx repositories.Store) error {
		t, err := tx.Tournaments().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.CreatorID != requesterID {
			return ErrForbiddenOperation
		}
		deleted = *t
		return tx.Tournaments().Delete(ctx, id)
	})
	if err != nil {
		return handleRepositoryError(err)
	}
	s.logger.InfoContext(ctx, "tournament deleted",
		slog.Int64("tournament_id", id), slog.String("requester_id", requesterID))

	if deleted.Status == models.StatusCompleted && s.archiver != nil {
		removeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		defer cancel()
		if err := s.archiver.RemoveStandings(removeCtx, deleted); err != nil {
			s.logger.WarnContext(ctx, "failed to remove archived standings",
				slog.Int64("tournament_id", id), slog.Any("error", err))
		}
	}
	return nil
}

// TournamentLeaderboard returns the submitted entries, best balance first.
func (s *TournamentService) TournamentLeaderboard(ctx context.Context, id int64) ([]models.TournamentEntry, error) {
	t, err := s.store.Tournaments().GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	entries, err := s.store.Entries().ListByTournament(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("list submitted entries: %w", err)
	}
	sortStandings(entries)
	if err := decorateEntries(ctx, s.store, t.StartingBalance, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ActivateDue flips upcoming tournaments whose start time has passed to
// active and returns how many were activated.
func (s *TournamentService) ActivateDue(ctx context.Context) (int, error) {
	now := s.now()
	upcoming := models.StatusUpcoming
	due, err := s.store.Tournaments().List(ctx, repositories.ListTournamentsFilter{
		Status:       &upcoming,
		StartsBefore: &now,
	})
	if err != nil {
		return 0, fmt.Errorf("list due tournaments: %w", err)
	}

	activated := 0
	for _, candidate := range due {
		changed := false
		err := atomicWithRetry(ctx, s.store, s.retry, s.logger, "activate tournament", func(tx repositories.Store) error {
			changed = false
			t, err := tx.Tournaments().GetForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			// Another unit may have completed or activated it meanwhile.
			if t.Status != models.StatusUpcoming || !t.Status.CanTransitionTo(models.StatusActive) {
				return nil
			}
			if err := tx.Tournaments().UpdateStatus(ctx, t.ID, models.StatusActive); err != nil {
				return err
			}
			changed = true
			return nil
		})
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			continue
		}
		if err != nil {
			return activated, fmt.Errorf("activate tournament %d: %w", candidate.ID, err)
		}
		if !changed {
			continue
		}

		activated++
		event := newTournamentEvent(models.EventTournamentActivated, candidate.ID, now)
		event.Status = models.StatusActive
		s.events.Publish(event)
		s.logger.InfoContext(ctx, "tournament activated", slog.Int64("tournament_id", candidate.ID))
	}
	return activated, nil
}

// decorateEntries fills display names and profit in place.
func decorateEntries(ctx context.Context, store repositories.Store, startingBalance int, entries []models.TournamentEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PlayerID)
	}
	names, err := store.Players().DisplayNames(ctx, ids)
	if err != nil {
		return fmt.Errorf("load display names: %w", err)
	}
	for i := range entries {
		entries[i].DisplayName = displayNameOr(names, entries[i].PlayerID)
		entries[i].Profit = entries[i].ComputeProfit(startingBalance)
	}
	return nil
}

func displayNameOr(names map[string]string, playerID string) string {
	if name, ok := names[playerID]; ok && name != "" {
		return name
	}
	return playerID
}
