package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/Dosada05/blackjack-arena/repositories"
)

// SessionService принимает игровые сессии и результаты раздач от клиента.
// Сама игра (раздача карт, выплаты) происходит на клиенте.
type SessionService struct {
	store  repositories.Store
	retry  RetryOptions
	now    func() time.Time
	logger *slog.Logger
}

func NewSessionService(store repositories.Store, opts TournamentServiceOptions, logger *slog.Logger) *SessionService {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	opts.Retry.FillDefaults()
	return &SessionService{store: store, retry: opts.Retry, now: now, logger: logger}
}

type StartSessionInput struct {
	StartingBalance *int   `json:"starting_balance"`
	NumDecks        *int   `json:"num_decks"`
	TournamentID    *int64 `json:"tournament_id"`
}

// StartSession opens a session. A tournament session takes its bankroll and
// shoe size from the tournament and requires an unsubmitted entry.
func (s *SessionService) StartSession(ctx context.Context, playerID string, in StartSessionInput) (*models.GameSession, error) {
	session := &models.GameSession{
		PlayerID:  playerID,
		StartedAt: s.now(),
	}

	if in.TournamentID == nil {
		v := newValidationError()
		if in.StartingBalance != nil && *in.StartingBalance <= 0 {
			v.Add("starting_balance", "must be positive")
		}
		if in.NumDecks != nil && *in.NumDecks < 1 {
			v.Add("num_decks", "must be at least 1")
		}
		if err := v.orNil(); err != nil {
			return nil, err
		}
		session.StartingBalance = intOr(in.StartingBalance, defaultStartingBalance)
		session.NumDecks = intOr(in.NumDecks, defaultNumDecks)

		if err := s.store.Sessions().Create(ctx, session); err != nil {
			return nil, handleRepositoryError(err)
		}
	} else {
		err := atomicWithRetry(ctx, s.store, s.retry, s.logger, "start tournament session", func(tx repositories.Store) error {
			t, err := tx.Tournaments().GetByID(ctx, *in.TournamentID)
			if err != nil {
				return err
			}
			entry, err := tx.Entries().GetByTournamentAndPlayer(ctx, t.ID, playerID)
			if err != nil {
				return err
			}
			if entry.IsSubmitted {
				return ErrAlreadySubmitted
			}
			tournamentID, entryID := t.ID, entry.ID
			session.TournamentID = &tournamentID
			session.EntryID = &entryID
			session.StartingBalance = t.StartingBalance
			session.NumDecks = t.NumDecks
			return tx.Sessions().Create(ctx, session)
		})
		if err != nil {
			return nil, handleRepositoryError(err)
		}
	}

	s.logger.InfoContext(ctx, "game session started",
		slog.Int64("session_id", session.ID), slog.String("player_id", playerID))
	return session, nil
}

type RecordHandInput struct {
	// Nil means the next hand number of the session.
	HandNumber *int               `json:"hand_number"`
	Bet        int                `json:"bet"`
	Payout     int                `json:"payout"`
	Outcome    models.HandOutcome `json:"outcome"`
}

func (in RecordHandInput) validate() error {
	v := newValidationError()
	if in.HandNumber != nil && *in.HandNumber < 1 {
		v.Add("hand_number", "must be at least 1")
	}
	if in.Bet <= 0 {
		v.Add("bet", "must be positive")
	}
	if !in.Outcome.IsValid() {
		v.Add("outcome", "must be one of win, loss, push, blackjack")
	}
	return v.orNil()
}

// ownedSession hides sessions of other players behind ErrSessionNotFound.
func ownedSession(s *models.GameSession, playerID string) error {
	if s.PlayerID != playerID {
		return ErrSessionNotFound
	}
	return nil
}

// RecordHand stores one resolved hand of an open session.
func (s *SessionService) RecordHand(ctx context.Context, sessionID int64, playerID string, in RecordHandInput) (*models.HandResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var hand *models.HandResult
	err := atomicWithRetry(ctx, s.store, s.retry, s.logger, "record hand", func(tx repositories.Store) error {
		session, err := tx.Sessions().GetForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := ownedSession(session, playerID); err != nil {
			return err
		}
		if session.IsComplete {
			return ErrSessionComplete
		}

		h := &models.HandResult{
			SessionID:  sessionID,
			PlayerID:   playerID,
			HandNumber: intOr(in.HandNumber, session.HandsPlayed+1),
			Bet:        in.Bet,
			Payout:     in.Payout,
			Outcome:    in.Outcome,
			CreatedAt:  s.now(),
		}
		if err := tx.Sessions().AddHand(ctx, h); err != nil {
			return err
		}
		hand = h
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return hand, nil
}

// CompleteSession closes the session with its final balance. It can happen once.
func (s *SessionService) CompleteSession(ctx context.Context, sessionID int64, playerID string, finalBalance *int) (*models.GameSession, error) {
	v := newValidationError()
	if finalBalance == nil {
		v.Add("final_balance", "is required")
	} else if *finalBalance < 0 {
		v.Add("final_balance", "must not be negative")
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	var completed *models.GameSession
	err := atomicWithRetry(ctx, s.store, s.retry, s.logger, "complete session", func(tx repositories.Store) error {
		session, err := tx.Sessions().GetForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := ownedSession(session, playerID); err != nil {
			return err
		}
		if session.IsComplete {
			return ErrSessionComplete
		}
		if err := tx.Sessions().Complete(ctx, sessionID, *finalBalance, s.now()); err != nil {
			return err
		}
		completed, err = tx.Sessions().GetByID(ctx, sessionID)
		return err
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "game session completed",
		slog.Int64("session_id", sessionID),
		slog.String("player_id", playerID),
		slog.Int("profit", completed.Profit()),
		slog.Int("hands_played", completed.HandsPlayed))
	return completed, nil
}

// GetSession returns one of the caller's sessions with its hands.
func (s *SessionService) GetSession(ctx context.Context, sessionID int64, playerID string) (*models.GameSession, error) {
	session, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if err := ownedSession(session, playerID); err != nil {
		return nil, err
	}
	hands, err := s.store.Sessions().ListHands(ctx, sessionID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	session.Hands = hands
	return session, nil
}
