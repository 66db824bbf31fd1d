package repositories

import "errors"

var (
	ErrTournamentNotFound = errors.New("tournament not found")

	ErrEntryNotFound          = errors.New("tournament entry not found")
	ErrEntryConflict          = errors.New("entry conflict: player already registered for this tournament")
	ErrEntryAlreadySubmitted  = errors.New("tournament entry already submitted")
	ErrEntryTournamentInvalid = errors.New("entry tournament conflict or invalid")

	ErrSessionNotFound        = errors.New("game session not found")
	ErrSessionAlreadyComplete = errors.New("game session already complete")
	ErrHandConflict           = errors.New("hand number already recorded for this session")

	ErrPlayerNotFound = errors.New("player not found")

	// ErrConcurrencyConflict means the atomic unit lost a race against another
	// writer and can be retried as a whole.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)
