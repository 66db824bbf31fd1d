package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/Dosada05/blackjack-arena/repositories"
)

// Ошибки сервисного слоя. Каждая имеет стабильный код, см. ErrorCode.
var (
	// Ресурс не найден (турнир, запись участника, сессия)
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrEntryNotFound      = errors.New("tournament entry not found")
	ErrSessionNotFound    = errors.New("game session not found")

	// Ошибки бизнес-правил
	ErrTournamentClosed    = errors.New("tournament is not open for joining")
	ErrTournamentFull      = errors.New("tournament is full")
	ErrAlreadyJoined       = errors.New("player already joined this tournament")
	ErrAlreadySubmitted    = errors.New("result already submitted for this entry")
	ErrSessionComplete     = errors.New("game session is already complete")
	ErrHandAlreadyRecorded = errors.New("hand number already recorded for this session")

	// Ошибки валидации
	ErrValidationFailed = errors.New("validation failed")

	// Ошибки авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current player")

	// ErrTransient is returned once the retry budget for a conflicting atomic
	// unit is spent. Callers may try again later.
	ErrTransient = errors.New("temporary storage conflict, try again")
)

// Error codes exposed to clients. They never change once published.
const (
	CodeNotFound         = "not_found"
	CodeClosed           = "closed"
	CodeFull             = "full"
	CodeAlreadyJoined    = "already_joined"
	CodeAlreadySubmitted = "already_submitted"
	CodeConflict         = "conflict"
	CodeValidation       = "validation_error"
	CodeTransient        = "transient"
	CodeForbidden        = "forbidden"
	CodeInternal         = "internal"
)

// ValidationError lists per-field problems of a request payload.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, msg string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// orNil returns nil when nothing was added, so callers can `return v.orNil()`.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ErrorCode maps any error returned by this package to a stable code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrTournamentNotFound),
		errors.Is(err, ErrEntryNotFound),
		errors.Is(err, ErrSessionNotFound):
		return CodeNotFound
	case errors.Is(err, ErrTournamentClosed):
		return CodeClosed
	case errors.Is(err, ErrTournamentFull):
		return CodeFull
	case errors.Is(err, ErrAlreadyJoined):
		return CodeAlreadyJoined
	case errors.Is(err, ErrAlreadySubmitted):
		return CodeAlreadySubmitted
	case errors.Is(err, ErrSessionComplete), errors.Is(err, ErrHandAlreadyRecorded):
		return CodeConflict
	case errors.Is(err, ErrValidationFailed):
		return CodeValidation
	case errors.Is(err, ErrForbiddenOperation):
		return CodeForbidden
	case errors.Is(err, ErrTransient):
		return CodeTransient
	default:
		return CodeInternal
	}
}

// handleRepositoryError translates repository sentinels into service errors.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, repositories.ErrEntryTournamentInvalid):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrEntryNotFound):
		return ErrEntryNotFound
	case errors.Is(err, repositories.ErrEntryConflict):
		return ErrAlreadyJoined
	case errors.Is(err, repositories.ErrEntryAlreadySubmitted):
		return ErrAlreadySubmitted
	case errors.Is(err, repositories.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, repositories.ErrSessionAlreadyComplete):
		return ErrSessionComplete
	case errors.Is(err, repositories.ErrHandConflict):
		return ErrHandAlreadyRecorded
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrNotFound
	default:
		return err
	}
}
