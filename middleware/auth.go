package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const playerContextKey contextKey = "player"

// Имена JWT claims, выдаваемых провайдером идентификации.
const (
	jwtClaimPlayerID    = "player_id"
	jwtClaimSubject     = "sub"
	jwtClaimDisplayName = "display_name"
	jwtClaimName        = "name"
)

// Identity is the authenticated caller.
type Identity struct {
	PlayerID    string
	DisplayName string
}

// PlayerRecorder remembers the caller's display name. Failures are logged, not fatal.
type PlayerRecorder interface {
	Touch(ctx context.Context, playerID, displayName string) error
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, playerContextKey, id)
}

func PlayerFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(playerContextKey).(Identity)
	return id, ok && id.PlayerID != ""
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}

// Authenticate requires a valid HS256 bearer token and puts the caller's
// Identity into the request context.
func Authenticate(secret []byte, players PlayerRecorder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(tokenString) == "" {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "missing or malformed bearer token")
				return
			}

			id, err := parseIdentity(strings.TrimSpace(tokenString), secret)
			if err != nil {
				logger.DebugContext(r.Context(), "rejected token", slog.Any("error", err))
				writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}

			if players != nil {
				if err := players.Touch(r.Context(), id.PlayerID, id.DisplayName); err != nil {
					logger.WarnContext(r.Context(), "failed to record player",
						slog.String("player_id", id.PlayerID), slog.Any("error", err))
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func parseIdentity(tokenString string, secret []byte) (Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, errors.New("token is not valid")
	}

	playerID, err := claimString(claims, jwtClaimPlayerID)
	if err != nil || playerID == "" {
		playerID, err = claimString(claims, jwtClaimSubject)
	}
	if err != nil {
		return Identity{}, err
	}
	if playerID == "" {
		return Identity{}, fmt.Errorf("token has neither '%s' nor '%s' claim", jwtClaimPlayerID, jwtClaimSubject)
	}

	name, _ := claimString(claims, jwtClaimDisplayName)
	if name == "" {
		name, _ = claimString(claims, jwtClaimName)
	}
	return Identity{PlayerID: playerID, DisplayName: name}, nil
}

// claimString accepts string and integral numeric claims.
func claimString(claims jwt.MapClaims, name string) (string, error) {
	raw, ok := claims[name]
	if !ok {
		return "", nil
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case float64:
		if v != float64(int64(v)) {
			return "", fmt.Errorf("'%s' claim is not an integer: %f", name, v)
		}
		return strconv.FormatInt(int64(v), 10), nil
	default:
		return "", fmt.Errorf("invalid type for '%s' claim: %T", name, raw)
	}
}
