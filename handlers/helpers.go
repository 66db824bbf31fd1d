package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/blackjack-arena/middleware"
	"github.com/Dosada05/blackjack-arena/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // programmer error: dst is not a pointer
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, code string, message interface{}) {
	env := jsonResponse{"error": message, "code": code}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, services.CodeInternal, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, "bad_request", err.Error())
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusUnauthorized, "unauthenticated", "authentication required")
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	env := jsonResponse{
		"error":  services.ErrValidationFailed.Error(),
		"code":   services.CodeValidation,
		"fields": fields,
	}
	if err := writeJSON(w, http.StatusUnprocessableEntity, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// statusForCode is the HTTP status of every stable service error code.
var statusForCode = map[string]int{
	services.CodeNotFound:         http.StatusNotFound,
	services.CodeClosed:           http.StatusConflict,
	services.CodeFull:             http.StatusConflict,
	services.CodeAlreadyJoined:    http.StatusConflict,
	services.CodeAlreadySubmitted: http.StatusConflict,
	services.CodeConflict:         http.StatusConflict,
	services.CodeValidation:       http.StatusUnprocessableEntity,
	services.CodeForbidden:        http.StatusForbidden,
	services.CodeTransient:        http.StatusServiceUnavailable,
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		failedValidationResponse(w, r, validationErr.Fields)
		return
	}

	code := services.ErrorCode(err)
	status, ok := statusForCode[code]
	if !ok {
		serverErrorResponse(w, r, err)
		return
	}

	var headers http.Header
	if code == services.CodeTransient {
		headers = http.Header{"Retry-After": []string{"1"}}
	}
	env := jsonResponse{"error": err.Error(), "code": code}
	if err := writeJSON(w, status, env, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, paramName string) (int64, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}
	return id, nil
}

// currentPlayer writes a 401 and returns false when the request is anonymous.
func currentPlayer(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.PlayerFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return "", false
	}
	return id.PlayerID, true
}
