package api

import (
	"errors"
	"io"
	"net/http"

	"shareit/internal/domain"
	"shareit/internal/dto"
	"shareit/internal/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse is the body of every failed call.
type ErrorResponse struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

type errorKind struct {
	kind    error
	status  int
	message string
}

var errorKinds = []errorKind{
	{domain.ErrUserNotFound, http.StatusNotFound, "User not found."},
	{domain.ErrItemNotFound, http.StatusNotFound, "Item not found."},
	{domain.ErrRequestNotFound, http.StatusNotFound, "Request not found."},
	{domain.ErrBookingNotFound, http.StatusNotFound, "Booking not found."},
	{domain.ErrWrongOwner, http.StatusNotFound, "User is not the owner of the item."},
	{domain.ErrEmailExists, http.StatusConflict, "Email already exists."},
	{domain.ErrItemNotAvailable, http.StatusBadRequest, "Booking failed."},
	{domain.ErrClashState, http.StatusBadRequest, "Invalid booking state in request."},
	{domain.ErrValidation, http.StatusBadRequest, "Validation error."},
}

// ErrorStatus resolves the HTTP status and body for err.
func ErrorStatus(err error) (int, ErrorResponse) {
	// An illegal argument carries its text as the message, e.g. "Unknown state: X".
	if errors.Is(err, domain.ErrIllegalArgument) {
		return http.StatusBadRequest, ErrorResponse{
			Message:     domain.Describe(err),
			Description: "IllegalArgument",
		}
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			return k.status, ErrorResponse{Message: k.message, Description: domain.Describe(err)}
		}
	}
	return http.StatusInternalServerError, ErrorResponse{
		Message:     "Unexpected server error.",
		Description: err.Error(),
	}
}

// WriteServiceError maps err to a status code and writes the error body.
func WriteServiceError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	status, body := ErrorStatus(err)
	if logger != nil {
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Msg("request failed")
		} else {
			logger.Warn().Int("status", status).Str("reason", body.Description).Msg(body.Message)
		}
	}
	WriteJSON(w, status, body)
}

func WriteError(w http.ResponseWriter, status int, message, description string) {
	WriteJSON(w, status, ErrorResponse{Message: message, Description: description})
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// DecodeJSON reads a JSON body into v. Malformed or missing bodies are validation errors.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Errorf(domain.ErrValidation, "request body is required")
		}
		return domain.Errorf(domain.ErrValidation, "malformed JSON body: %v", err)
	}
	return nil
}

// SharerID reads the acting user from the X-Sharer-User-Id header.
func SharerID(r *http.Request) (int64, error) {
	return dto.ParseID(models.HeaderSharerUserID, r.Header.Get(models.HeaderSharerUserID))
}

func pathID(r *http.Request, name string) (int64, error) {
	return dto.ParseID(name, r.PathValue(name))
}

func pageParam(r *http.Request) (models.Page, error) {
	q := r.URL.Query()
	return dto.ParsePage(q.Get("from"), q.Get("size"))
}
