package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// ErrorResponse writes the standard JSON error body {success:false,msg}.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSONResponse(w, r, status, Response{
		Success: false,
		Msg:     message,
	})
}

// ValidationResponse writes a 400 with the field error list.
func ValidationResponse(w http.ResponseWriter, r *http.Request, fields []FieldError) {
	WriteJSONResponse(w, r, http.StatusBadRequest, map[string]interface{}{
		"errors": fields,
	})
}

// WriteError renders err according to the error taxonomy. Unexpected errors
// are logged with the request id and answered with an opaque 500.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		ValidationResponse(w, r, verr.Fields)
		return
	}

	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Unexpected error",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
	ErrorResponse(w, r, status, MessageFor(err))
}

// WriteJSONResponse marshals data and writes it with status. A 204 carries
// no body.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(r.Context(), "Encoding response failed",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		http.Error(w, `{"success":false,"msg":"Server Error."}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// Status is already on the wire.
		slog.WarnContext(r.Context(), "Writing response failed",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// DecodeJSONBody decodes exactly one JSON object from the request into dst.
// Returned errors are safe to show to the caller.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return describeDecodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func describeDecodeError(err error) error {
	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		tooLargeErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")
	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", typeErr.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", typeErr.Offset)
	case errors.As(err, &tooLargeErr):
		return fmt.Errorf("body must not be larger than %d bytes", tooLargeErr.Limit)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return fmt.Errorf("body contains unknown key %q", field)
	default:
		return fmt.Errorf("decoding body: %w", err)
	}
}
