package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/export/sheets"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/user"
	"github.com/MrJamesThe3rd/tally/internal/workspace"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Fail writes a JSON error with the given status.
func Fail(w http.ResponseWriter, status int, message string, details map[string]string) {
	JSON(w, status, ErrorResponse{Error: message, Details: details})
}

// Decode reads a JSON body into v and validates it. On failure it writes a
// 400 response and returns false.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Fail(w, http.StatusBadRequest, "invalid request body", map[string]string{"body": err.Error()})
		return false
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			Fail(w, http.StatusBadRequest, "invalid request body", nil)
			return false
		}

		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fmt.Sprintf("failed on '%s' rule", fe.Tag())
		}

		Fail(w, http.StatusBadRequest, "validation failed", details)

		return false
	}

	return true
}

// Error maps a service error to its HTTP status and writes it.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *ledger.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		Fail(w, http.StatusUnprocessableEntity, err.Error(), map[string]string{
			"account":   insufficient.Account.Name,
			"available": insufficient.Available.String(),
			"requested": insufficient.Requested.String(),
		})

		return
	}

	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Fail(w, status, "internal error", nil)

		return
	}

	Fail(w, status, err.Error(), nil)
}

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, account.ErrNotFound),
		errors.Is(err, transaction.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, account.ErrDuplicateName),
		errors.Is(err, ledger.ErrAccountInUse),
		errors.Is(err, ledger.ErrNotRevertible),
		errors.Is(err, workspace.ErrNotEmpty):
		return http.StatusConflict
	case errors.Is(err, user.ErrAuth),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrInvalidKind),
		errors.Is(err, transaction.ErrInvalidLegs),
		errors.Is(err, account.ErrInvalidName),
		errors.Is(err, account.ErrInvalidGroup),
		errors.Is(err, user.ErrInvalidInput),
		errors.Is(err, matching.ErrInvalidRule),
		errors.Is(err, importer.ErrUnknownFormat),
		errors.Is(err, importer.ErrInvalidFile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sheets.ErrNotConfigured):
		return http.StatusNotImplemented
	}

	return http.StatusInternalServerError
}
