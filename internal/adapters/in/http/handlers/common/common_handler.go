// internal/adapters/in/http/handlers/common/common_handler.go
package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"flowify/internal/adapters/in/http/middleware"
	usecase "flowify/internal/application/usecase"
	approvedEmaildom "flowify/internal/domain/approvedEmail"
	plandom "flowify/internal/domain/plan"
	predom "flowify/internal/domain/prescheduling"
	productdom "flowify/internal/domain/product"
	saledom "flowify/internal/domain/sale"
	schedulingdom "flowify/internal/domain/scheduling"
	userdom "flowify/internal/domain/user"
)

const maxBodyBytes = 1 << 20 // 1MB

// ------------------------------
// Utility functions
// ------------------------------

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErrorMessage writes {"error": msg}.
func WriteErrorMessage(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, map[string]string{"error": msg})
}

// MethodNotAllowed writes 405 response.
func MethodNotAllowed(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusMethodNotAllowed, "method_not_allowed")
}

func NotFound(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusNotFound, "not_found")
}

// DecodeJSON reads a JSON body of at most 1MB into v.
func DecodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	_ = r.Body.Close()
	if len(strings.TrimSpace(string(body))) == 0 {
		return errors.New("empty body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// RequireActor returns the authenticated actor or writes 401.
func RequireActor(w http.ResponseWriter, r *http.Request) (*usecase.Actor, bool) {
	a, ok := middleware.CurrentActor(r)
	if !ok {
		WriteError(w, r, usecase.ErrNotAuthenticated)
		return nil, false
	}
	return a, true
}

// ------------------------------
// Error mapping
// ------------------------------

var badRequestErrs = []error{
	productdom.ErrInvalidID,
	productdom.ErrInvalidName,
	productdom.ErrInvalidPrices,
	productdom.ErrInvalidPlatform,
	productdom.ErrInvalidQuantity,
	productdom.ErrInvalidPrice,
	productdom.ErrInvalidCommission,
	productdom.ErrInvalidCity,
	schedulingdom.ErrInvalidID,
	schedulingdom.ErrInvalidCustomerName,
	schedulingdom.ErrInvalidPhone,
	schedulingdom.ErrInvalidAddress,
	schedulingdom.ErrInvalidProductID,
	schedulingdom.ErrInvalidQuantity,
	schedulingdom.ErrInvalidPlatform,
	schedulingdom.ErrInvalidStatus,
	schedulingdom.ErrInvalidScheduledFor,
	predom.ErrInvalidID,
	predom.ErrInvalidCustomerName,
	predom.ErrInvalidWhatsapp,
	predom.ErrInvalidCEP,
	predom.ErrInvalidAddress,
	predom.ErrInvalidProductID,
	predom.ErrInvalidQuantity,
	predom.ErrInvalidPlatform,
	predom.ErrInvalidStatus,
	predom.ErrInvalidExpectedDate,
	saledom.ErrInvalidID,
	saledom.ErrInvalidCustomerName,
	saledom.ErrInvalidPhone,
	saledom.ErrInvalidProductID,
	saledom.ErrInvalidPlatform,
	saledom.ErrInvalidQuantity,
	saledom.ErrInvalidTotalValue,
	saledom.ErrInvalidCommission,
	saledom.ErrInvalidStatus,
	usecase.ErrInvalidSaleTotal,
	usecase.ErrMissingPurchaseFields,
	userdom.ErrInvalidUID,
	userdom.ErrInvalidEmail,
	userdom.ErrInvalidPlanID,
	approvedEmaildom.ErrInvalidEmail,
	approvedEmaildom.ErrInvalidPlanID,
}

// StatusFor maps usecase/domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, usecase.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrForbidden),
		errors.Is(err, usecase.ErrPlanLimitReached),
		errors.Is(err, usecase.ErrNoActivePlan),
		errors.Is(err, usecase.ErrFeatureNotInPlan),
		errors.Is(err, usecase.ErrEmailNotApproved):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrProductNotFound),
		errors.Is(err, usecase.ErrPriceNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrSchedulingNotFound),
		errors.Is(err, productdom.ErrNotFound),
		errors.Is(err, schedulingdom.ErrNotFound),
		errors.Is(err, predom.ErrNotFound),
		errors.Is(err, saledom.ErrNotFound),
		errors.Is(err, plandom.ErrNotFound),
		errors.Is(err, userdom.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, saledom.ErrConflict),
		errors.Is(err, usecase.ErrSchedulingChanged),
		errors.Is(err, userdom.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrTransactionFailure):
		return http.StatusServiceUnavailable
	}
	for _, e := range badRequestErrs {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// WriteError writes {"error": err.Error()} with the mapped status.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		ev := log.Error().Err(err).Int("status", code)
		if r != nil {
			ev = ev.Str("method", r.Method).Str("path", r.URL.Path).Str("requestId", middleware.RequestID(r.Context()))
		}
		ev.Msg("[handlers] request failed")
	}
	if code == http.StatusServiceUnavailable && usecase.IsRetryable(err) {
		w.Header().Set("Retry-After", "1")
	}
	WriteErrorMessage(w, code, err.Error())
}
