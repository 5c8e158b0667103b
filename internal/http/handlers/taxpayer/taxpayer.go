// Package taxpayer contains all HTTP handlers for the taxpayer resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a record store.
// Each exported function here is a factory: it accepts the store once
// at startup and returns a handler that closes over it, e.g.
//
//	router.HandleFunc("POST /api/taxpayers", taxpayer.Register(store))
//
// The handlers are thin glue over the core packages: auth gates access,
// relief aggregates the claims, tax computes the payable amount, and
// storage persists the resulting record. They receive already-parsed
// primitives from the JSON body and render structured results back —
// nothing below this layer does any I/O formatting.
package taxpayer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/amirulhm/tax-api/internal/auth"
	"github.com/amirulhm/tax-api/internal/relief"
	"github.com/amirulhm/tax-api/internal/storage"
	"github.com/amirulhm/tax-api/internal/tax"
	"github.com/amirulhm/tax-api/internal/types"
	"github.com/amirulhm/tax-api/internal/utils/response"
)

// RegisterRequest is the payload for first-time registration: identity,
// the derived password, and the embedded filing. Embedding TaxFiling
// flattens its fields into the same JSON object, so the body reads as
// one flat form, the same shape the record is stored in.
type RegisterRequest struct {
	ID       string `json:"id"        validate:"required"`
	ICNumber string `json:"ic_number" validate:"required,len=12,numeric"`
	Password string `json:"password"  validate:"required,len=4"`
	types.TaxFiling
}

// LoginRequest carries only the password; the taxpayer ID comes from
// the URL path and the IC number is looked up from the stored record.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// RecalculateRequest is a full refiling: the password gates the update
// and the embedded filing replaces every stored figure.
type RecalculateRequest struct {
	Password string `json:"password" validate:"required"`
	types.TaxFiling
}

// Assessment is the success shape for register and recalculate: the
// stored record plus the claimed-relief summary, which is derived for
// display and never persisted.
type Assessment struct {
	types.TaxRecord
	ClaimedReliefs []string `json:"claimed_reliefs"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Register handles POST /api/taxpayers
// First-time registration: checks the ID is free, checks the password
// against the IC suffix, aggregates reliefs, computes the tax and
// stores the new record.
//
// Error responses:
//
//	400 Bad Request — empty body, malformed JSON, validation failure,
//	                  or password not matching the IC's last 4 digits
//	409 Conflict    — a record with this ID already exists
//	500 Internal    — storage failure
//
// ─────────────────────────────────────────────────────────────────────────────
func Register(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("registering a taxpayer")

		var req RegisterRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		// The password must be the last 4 digits of the IC number. This
		// is the system's whole credential rule — see package auth.
		if !auth.Verify(req.ICNumber, req.Password) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("password does not match last 4 digits of IC")))
			return
		}

		// Duplicate prevention lives here, not in the store: Exists
		// first, then an insert-only write.
		found, _, err := store.Exists(req.ID)
		if err != nil {
			slog.Error("error checking taxpayer id",
				slog.String("id", req.ID), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if found {
			response.WriteJSON(w, http.StatusConflict,
				response.GeneralError(fmt.Errorf("taxpayer id %q already exists, log in instead", req.ID)))
			return
		}

		assessment, err := buildAssessment(req.ID, req.ICNumber, req.Password, req.TaxFiling)
		if err != nil {
			writeAggregateError(w, err)
			return
		}

		if err := store.Upsert(assessment.TaxRecord, storage.InsertOnly); err != nil {
			slog.Error("error saving tax record",
				slog.String("id", req.ID), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		slog.Info("taxpayer registered",
			slog.String("id", req.ID),
			slog.String("tax_payable", assessment.TaxPayable.StringFixed(2)))
		response.WriteJSON(w, http.StatusCreated, assessment)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Login handles POST /api/taxpayers/{id}/login
// Verifies the password against the STORED IC number (not one supplied
// by the client) and returns the existing record.
//
// Error responses:
//
//	400 Bad Request  — empty body or missing password
//	401 Unauthorized — wrong password
//	404 Not Found    — unknown taxpayer ID
//
// ─────────────────────────────────────────────────────────────────────────────
func Login(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("taxpayer logging in", slog.String("id", id))

		var req LoginRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		storedIC, ok := lookupIC(w, store, id)
		if !ok {
			return
		}
		if !auth.Verify(storedIC, req.Password) {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.GeneralError(errors.New("invalid password")))
			return
		}

		record, err := store.GetByID(id)
		if err != nil {
			slog.Error("error getting tax record",
				slog.String("id", id), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		slog.Info("taxpayer logged in", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, record)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Recalculate handles PUT /api/taxpayers/{id}
// A full refiling: every stored field is recomputed from the submitted
// filing and the record is replaced in place. There is no partial
// update. A taxpayer who logs in and chooses NOT to refile simply never
// calls this — keeping the existing record is a client-side no-op, and
// nothing is re-saved.
//
// Error responses mirror Login, plus 400 for out-of-range reliefs.
// ─────────────────────────────────────────────────────────────────────────────
func Recalculate(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("recalculating tax record", slog.String("id", id))

		var req RecalculateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		storedIC, ok := lookupIC(w, store, id)
		if !ok {
			return
		}
		if !auth.Verify(storedIC, req.Password) {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.GeneralError(errors.New("invalid password")))
			return
		}

		assessment, err := buildAssessment(id, storedIC, req.Password, req.TaxFiling)
		if err != nil {
			writeAggregateError(w, err)
			return
		}

		if err := store.Upsert(assessment.TaxRecord, storage.Replace); err != nil {
			slog.Error("error replacing tax record",
				slog.String("id", id), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		slog.Info("tax record updated",
			slog.String("id", id),
			slog.String("tax_payable", assessment.TaxPayable.StringFixed(2)))
		response.WriteJSON(w, http.StatusOK, assessment)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/taxpayers/{id}
// Fetches a single stored tax record.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a tax record", slog.String("id", id))

		record, err := store.GetByID(id)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound,
				response.GeneralError(fmt.Errorf("no tax record for id %q", id)))
			return
		}
		if err != nil {
			slog.Error("error getting tax record",
				slog.String("id", id), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, record)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/taxpayers
// Returns every stored tax record, in stored order.
// Returns an empty array [] (not null) when there are no records yet.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all tax records")

		records, err := store.ListAll()
		if err != nil {
			slog.Error("error listing tax records", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// buildAssessment runs the core pipeline: aggregate reliefs, compute
// the chargeable income (floored at zero) and the tax payable, and
// assemble the full record. An update always passes through here too,
// so every stored field is rewritten on each save.
func buildAssessment(id, icNumber, password string, filing types.TaxFiling) (Assessment, error) {
	breakdown, err := relief.Aggregate(filing)
	if err != nil {
		return Assessment{}, err
	}

	income := decimal.NewFromFloat(filing.Income)
	chargeable := income.Sub(breakdown.Total)
	if chargeable.IsNegative() {
		chargeable = decimal.Zero
	}

	record := types.TaxRecord{
		ID:               id,
		ICNumber:         icNumber,
		Password:         password,
		Income:           income,
		IndividualRelief: breakdown.Individual,
		SpouseRelief:     breakdown.Spouse,
		ChildRelief:      breakdown.Child,
		NumChildren:      breakdown.NumChildren,
		MedicalRelief:    breakdown.Medical,
		LifestyleRelief:  breakdown.Lifestyle,
		EducationRelief:  breakdown.Education,
		ParentalRelief:   breakdown.Parental,
		TotalRelief:      breakdown.Total,
		ChargeableIncome: chargeable,
		TaxPayable:       tax.Compute(income, breakdown.Total),
	}

	return Assessment{TaxRecord: record, ClaimedReliefs: breakdown.Claimed()}, nil
}

// lookupIC resolves the stored IC number for id, writing the 404 (or
// 500) response itself when the lookup fails. The credential check must
// run against the stored IC, never a client-supplied one.
func lookupIC(w http.ResponseWriter, store storage.Storage, id string) (string, bool) {
	found, storedIC, err := store.Exists(id)
	if err != nil {
		slog.Error("error checking taxpayer id",
			slog.String("id", id), slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
		return "", false
	}
	if !found {
		response.WriteJSON(w, http.StatusNotFound,
			response.GeneralError(fmt.Errorf("taxpayer id %q not found, register first", id)))
		return "", false
	}
	return storedIC, true
}

// writeAggregateError maps a relief-aggregation failure to the right
// envelope: validator errors get the per-field messages, anything else
// the general shape.
func writeAggregateError(w http.ResponseWriter, err error) {
	var validateErrs validator.ValidationErrors
	if errors.As(err, &validateErrs) {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
		return
	}
	response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
}
