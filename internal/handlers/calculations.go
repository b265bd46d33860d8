package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"calculations-api/internal/calculator"
	"calculations-api/internal/metrics"
	"calculations-api/internal/models"
	"calculations-api/internal/storage"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// CalculationsHandler dispatches the /calculations subtree. The collection
// path handles create and browse; paths carrying an id handle read, update
// and delete. Every store call is filtered on the resolved user's id, so a
// record owned by someone else is indistinguishable from a missing one.
func CalculationsHandler(s storage.Store) func(w http.ResponseWriter, r *http.Request, user *models.User) {
	return func(w http.ResponseWriter, r *http.Request, user *models.User) {
		trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/calculations"), "/")

		if trimmed == "" {
			switch r.Method {
			case http.MethodPost:
				createCalculation(w, r, user, s)
			case http.MethodGet:
				listCalculations(w, r, user, s)
			default:
				respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}

		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusNotFound, "Calculation not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			getCalculation(w, r, user, s, id)
		case http.MethodPut, http.MethodPatch:
			updateCalculation(w, r, user, s, id)
		case http.MethodDelete:
			deleteCalculation(w, r, user, s, id)
		default:
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func createCalculation(w http.ResponseWriter, r *http.Request, user *models.User, s storage.Store) {
	var req models.CalculationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := calculator.Compute(req.Operation, req.Operand1, req.Operand2)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	calc := models.Calculation{
		Operation: req.Operation,
		Operand1:  req.Operand1,
		Operand2:  req.Operand2,
		Result:    result,
		UserID:    user.ID,
	}

	if err := s.CreateCalculation(r.Context(), &calc); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save calculation")
		return
	}

	metrics.RecordCalculation(calc.Operation)
	respondWithJSON(w, http.StatusCreated, calc)
}

func listCalculations(w http.ResponseWriter, r *http.Request, user *models.User, s storage.Store) {
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := queryInt(r, "limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	calculations, err := s.ListCalculations(r.Context(), user.ID, offset, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list calculations")
		return
	}

	respondWithJSON(w, http.StatusOK, calculations)
}

func getCalculation(w http.ResponseWriter, r *http.Request, user *models.User, s storage.Store, id int64) {
	calc, err := s.GetCalculation(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Calculation not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to get calculation")
		return
	}

	respondWithJSON(w, http.StatusOK, calc)
}

// updateCalculation serves both PUT and PATCH: fields absent from the request
// keep their prior values, and the result is recomputed from the merged
// operation and operands. An empty request returns the record untouched.
func updateCalculation(w http.ResponseWriter, r *http.Request, user *models.User, s storage.Store, id int64) {
	var req models.CalculationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	calc, err := s.GetCalculation(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Calculation not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to get calculation")
		return
	}

	if req.Empty() {
		respondWithJSON(w, http.StatusOK, calc)
		return
	}

	if req.Operation != nil {
		calc.Operation = *req.Operation
	}
	if req.Operand1 != nil {
		calc.Operand1 = *req.Operand1
	}
	if req.Operand2 != nil {
		calc.Operand2 = *req.Operand2
	}

	result, err := calculator.Compute(calc.Operation, calc.Operand1, calc.Operand2)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	calc.Result = result

	if err := s.UpdateCalculation(r.Context(), calc); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Calculation not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update calculation")
		return
	}

	metrics.RecordCalculation(calc.Operation)
	respondWithJSON(w, http.StatusOK, calc)
}

func deleteCalculation(w http.ResponseWriter, r *http.Request, user *models.User, s storage.Store, id int64) {
	if err := s.DeleteCalculation(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Calculation not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete calculation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return val
}
