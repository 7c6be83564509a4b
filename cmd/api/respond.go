package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/chofys/petshop/internal/store"
)

// actorHeader carries the authenticated user's id. Session handling lives
// in front of this service.
const actorHeader = "X-User-ID"

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps a store or domain error to its HTTP status. Unexpected
// errors are logged and hidden from the client.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case database.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, database.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, database.ErrInvalidInput),
		errors.Is(err, database.ErrInvalidQuantity),
		errors.Is(err, database.ErrInvalidStatus),
		errors.Is(err, database.ErrInvalidPetStatus),
		errors.Is(err, database.ErrInvalidPaymentMethod),
		errors.Is(err, database.ErrInvalidSeller),
		errors.Is(err, database.ErrInvalidRole),
		errors.Is(err, database.ErrPetRequiresContact),
		errors.Is(err, models.ErrInvalidItemRef):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrProductUnavailable),
		errors.Is(err, database.ErrPetUnavailable),
		errors.Is(err, database.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, database.ErrCartInactive),
		errors.Is(err, database.ErrDuplicateSale),
		errors.Is(err, database.ErrDuplicateName),
		errors.Is(err, database.ErrInUse),
		errors.Is(err, database.ErrConcurrentModification),
		errors.Is(err, database.ErrLockTimeout):
		return http.StatusConflict
	case database.IsRetryable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func parseActorID(header string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(header), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type actorHandler func(w http.ResponseWriter, r *http.Request, actor *models.User)

// withActor resolves the acting user from actorHeader and rejects the
// request when there is none.
func (a *app) withActor(next actorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseActorID(r.Header.Get(actorHeader))
		if !ok {
			respondError(w, http.StatusUnauthorized, "Missing or invalid "+actorHeader)
			return
		}

		actor, err := store.GetUser(r.Context(), a.db, id)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				respondError(w, http.StatusUnauthorized, "Unknown user")
				return
			}
			respondErr(w, r, err)
			return
		}

		next(w, r, actor)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func queryInt64(r *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return n
}

func pageParams(r *http.Request) (int, int) {
	return store.NormalizePage(queryInt(r, "page"), queryInt(r, "page_size"))
}
