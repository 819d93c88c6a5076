package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"

	"jobscraper-web/internal/store"
)

type DBHandler struct {
	DB *sql.DB
}

// Fetches lists recent fetch-log records, newest first.
func (h DBHandler) Fetches(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		WriteError(w, r, http.StatusNotFound, "diagnostics_disabled", "fetch log is disabled")
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	recs, err := store.ListFetches(r.Context(), h.DB, store.ListFetchesOpts{
		ViewID: q.Get("view"),
		Role:   q.Get("role"),
		Limit:  limit,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, recs)
}

func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		WriteError(w, r, http.StatusNotFound, "diagnostics_disabled", "fetch log is disabled")
		return
	}
	if !IsLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "local requests only")
		return
	}

	if err := store.Checkpoint(r.Context(), h.DB); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
