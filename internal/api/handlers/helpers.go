package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.Logger(r.Context()).Warnw("encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeLookupError maps resolver errors onto 404 or 500.
func writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	obs.Logger(r.Context()).Errorw("status lookup failed", "path", r.URL.Path, "err", err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer")
	}
	return id, nil
}

// queryAt parses ?at=10:30 AM onto the service day; a missing value means end of day.
func queryAt(r *http.Request, day time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("at"))
	if raw == "" {
		return domain.EndOfDay(day), nil
	}

	at, err := domain.ParseClock(day, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("at must look like %q", domain.ClockLayout)
	}
	return at, nil
}
