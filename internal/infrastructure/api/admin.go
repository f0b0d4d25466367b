package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"keycrm-sync-layer/internal/application"
	"keycrm-sync-layer/internal/infrastructure/pubsub"

	"github.com/rs/zerolog"
)

// AdminAPI exposes the sync settings and the live activity feed to the
// admin UI.
type AdminAPI struct {
	settings *application.SettingsService
	events   *pubsub.SyncPubSub
	logger   zerolog.Logger
}

// NewAdminAPI creates the admin handler set.
func NewAdminAPI(
	settings *application.SettingsService,
	events *pubsub.SyncPubSub,
	logger zerolog.Logger,
) *AdminAPI {
	return &AdminAPI{
		settings: settings,
		events:   events,
		logger:   logger,
	}
}

// GetSettings returns the current settings with the API key masked.
func (a *AdminAPI) GetSettings(w http.ResponseWriter, r *http.Request) {
	view, err := a.settings.Get(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to load settings")
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateSettings validates and stores a new settings snapshot.
func (a *AdminAPI) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var input application.SettingsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	view, err := a.settings.Update(r.Context(), input)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Settings update rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// StreamEvents streams sync outcomes as server-sent events until the client
// disconnects. Optional query parameters: order_id, failures_only.
func (a *AdminAPI) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	filter := &pubsub.SyncResultFilter{}
	if raw := r.URL.Query().Get("order_id"); raw != "" {
		orderID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid order_id", http.StatusBadRequest)
			return
		}
		filter.OrderID = orderID
	}
	filter.FailuresOnly = r.URL.Query().Get("failures_only") == "true"

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	channel := a.events.Subscribe(r.Context(), filter)
	for {
		select {
		case result, open := <-channel.Results:
			if !open {
				return
			}
			payload, err := json.Marshal(result)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
