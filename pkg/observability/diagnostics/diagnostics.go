// Package diagnostics serves the operator's diagnostics and liveness endpoints.
package diagnostics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// DefaultReporter names the component that emits claim events.
const DefaultReporter = "configmap-claim-controller"

// Snapshot is the JSON document served at the diagnostics root.
type Snapshot struct {
	LastEvent time.Time `json:"lastEvent"`
	Reporter  string    `json:"reporter"`
}

// State is shared between the claim controllers and the HTTP handlers.
type State struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// NewState starts the diagnostics clock at now.
func NewState(reporter string, now time.Time) *State {
	return &State{snapshot: Snapshot{LastEvent: now.UTC(), Reporter: reporter}}
}

// Touch records that a claim was reconciled at t.
func (state *State) Touch(t time.Time) {
	if state == nil {
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.snapshot.LastEvent = t.UTC()
}

// Snapshot returns a copy of the current diagnostics.
func (state *State) Snapshot() Snapshot {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.snapshot
}

// Handlers returns the endpoints to mount next to /metrics.
func (state *State) Handlers() map[string]http.Handler {
	return map[string]http.Handler{
		"/":       http.HandlerFunc(state.serveIndex),
		"/health": http.HandlerFunc(serveHealth),
	}
}

func (state *State) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, state.Snapshot())
}

func serveHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, "healthy")
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}
