package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pindrop/pindrop/internal/metrics"
	"github.com/pindrop/pindrop/internal/pin"
	"github.com/pindrop/pindrop/internal/store"
)

// Handler is the HTTP handler for the handoff endpoints.
type Handler struct {
	store          *store.Store
	pins           *pin.Generator
	reg            *metrics.Registry
	maxResultBytes int
	mux            *http.ServeMux
}

// New creates a Handler wired to the given store, pin generator and metrics
// registry, and registers all routes. maxResultBytes caps the serialized size
// of a submitted result.
func New(st *store.Store, pins *pin.Generator, reg *metrics.Registry, maxResultBytes int) http.Handler {
	h := &Handler{
		store:          st,
		pins:           pins,
		reg:            reg,
		maxResultBytes: maxResultBytes,
		mux:            http.NewServeMux(),
	}

	h.mux.HandleFunc("POST /pin/{namespace}", h.issuePin)
	h.mux.HandleFunc("POST /pin/{namespace}/{pin}", h.pollPin)
	h.mux.HandleFunc("PUT /pin/{namespace}/{pin}", h.submitResult)
	h.mux.HandleFunc("GET /health", h.health)
	h.mux.Handle("GET /metrics", reg)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// issuePin handles POST /pin/{namespace} — mint a fresh pin with no result.
func (h *Handler) issuePin(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r.PathValue("namespace"))
}

// pollPin handles POST /pin/{namespace}/{pin} — consume-or-wait.
//
// Three outcomes: the entry carries a result (returned and deleted, at most
// once); the entry exists but is still waiting (same pin, null result, no side
// effect); or the pin is unknown/expired, in which case a brand-new pin is
// issued instead of a 404. The silent reissue is load-bearing for existing
// clients — a poller holding a dead pin restarts the handoff with the fresh
// one — so do not turn it into an error.
func (h *Handler) pollPin(w http.ResponseWriter, r *http.Request) {
	ns := r.PathValue("namespace")
	h.reg.Polls.Add(1)

	e, ok := h.store.TakeIfPopulated(store.Key(ns, r.PathValue("pin")))
	if !ok {
		h.reg.PollReissues.Add(1)
		h.issue(w, ns)
		return
	}
	if e.Populated() {
		h.reg.PollHits.Add(1)
	}
	jsonResp(w, http.StatusOK, PinResponse{Pin: e.Pin, Result: e.Result})
}

// submitResult handles PUT /pin/{namespace}/{pin} — attach a result to a
// waiting pin. The payload must be a JSON object whose canonical serialized
// form fits the size ceiling. Rejections happen before any store mutation.
func (h *Handler) submitResult(w http.ResponseWriter, r *http.Request) {
	// Cap the raw read well above the ceiling so client whitespace can't
	// cause a false rejection; the real check is on the canonical form.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(4*h.maxResultBytes)))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.reg.RejectedTooLarge.Add(1)
			jsonErr(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		// Truncated upload or client disconnect — not a size rejection.
		h.reg.RejectedBadPayload.Add(1)
		jsonErr(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		h.reg.RejectedBadPayload.Add(1)
		jsonErr(w, http.StatusInternalServerError, "payload is not a JSON object")
		return
	}

	canonical, err := json.Marshal(payload)
	if err != nil {
		h.reg.RejectedBadPayload.Add(1)
		jsonErr(w, http.StatusInternalServerError, "payload could not be serialized")
		return
	}
	if len(canonical) > h.maxResultBytes {
		h.reg.RejectedTooLarge.Add(1)
		jsonErr(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	p := r.PathValue("pin")
	key := store.Key(r.PathValue("namespace"), p)
	if !h.store.Exists(key) {
		h.reg.RejectedNotFound.Add(1)
		jsonErr(w, http.StatusNotFound, "pin not found")
		return
	}

	h.store.Update(key, p, payload)
	h.reg.Submits.Add(1)
	textResp(w, http.StatusAccepted, "Thanks!")
}

// health handles GET /health.
func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	textResp(w, http.StatusOK, "All good.")
}

// issue mints a fresh pin in ns and writes the response for it. Shared by the
// issue endpoint and the poll fallback.
func (h *Handler) issue(w http.ResponseWriter, ns string) {
	p, err := h.pins.Issue(ns)
	if err != nil {
		if errors.Is(err, pin.ErrExhausted) {
			h.reg.IssueFailures.Add(1)
			jsonErr(w, http.StatusTooManyRequests, "could not find a free pin soon enough")
			return
		}
		jsonErr(w, http.StatusInternalServerError, "pin generation failed")
		return
	}
	h.reg.PinsIssued.Add(1)
	jsonResp(w, http.StatusOK, PinResponse{Pin: p})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func textResp(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	io.WriteString(w, body) //nolint:errcheck
}
