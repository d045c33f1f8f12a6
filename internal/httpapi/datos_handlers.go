package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/empresa-minera/monitor/internal/obs"
	"github.com/empresa-minera/monitor/internal/readings"
)

type insertReadingRequest struct {
	Weight float64 `json:"peso"`
}

func (a *API) handleReadings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listReadings(w, r)
	case http.MethodPost:
		a.insertReading(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listReadings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, r, http.StatusBadRequest, "limit inválido")
			return
		}
		limit = v
	}
	items, err := a.readings.Latest(r.Context(), limit)
	if err != nil {
		handleReadingsError(w, r, err)
		return
	}
	if items == nil {
		items = []readings.Reading{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleLastReading(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	last, err := a.readings.Last(r.Context())
	if err != nil {
		handleReadingsError(w, r, err)
		return
	}
	if last == nil {
		// The dashboard expects an empty object, not null, before the first
		// sample arrives.
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, last)
}

func (a *API) insertReading(w http.ResponseWriter, r *http.Request) {
	var req insertReadingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	reading, err := a.readings.Insert(r.Context(), req.Weight)
	if err != nil {
		handleReadingsError(w, r, err)
		return
	}
	obs.ObserveReadingInserted()
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      reading.ID,
		"mensaje": "Dato insertado correctamente",
	})
}

// handleReadingStream pushes each accepted sample to the client over SSE.
func (a *API) handleReadingStream(w http.ResponseWriter, r *http.Request) {
	if a.stream == nil {
		writeError(w, r, http.StatusServiceUnavailable, "streaming deshabilitado")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming no soportado")
		return
	}

	// The server's WriteTimeout would sever the stream mid-subscription;
	// lift the deadline for this response only.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.stream.Subscribe(ctx)

	// Initial comment establishes the stream.
	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}
}

func handleReadingsError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, readings.ErrInvalidWeight):
		writeError(w, r, http.StatusBadRequest, "peso inválido")
	case errors.Is(err, readings.ErrUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "Servicio no disponible")
	default:
		obs.LogRequest(map[string]any{
			"level":      "error",
			"msg":        "readings operation failed",
			"request_id": RequestIDFromContext(r.Context()),
			"error":      err.Error(),
		})
		writeError(w, r, http.StatusInternalServerError, "Error interno del servidor")
	}
}
