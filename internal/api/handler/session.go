package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"github.com/mcoot/spyword/internal/api/response"
	"github.com/mcoot/spyword/internal/engine"
)

const qrSize = 320

// SessionReader looks up live sessions
type SessionReader interface {
	SessionSummary(ctx context.Context, code string) (*engine.SessionView, error)
	Stats(ctx context.Context) (engine.Stats, error)
}

// SessionHandler handles the public session endpoints
type SessionHandler struct {
	sessions      SessionReader
	publicBaseURL string
}

// NewSessionHandler creates a new session handler. When publicBaseURL is
// empty, join links are built from the incoming request.
func NewSessionHandler(sessions SessionReader, publicBaseURL string) *SessionHandler {
	return &SessionHandler{
		sessions:      sessions,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Health handles GET /api/v1/health
func (h *SessionHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sessions.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Health{
		Status:      "ok",
		Sessions:    stats.Sessions,
		Connections: stats.Connections,
	})
}

// Get handles GET /api/v1/sessions/{code}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.SessionSummary(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionSummaryFromView(view, h.joinURL(r, string(view.Code))))
}

// QR handles GET /api/v1/sessions/{code}/qr.png
func (h *SessionHandler) QR(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.SessionSummary(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}

	png, err := qrcode.Encode(h.joinURL(r, string(view.Code)), qrcode.Medium, qrSize)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.PNG(w, png)
}

func (h *SessionHandler) joinURL(r *http.Request, code string) string {
	base := h.publicBaseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/join/" + code
}
