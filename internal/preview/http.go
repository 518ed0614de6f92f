package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/content"
	"github.com/yanizio/sitehost/internal/contentctx"
	"github.com/yanizio/sitehost/internal/metrics"
)

const (
	maxMessageBytes = 4 << 20
	keepAlive       = 25 * time.Second
	eventBuffer     = 16
)

// RenderFunc renders the body of pageID from store.  Content events carry
// its output.
type RenderFunc func(ctx context.Context, store *contentctx.Store, pageID string) (string, error)

// Handler serves the preview endpoints of a tenant route tree.
type Handler struct {
	hub    *Hub
	render RenderFunc
}

func NewHandler(hub *Hub, render RenderFunc) *Handler {
	return &Handler{hub: hub, render: render}
}

// Routes mounts the endpoints on a tenant-scoped router.
func (h *Handler) Routes(r chi.Router) {
	r.Options("/_preview/messages", h.Preflight)
	r.Post("/_preview/messages", h.Messages)
	r.Get("/_preview/events", h.Events)
}

func allowAnyOrigin(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// Preflight answers CORS preflight for Messages.
func (h *Handler) Preflight(w http.ResponseWriter, _ *http.Request) {
	allowAnyOrigin(w)
	w.WriteHeader(http.StatusNoContent)
}

// Messages accepts one preview message for the session named by the
// session query parameter.  202 when recognised and relayed, 204 when
// ignored, 404 when no instance holds the session.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	allowAnyOrigin(w)

	id := r.URL.Query().Get("session")
	if id == "" {
		http.Error(w, "missing session", http.StatusBadRequest)
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err != nil {
		http.Error(w, "message too large", http.StatusRequestEntityTooLarge)
		return
	}

	ok, err := h.hub.Send(r.Context(), contentctx.Key(r), id, raw)
	switch {
	case errors.Is(err, ErrNoSession):
		http.Error(w, "unknown preview session", http.StatusNotFound)
	case err != nil:
		http.Error(w, "preview relay unavailable", http.StatusServiceUnavailable)
	case !ok:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

// Events streams a preview session as Server-Sent Events.  Query params:
// page (page id, default home) and section (fragment to scroll to once
// mounted).  The first event, "session", carries the id the page posts
// its messages under.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	base := contentctx.FromContext(r.Context())
	if base == nil {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	key := contentctx.Key(r)
	pageID := r.URL.Query().Get("page")
	if pageID == "" {
		pageID = "home"
	}

	sub, err := h.hub.Open(ctx, key)
	if err != nil {
		zap.L().Warn("preview subscribe failed", zap.String("tenant", key.String()), zap.Error(err))
		http.Error(w, "preview relay unavailable", http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	// the server's write timeout would cut the stream
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	store := base.Fork()
	sink := &session{ctx: ctx, events: make(chan event, eventBuffer)}
	sink.render = func() (string, error) { return h.render(ctx, store, pageID) }
	ch := NewChannel(store, pageID, sink)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := writeEvent(w, "session", sub.ID); err != nil {
		return
	}
	flusher.Flush()

	metrics.PreviewSessions.Inc()
	defer metrics.PreviewSessions.Dec()
	zap.L().Debug("preview session open", zap.String("tenant", key.String()), zap.String("page", pageID), zap.String("session", sub.ID))

	go ch.Run(ctx, sub.Inbox)
	ch.Mount(ctx, r.URL.Query().Get("section"))

	tick := time.NewTicker(keepAlive)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sink.events:
			if err := writeEvent(w, ev.name, ev.data); err != nil {
				return
			}
		case <-tick.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}

type event struct {
	name string
	data string
}

// session is the Sink of one event stream.
type session struct {
	ctx    context.Context
	events chan event
	render func() (string, error)
}

func (s *session) send(ev event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

func (s *session) ContentReplaced(*content.Document) {
	body, err := s.render()
	if err != nil {
		zap.L().Warn("preview render failed", zap.Error(err))
		return
	}
	s.send(event{name: "content", data: body})
}

func (s *session) ScrollTo(id string) { s.send(event{name: "scroll", data: id}) }

func writeEvent(w io.Writer, name, data string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\n", name)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
