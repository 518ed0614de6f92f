// internal/form/handler.go
//
// POST /schedule on the tenant tree.
//
// Workflow
//   1. Parse the body (64 KiB cap) and verify the CSRF token for the tenant.
//   2. Validate the request against the tenant's schedule form.
//   3. Hand it to the Sender.
//   4. 303 back to the page the form was on, with ?schedule=<status>#schedule
//      so the section can show the outcome.
//
// Status values: sent, invalid, expired, failed.  Bots (honeypot, too fast,
// bad token) are answered exactly like a success so they learn nothing.

package form

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/contentctx"
)

const maxForm = 64 << 10

// Outcome values carried back in the schedule query parameter.
const (
	StatusSent    = "sent"
	StatusInvalid = "invalid"
	StatusExpired = "expired"
	StatusFailed  = "failed"
)

// Handler serves form posts.
type Handler struct {
	signer *Signer
	sender Sender
}

func NewHandler(signer *Signer, sender Sender) *Handler {
	return &Handler{signer: signer, sender: sender}
}

// Token issues a token for a render on the current tenant.  Errors leave
// the field empty, which fails verification on post.
func (h *Handler) Token(r *http.Request) string {
	tok, err := h.signer.Token(contentctx.Key(r))
	if err != nil {
		zap.L().Warn("form token", zap.Error(err))
	}
	return tok
}

// Schedule handles the trial-class form.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	key := contentctx.Key(r)
	store := contentctx.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxForm)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	back := returnPath(r.PostForm.Get("return"))

	cfg := store.ScheduleForm()
	if cfg == nil || !cfg.Enabled {
		http.NotFound(w, r)
		return
	}

	switch err := h.signer.Verify(key, r.PostForm.Get("csrf_token")); {
	case errors.Is(err, ErrTokenExpired):
		redirect(w, r, back, StatusExpired)
		return
	case err != nil:
		zap.L().Info("schedule post dropped", zap.String("tenant", key.String()), zap.Error(err))
		redirect(w, r, back, StatusSent)
		return
	}

	req, fields, err := ParseRequest(r.PostForm, cfg)
	switch {
	case errors.Is(err, ErrSpam):
		zap.L().Info("schedule post dropped", zap.String("tenant", key.String()), zap.Error(err))
		redirect(w, r, back, StatusSent)
		return
	case err != nil:
		zap.L().Debug("schedule post invalid", zap.String("tenant", key.String()), zap.Any("fields", fields))
		redirect(w, r, back, StatusInvalid)
		return
	}

	if err := h.sender.Send(r.Context(), key, cfg.WebhookURL, req); err != nil {
		redirect(w, r, back, StatusFailed)
		return
	}
	redirect(w, r, back, StatusSent)
}

// returnPath keeps only same-site absolute paths.
func returnPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsAny(p, "\\?#") {
		return "/"
	}
	return p
}

func redirect(w http.ResponseWriter, r *http.Request, path, status string) {
	http.Redirect(w, r, path+"?schedule="+url.QueryEscape(status)+"#schedule", http.StatusSeeOther)
}
