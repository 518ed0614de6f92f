package form

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/sitehost/internal/content"
	"github.com/yanizio/sitehost/internal/contentctx"
	"github.com/yanizio/sitehost/internal/tenant"
)

const apex tenant.Key = "apex.apex-platform.io"

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestSigner() (*Signer, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	s := NewSigner("test-secret")
	s.now = c.now
	return s, c
}

/* ------------------------------------------------------------------------- */
/* tokens                                                                    */
/* ------------------------------------------------------------------------- */

func TestSigner(t *testing.T) {
	s, c := newTestSigner()
	tok, err := s.Token(apex)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Verify(apex, tok); !errors.Is(err, ErrTooFast) {
		t.Fatalf("immediate post: err = %v", err)
	}

	c.t = c.t.Add(5 * time.Second)
	if err := s.Verify(apex, tok); err != nil {
		t.Fatalf("valid token: %v", err)
	}
	if err := s.Verify("zen.apex-platform.io", tok); !errors.Is(err, ErrBadToken) {
		t.Fatalf("other tenant: err = %v", err)
	}
	tampered := "A" + tok[1:]
	if tok[0] == 'A' {
		tampered = "B" + tok[1:]
	}
	if err := s.Verify(apex, tampered); !errors.Is(err, ErrBadToken) {
		t.Fatalf("tampered: err = %v", err)
	}
	if err := s.Verify(apex, "not-a-token"); !errors.Is(err, ErrBadToken) {
		t.Fatalf("garbage: err = %v", err)
	}

	other := NewSigner("other-secret")
	other.now = c.now
	if err := other.Verify(apex, tok); !errors.Is(err, ErrBadToken) {
		t.Fatalf("other key: err = %v", err)
	}

	c.t = c.t.Add(3 * time.Hour)
	if err := s.Verify(apex, tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("old token: err = %v", err)
	}
}

/* ------------------------------------------------------------------------- */
/* request validation                                                        */
/* ------------------------------------------------------------------------- */

func TestParseRequest(t *testing.T) {
	cfg := &content.ScheduleForm{Enabled: true, Programs: []string{"Kids Karate", "Adult BJJ"}}

	req, _, err := ParseRequest(url.Values{
		"name":    {"  Sam Lee "},
		"email":   {"sam@example.com"},
		"program": {"Adult BJJ"},
	}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if req.Name != "Sam Lee" || req.Program != "Adult BJJ" {
		t.Fatalf("req = %+v", req)
	}

	_, fields, err := ParseRequest(url.Values{
		"email":   {"not-an-email"},
		"program": {"Tai Chi"},
	}, cfg)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v", err)
	}
	got := map[string]bool{}
	for _, f := range fields {
		got[f.Field] = true
	}
	for _, want := range []string{"name", "email", "program"} {
		if !got[want] {
			t.Errorf("field %q not reported in %v", want, fields)
		}
	}

	if _, _, err := ParseRequest(url.Values{"name": {"x"}, "email": {"x@y.z"}, "website": {"spam.biz"}}, cfg); !errors.Is(err, ErrSpam) {
		t.Fatalf("honeypot: err = %v", err)
	}

	// No configured list accepts any program.
	if _, _, err := ParseRequest(url.Values{"name": {"x"}, "email": {"x@y.z"}, "program": {"Anything"}}, nil); err != nil {
		t.Fatalf("open program list: %v", err)
	}
}

/* ------------------------------------------------------------------------- */
/* handler                                                                   */
/* ------------------------------------------------------------------------- */

type recorder struct {
	got     []Request
	webhook string
	err     error
}

func (r *recorder) Send(_ context.Context, _ tenant.Key, webhook string, req Request) error {
	r.got = append(r.got, req)
	r.webhook = webhook
	return r.err
}

func newFormRouter(h *Handler, doc *content.Document) http.Handler {
	load := func(context.Context, tenant.Key) (*content.Document, error) { return doc, nil }
	r := chi.NewRouter()
	r.Route("/sites/{"+contentctx.URLParam+"}", func(r chi.Router) {
		r.Use(contentctx.Provide(load, nil))
		r.Post("/schedule", h.Schedule)
	})
	return r
}

func post(h http.Handler, v url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sites/"+string(apex)+"/schedule", strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSchedule(t *testing.T) {
	doc := &content.Document{ScheduleForm: &content.ScheduleForm{Enabled: true, WebhookURL: "https://hooks.example.com/x"}}
	s, c := newTestSigner()
	tok, _ := s.Token(apex)
	c.t = c.t.Add(10 * time.Second)

	rec := &recorder{}
	router := newFormRouter(NewHandler(s, rec), doc)

	cases := []struct {
		name     string
		form     url.Values
		location string
		sent     int
	}{
		{
			name:     "valid",
			form:     url.Values{"csrf_token": {tok}, "return": {"/contact"}, "name": {"Sam"}, "email": {"sam@example.com"}},
			location: "/contact?schedule=sent#schedule",
			sent:     1,
		},
		{
			name:     "invalid email",
			form:     url.Values{"csrf_token": {tok}, "return": {"/"}, "name": {"Sam"}, "email": {"nope"}},
			location: "/?schedule=invalid#schedule",
			sent:     1,
		},
		{
			name:     "bad token looks like success",
			form:     url.Values{"csrf_token": {"forged"}, "name": {"Bot"}, "email": {"b@o.t"}},
			location: "/?schedule=sent#schedule",
			sent:     1,
		},
		{
			name:     "open redirect refused",
			form:     url.Values{"csrf_token": {tok}, "return": {"//evil.example"}, "name": {"Sam"}, "email": {"sam@example.com"}},
			location: "/?schedule=sent#schedule",
			sent:     2,
		},
	}
	for _, tc := range cases {
		rr := post(router, tc.form)
		if rr.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d", tc.name, rr.Code)
			continue
		}
		if loc := rr.Header().Get("Location"); loc != tc.location {
			t.Errorf("%s: location = %q, want %q", tc.name, loc, tc.location)
		}
		if len(rec.got) != tc.sent {
			t.Errorf("%s: sent = %d, want %d", tc.name, len(rec.got), tc.sent)
		}
	}
	if rec.webhook != "https://hooks.example.com/x" {
		t.Fatalf("webhook = %q", rec.webhook)
	}

	rec.err = ErrDelivery
	rr := post(router, url.Values{"csrf_token": {tok}, "name": {"Sam"}, "email": {"sam@example.com"}})
	if loc := rr.Header().Get("Location"); loc != "/?schedule=failed#schedule" {
		t.Fatalf("failed delivery: location = %q", loc)
	}
}

func TestSchedule_Disabled(t *testing.T) {
	s, _ := newTestSigner()
	router := newFormRouter(NewHandler(s, &recorder{}), &content.Document{})
	if rr := post(router, url.Values{}); rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}

/* ------------------------------------------------------------------------- */
/* webhook                                                                   */
/* ------------------------------------------------------------------------- */

func TestWebhook(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.Name == "refuse" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook()
	wh.client.RetryMax = 0
	ctx := context.Background()

	if err := wh.Send(ctx, apex, srv.URL, Request{Name: "Sam", Email: "sam@example.com"}); err != nil {
		t.Fatal(err)
	}
	if got.Tenant != string(apex) || got.Form != "schedule" || got.Email != "sam@example.com" {
		t.Fatalf("payload = %+v", got)
	}

	if err := wh.Send(ctx, apex, srv.URL, Request{Name: "refuse"}); !errors.Is(err, ErrDelivery) {
		t.Fatalf("refused: err = %v", err)
	}
	if err := wh.Send(ctx, apex, "ftp://files.example.com", Request{}); !errors.Is(err, ErrDelivery) {
		t.Fatalf("bad scheme: err = %v", err)
	}
	if err := wh.Send(ctx, apex, "", Request{Name: "Sam"}); err != nil {
		t.Fatalf("no webhook: %v", err)
	}
}
