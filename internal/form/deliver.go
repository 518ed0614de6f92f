// internal/form/deliver.go
//
// Webhook delivery for accepted requests.
//
// Context
//   Each tenant may name a webhook in scheduleForm.webhookUrl (a CRM, Zapier,
//   or similar).  Accepted requests are POSTed there as JSON with retries.
//   A tenant without a webhook still gets the request in the log so nothing
//   is lost silently.
//
// Notes
//   •  Retries use go-retryablehttp: 3 attempts, exponential back-off, 10 s
//      per attempt.
//   •  Only http and https targets are accepted.

package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/tenant"
)

var ErrDelivery = errors.New("form delivery failed")

// Sender delivers an accepted request for tenant k to webhook.  An empty
// webhook means no external target.
type Sender interface {
	Send(ctx context.Context, k tenant.Key, webhook string, req Request) error
}

// Payload is the JSON body POSTed to a webhook.
type Payload struct {
	Tenant      string    `json:"tenant"`
	Form        string    `json:"form"`
	SubmittedAt time.Time `json:"submittedAt"`
	Request
}

// Webhook is the production Sender.
type Webhook struct {
	client *retryablehttp.Client
}

// NewWebhook returns a Sender with the default retry policy.
func NewWebhook() *Webhook {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = 10 * time.Second
	c.Logger = zapLeveled{zap.S().Named("webhook")}
	return &Webhook{client: c}
}

func (w *Webhook) Send(ctx context.Context, k tenant.Key, webhook string, req Request) error {
	if webhook == "" {
		zap.L().Info("schedule request received, no webhook configured",
			zap.String("tenant", k.String()),
			zap.String("name", req.Name),
			zap.String("email", req.Email),
			zap.String("program", req.Program))
		return nil
	}
	u, err := url.Parse(webhook)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		zap.L().Warn("schedule webhook rejected", zap.String("tenant", k.String()), zap.String("url", webhook))
		return ErrDelivery
	}

	body, err := json.Marshal(Payload{Tenant: string(k), Form: "schedule", SubmittedAt: time.Now().UTC(), Request: req})
	if err != nil {
		return err
	}
	hreq, err := retryablehttp.NewRequestWithContext(ctx, "POST", u.String(), body)
	if err != nil {
		return err
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(hreq)
	if err != nil {
		zap.L().Error("schedule webhook failed", zap.String("tenant", k.String()), zap.Error(err))
		return ErrDelivery
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Error("schedule webhook refused",
			zap.String("tenant", k.String()), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: status %d", ErrDelivery, resp.StatusCode)
	}
	zap.L().Info("schedule request delivered", zap.String("tenant", k.String()))
	return nil
}

// zapLeveled adapts a sugared logger to retryablehttp.LeveledLogger.
type zapLeveled struct{ s *zap.SugaredLogger }

func (l zapLeveled) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l zapLeveled) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l zapLeveled) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l zapLeveled) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
