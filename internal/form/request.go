// internal/form/request.go
//
// The trial-class request a visitor posts from the schedule section.
//
// Fields are trimmed, validated with go-playground/validator, and checked
// against the tenant's configured program list.  The hidden `website` field
// is a honeypot; people never see it, so any value marks a bot.

package form

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/sitehost/internal/content"
)

var (
	ErrInvalid = errors.New("form input invalid")
	ErrSpam    = errors.New("form flagged as spam")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Request is one trial-class booking.
type Request struct {
	Name    string `json:"name"              validate:"required,max=100"`
	Email   string `json:"email"             validate:"required,email,max=254"`
	Phone   string `json:"phone,omitempty"   validate:"omitempty,max=40"`
	Program string `json:"program,omitempty" validate:"omitempty,max=100"`
	Message string `json:"message,omitempty" validate:"omitempty,max=2000"`
}

// FieldError names one rejected field.
type FieldError struct {
	Field string
	Rule  string
}

// ParseRequest extracts and validates a Request from posted values.  cfg
// may be nil.  A validation failure wraps ErrInvalid and is returned with
// the offending fields.
func ParseRequest(v url.Values, cfg *content.ScheduleForm) (Request, []FieldError, error) {
	if strings.TrimSpace(v.Get("website")) != "" {
		return Request{}, nil, ErrSpam
	}
	req := Request{
		Name:    strings.TrimSpace(v.Get("name")),
		Email:   strings.TrimSpace(v.Get("email")),
		Phone:   strings.TrimSpace(v.Get("phone")),
		Program: strings.TrimSpace(v.Get("program")),
		Message: strings.TrimSpace(v.Get("message")),
	}

	var fields []FieldError
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return req, nil, err
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: strings.ToLower(fe.Field()), Rule: fe.Tag()})
		}
	}
	if req.Program != "" && cfg != nil && len(cfg.Programs) > 0 && !contains(cfg.Programs, req.Program) {
		fields = append(fields, FieldError{Field: "program", Rule: "oneof"})
	}
	if len(fields) > 0 {
		return req, fields, ErrInvalid
	}
	return req, nil, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
