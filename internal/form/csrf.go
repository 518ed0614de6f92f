// internal/form/csrf.go
//
// Stateless form tokens.
//
// Context
//   Forms embed a hidden `csrf_token` generated at render time.  The token
//   is bound to the tenant that rendered it and carries its own issue time:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, tenant|nonce|unixMicro) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  HMAC – keyed with the process secret; the tenant key is mixed in so
//      a token from one site is useless on another.
//
//   Verification checks the signature and the age window.  A token younger
//   than MinFill means the form was posted faster than a person types, which
//   is treated as a bot.  No server-side state, so any instance can verify.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/tenant"
)

const (
	nonceBytes = 16
	tokenBytes = nonceBytes + 8 + sha256.Size

	DefaultMaxAge  = 2 * time.Hour
	DefaultMinFill = 2 * time.Second
)

var (
	ErrBadToken     = errors.New("form token invalid")
	ErrTokenExpired = errors.New("form token expired")
	ErrTooFast      = errors.New("form submitted too quickly")
)

// Signer issues and verifies tokens.  Safe for concurrent use.
type Signer struct {
	secret  []byte
	MaxAge  time.Duration
	MinFill time.Duration

	now func() time.Time
}

// NewSigner returns a Signer keyed with secret.  An empty secret selects a
// random per-process key, which breaks tokens across restarts and
// instances.
func NewSigner(secret string) *Signer {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
		zap.L().Warn("form.secret not set, using a random per-process key")
	}
	return &Signer{secret: key, MaxAge: DefaultMaxAge, MinFill: DefaultMinFill, now: time.Now}
}

// Token creates a token for one render of a form on tenant k.
func (s *Signer) Token(k tenant.Key) (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(s.now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, s.sign(k, nonce, ts)...)
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify checks tok for tenant k.
func (s *Signer) Verify(k tenant.Key, tok string) error {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return ErrBadToken
	}
	nonce, ts, sig := raw[:nonceBytes], raw[nonceBytes:nonceBytes+8], raw[nonceBytes+8:]
	if !hmac.Equal(sig, s.sign(k, nonce, ts)) {
		return ErrBadToken
	}

	age := s.now().Sub(time.UnixMicro(int64(binary.BigEndian.Uint64(ts))))
	switch {
	case age < -time.Minute:
		return ErrBadToken // issued in the future beyond clock skew
	case age > s.MaxAge:
		return ErrTokenExpired
	case age < s.MinFill:
		return ErrTooFast
	}
	return nil
}

func (s *Signer) sign(k tenant.Key, nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(k))
	mac.Write([]byte{0})
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}
