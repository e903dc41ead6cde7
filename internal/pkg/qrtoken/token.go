package qrtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"time"
)

const (
	// DefaultInterval is the lifetime of a single token window.
	DefaultInterval = 5 * time.Minute

	tokenLength = 32
	tokenPrefix = "attendance:"
)

// Token is the credential shown on the QR display for one window.
type Token struct {
	Value       string
	WindowIndex int64
	// ExpiresAt is the end of the window in epoch milliseconds.
	ExpiresAt int64
	// TimeLeft is the number of whole seconds until ExpiresAt.
	TimeLeft int64
	// RefreshInterval is the window length in seconds.
	RefreshInterval int64
}

// Generator derives rotating attendance tokens from a shared secret.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	secret   []byte
	interval time.Duration
	now      func() time.Time
}

type Option func(*Generator)

// WithClock overrides the wall clock used by Generate and Validate.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithInterval overrides the default five minute window.
func WithInterval(interval time.Duration) Option {
	return func(g *Generator) {
		if interval > 0 {
			g.interval = interval
		}
	}
}

func NewGenerator(secret string, opts ...Option) *Generator {
	g := &Generator{
		secret:   []byte(secret),
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Interval() time.Duration {
	return g.interval
}

// WindowIndex returns floor(epochMillis / intervalMillis) for t.
func (g *Generator) WindowIndex(t time.Time) int64 {
	return floorDiv(t.UnixMilli(), g.interval.Milliseconds())
}

// TokenFor returns the token value for a window index.
func (g *Generator) TokenFor(windowIndex int64) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(tokenPrefix + strconv.FormatInt(windowIndex, 10)))
	return hex.EncodeToString(mac.Sum(nil))[:tokenLength]
}

// Generate returns the token for the current window.
func (g *Generator) Generate() Token {
	return g.GenerateAt(g.now())
}

func (g *Generator) GenerateAt(t time.Time) Token {
	intervalMillis := g.interval.Milliseconds()
	window := g.WindowIndex(t)
	expiresAt := (window + 1) * intervalMillis

	return Token{
		Value:           g.TokenFor(window),
		WindowIndex:     window,
		ExpiresAt:       expiresAt,
		TimeLeft:        floorDiv(expiresAt-t.UnixMilli(), 1000),
		RefreshInterval: int64(g.interval / time.Second),
	}
}

// Validate reports whether token matches the current or the previous window.
func (g *Generator) Validate(token string) bool {
	return g.ValidateAt(token, g.now())
}

func (g *Generator) ValidateAt(token string, t time.Time) bool {
	if len(token) != tokenLength {
		return false
	}
	window := g.WindowIndex(t)
	current := subtle.ConstantTimeCompare([]byte(token), []byte(g.TokenFor(window)))
	previous := subtle.ConstantTimeCompare([]byte(token), []byte(g.TokenFor(window-1)))
	return current|previous == 1
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
