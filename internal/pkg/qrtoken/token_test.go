package qrtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-attendance-secret"

func windowStart(g *Generator, window int64) time.Time {
	return time.UnixMilli(window * g.Interval().Milliseconds())
}

func TestGenerator_TokenFor_MatchesHMAC(t *testing.T) {
	g := NewGenerator(testSecret)

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte("attendance:5843210"))
	expected := hex.EncodeToString(mac.Sum(nil))[:32]

	assert.Equal(t, expected, g.TokenFor(5843210))
	assert.Len(t, g.TokenFor(1), 32)
}

func TestGenerator_TokenFor_Deterministic(t *testing.T) {
	g1 := NewGenerator(testSecret)
	g2 := NewGenerator(testSecret)

	assert.Equal(t, g1.TokenFor(42), g2.TokenFor(42))
	assert.NotEqual(t, g1.TokenFor(42), g1.TokenFor(43))
	assert.NotEqual(t, g1.TokenFor(42), NewGenerator("other-secret").TokenFor(42))
}

func TestGenerator_GenerateAt_Window(t *testing.T) {
	g := NewGenerator(testSecret)
	// 2 minutes and 30.5 seconds into window 1000
	at := windowStart(g, 1000).Add(150*time.Second + 500*time.Millisecond)

	tok := g.GenerateAt(at)

	assert.Equal(t, int64(1000), tok.WindowIndex)
	assert.Equal(t, g.TokenFor(1000), tok.Value)
	assert.Equal(t, int64(1001*300000), tok.ExpiresAt)
	assert.Equal(t, int64(149), tok.TimeLeft)
	assert.Equal(t, int64(300), tok.RefreshInterval)
}

func TestGenerator_GenerateAt_WindowBoundary(t *testing.T) {
	g := NewGenerator(testSecret)
	start := windowStart(g, 77)

	assert.Equal(t, int64(77), g.GenerateAt(start).WindowIndex)
	assert.Equal(t, int64(300), g.GenerateAt(start).TimeLeft)
	assert.Equal(t, int64(76), g.GenerateAt(start.Add(-time.Millisecond)).WindowIndex)
}

func TestGenerator_ValidateAt_DualWindow(t *testing.T) {
	g := NewGenerator(testSecret)
	const w = int64(5000)
	token := g.TokenFor(w)

	tests := []struct {
		name   string
		window int64
		valid  bool
	}{
		{"same window", w, true},
		{"next window", w + 1, true},
		{"two windows later", w + 2, false},
		{"previous window", w - 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := windowStart(g, tt.window).Add(time.Minute)
			assert.Equal(t, tt.valid, g.ValidateAt(token, at))
		})
	}
}

func TestGenerator_ValidateAt_RejectsMalformed(t *testing.T) {
	g := NewGenerator(testSecret)
	now := windowStart(g, 10)
	token := g.TokenFor(10)

	assert.False(t, g.ValidateAt("", now))
	assert.False(t, g.ValidateAt(token[:31], now))
	assert.False(t, g.ValidateAt(token+"0", now))
	assert.False(t, g.ValidateAt("00000000000000000000000000000000", now))
}

func TestGenerator_Validate_UsesClock(t *testing.T) {
	current := time.Date(2025, 3, 10, 8, 5, 0, 0, time.UTC)
	g := NewGenerator(testSecret, WithClock(func() time.Time { return current }))

	tok := g.Generate()
	require.True(t, g.Validate(tok.Value))

	current = current.Add(5 * time.Minute)
	assert.True(t, g.Validate(tok.Value))

	current = current.Add(5 * time.Minute)
	assert.False(t, g.Validate(tok.Value))
}

func TestGenerator_WithInterval(t *testing.T) {
	g := NewGenerator(testSecret, WithInterval(30*time.Second))
	at := time.UnixMilli(90_000)

	tok := g.GenerateAt(at)

	assert.Equal(t, int64(3), tok.WindowIndex)
	assert.Equal(t, int64(30), tok.RefreshInterval)
	assert.Equal(t, int64(30), tok.TimeLeft)
}
