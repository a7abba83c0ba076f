package mail

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperDigest/internal/config"
)

func fixedClock() time.Time {
	return time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
}

func fullConfig() config.EmailConfig {
	return config.EmailConfig{
		Host:      "127.0.0.1",
		Port:      1,
		Sender:    "digest@example.org",
		Password:  "app-password",
		Recipient: "reader@example.org",
	}
}

func TestSendFailsFastOnMissingConfig(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*config.EmailConfig){
		"sender and password":    func(c *config.EmailConfig) { c.Sender, c.Password = "", "" },
		"sender and recipient":   func(c *config.EmailConfig) { c.Sender, c.Recipient = "", "" },
		"password and recipient": func(c *config.EmailConfig) { c.Password, c.Recipient = "", "" },
		"recipient only":         func(c *config.EmailConfig) { c.Recipient = " " },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := fullConfig()
			mutate(&cfg)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err := NewNotifier(cfg, fixedClock, nil).Send(ctx, "<html></html>")
			require.ErrorIs(t, err, ErrMissingEmailConfig)
		})
	}
}

func TestSendPropagatesTransportError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := NewNotifier(fullConfig(), fixedClock, nil).Send(ctx, "<html></html>")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingEmailConfig)
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	n := NewNotifier(fullConfig(), fixedClock, nil)
	assert.Equal(t, "AI Papers Daily Summary - 2026-10-14", n.Subject())

	msg, err := n.buildMessage(`<html><head><style>.x{}</style></head><body><h1>Digest</h1><p>Summary X</p></body></html>`)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: AI Papers Daily Summary - 2026-10-14")
	assert.Contains(t, raw, "digest@example.org")
	assert.Contains(t, raw, "reader@example.org")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "Summary X")
}

func TestPlainFallback(t *testing.T) {
	t.Parallel()

	text := plainFallback("<html><head><style>body{}</style></head><body>\n<h1>Title</h1>\n\n<p>a &amp; b</p></body></html>")
	assert.Equal(t, "Title\na & b", text)
}
