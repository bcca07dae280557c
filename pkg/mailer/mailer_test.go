package mailer

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestMailer(sent *[]sentMail, err error) *Mailer {
	m := New(Config{Host: "mailpit", Port: "1025", From: "alerts@agrosynth.local", FromName: "AgroSynth"})
	m.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		*sent = append(*sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return err
	}
	return m
}

func TestSendSubscriptionConfirmation(t *testing.T) {
	var sent []sentMail
	m := newTestMailer(&sent, nil)

	require.NoError(t, m.SendSubscriptionConfirmation("farmer@example.com"))
	require.Len(t, sent, 1)
	assert.Equal(t, "mailpit:1025", sent[0].addr)
	assert.Equal(t, "alerts@agrosynth.local", sent[0].from)
	assert.Equal(t, []string{"farmer@example.com"}, sent[0].to)
	assert.Contains(t, sent[0].msg, "Subject: AgroSynth - You're subscribed to weather alerts\r\n")
	assert.Contains(t, sent[0].msg, "From: AgroSynth <alerts@agrosynth.local>\r\n")
	assert.Contains(t, sent[0].msg, "farmer@example.com")
}

func TestSendNewAlert_EscapesUserContent(t *testing.T) {
	var sent []sentMail
	m := newTestMailer(&sent, nil)

	err := m.SendNewAlert("farmer@example.com", AlertSummary{
		Name:        "Flood Watch",
		Description: "<script>alert(1)</script>",
		WeatherType: "Flood",
		Location:    "Red Hook, Brooklyn",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].msg, "Subject: AgroSynth - Flood Watch near Red Hook, Brooklyn")
	assert.Contains(t, sent[0].msg, "&lt;script&gt;")
	assert.NotContains(t, sent[0].msg, "<script>")
	assert.Contains(t, sent[0].msg, "Jun 1, 2025 12:00 UTC")
	assert.NotContains(t, sent[0].msg, "<img")
}

func TestSend_WrapsTransportError(t *testing.T) {
	var sent []sentMail
	m := newTestMailer(&sent, errors.New("connection refused"))

	err := m.SendSubscriptionConfirmation("farmer@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
