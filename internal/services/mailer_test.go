package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("noreply@okoagari.app", "a@x.com", "Verification Code", "Your verification code is 123456.")

	parts := strings.SplitN(msg, "\r\n\r\n", 2)
	assert.Len(t, parts, 2)
	assert.Contains(t, parts[0], "From: noreply@okoagari.app")
	assert.Contains(t, parts[0], "To: a@x.com")
	assert.Contains(t, parts[0], "Subject: Verification Code")
	assert.Contains(t, parts[0], "Content-Type: text/plain; charset=UTF-8")
	assert.Equal(t, "Your verification code is 123456.", parts[1])
}

func TestMailerSend_NotConfigured(t *testing.T) {
	mailer := NewMailer(MailerConfig{From: "noreply@okoagari.app"})

	err := mailer.Send("a@x.com", "Verification Code", "body")
	assert.ErrorIs(t, err, ErrMailerNotConfigured)
}
