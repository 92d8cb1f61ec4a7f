package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-health-api/pkg/config"
)

func TestNewSMTPSenderValidatesConfig(t *testing.T) {
	_, err := NewSMTPSender(config.MailConfig{Host: "smtp.local", Port: 25})
	assert.Error(t, err)

	_, err = NewSMTPSender(config.MailConfig{From: "yte@school.local"})
	assert.Error(t, err)

	sender, err := NewSMTPSender(config.MailConfig{Host: "smtp.local", Port: 25, From: "yte@school.local"})
	require.NoError(t, err)
	assert.Error(t, sender.Send(context.Background(), "", "subject", "body"))
}

func TestNopSender(t *testing.T) {
	assert.NoError(t, NopSender{}.Send(context.Background(), "a@b.c", "s", "b"))
}
