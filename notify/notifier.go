// Package notify delivers short text messages to staff phones.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
	ChannelLog      = "log"
)

// Notifier sends body to the phone number and reports the channel used.
type Notifier interface {
	Send(ctx context.Context, phone, body string) (channel string, err error)
}

// TwilioNotifier prefers WhatsApp for E.164 numbers and falls back to SMS.
type TwilioNotifier struct {
	client       *twilio.RestClient
	whatsAppFrom string
	smsFrom      string
	log          *zap.Logger
}

func NewTwilioNotifier(accountSID, authToken, whatsAppFrom, smsFrom string, log *zap.Logger) *TwilioNotifier {
	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		whatsAppFrom: whatsAppFrom,
		smsFrom:      smsFrom,
		log:          log,
	}
}

func (n *TwilioNotifier) Send(_ context.Context, phone, body string) (string, error) {
	channel := ChannelSMS
	to := phone
	from := n.smsFrom

	// Use WhatsApp if phone is in E.164 format and a sender is configured
	if strings.HasPrefix(phone, "+") && n.whatsAppFrom != "" {
		channel = ChannelWhatsApp
		to = "whatsapp:" + phone
		from = "whatsapp:" + n.whatsAppFrom
	}
	if from == "" {
		return channel, fmt.Errorf("no twilio sender configured for %s", channel)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return channel, fmt.Errorf("twilio create message: %w", err)
	}
	if resp.Sid != nil {
		n.log.Debug("message sent", zap.String("channel", channel), zap.String("sid", *resp.Sid))
	}
	return channel, nil
}

// LogNotifier writes messages to the log. Used when Twilio is not configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, phone, body string) (string, error) {
	n.log.Info("notification", zap.String("to", phone), zap.String("body", body))
	return ChannelLog, nil
}
