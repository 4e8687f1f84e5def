package resources

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrSenderNotConfigured = errors.New("sms sender is not configured")

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends text messages through the Twilio Messages API.
type TwilioSender struct {
	api  messageCreator
	from string
}

// NewTwilioSender never fails: missing credentials surface on Send.
func NewTwilioSender(ctx context.Context, accountSid string, authToken string, from string) *TwilioSender {
	if accountSid == "" || authToken == "" || from == "" {
		log.Ctx(ctx).Warn().Str("stage", "startup").Str("component", "sms").
			Msg("twilio credentials are incomplete, messages will fail")

		return &TwilioSender{from: from}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioSender{api: client.Api, from: from}
}

func (s *TwilioSender) Send(ctx context.Context, to string, body string) (string, error) {
	if s.api == nil {
		return "", ErrSenderNotConfigured
	}

	err := ctx.Err()
	if err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	message, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to create message: %w", err)
	}

	if message.Sid == nil {
		return "", nil
	}

	return *message.Sid, nil
}
