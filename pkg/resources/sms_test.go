package resources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeCreator struct {
	params *twilioApi.CreateMessageParams
	sid    *string
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}

	return &twilioApi.ApiV2010Message{Sid: f.sid}, nil
}

func TestTwilioSender_Send(t *testing.T) {
	t.Parallel()

	t.Run("missing credentials fail on send", func(t *testing.T) {
		t.Parallel()

		sender := NewTwilioSender(context.Background(), "", "", "")
		_, err := sender.Send(context.Background(), "+15550100", "hello")
		require.ErrorIs(t, err, ErrSenderNotConfigured)
	})

	t.Run("submits to, from and body", func(t *testing.T) {
		t.Parallel()

		sid := "SM0001"
		creator := &fakeCreator{sid: &sid}
		sender := &TwilioSender{api: creator, from: "+15550199"}

		got, err := sender.Send(context.Background(), "+15550100", "hello")
		require.NoError(t, err)

		assert.Equal(t, "SM0001", got)
		assert.Equal(t, "+15550100", *creator.params.To)
		assert.Equal(t, "+15550199", *creator.params.From)
		assert.Equal(t, "hello", *creator.params.Body)
	})

	t.Run("provider error", func(t *testing.T) {
		t.Parallel()

		sender := &TwilioSender{api: &fakeCreator{err: errors.New("21211 invalid To")}, from: "+15550199"}

		_, err := sender.Send(context.Background(), "x", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "21211")
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		creator := &fakeCreator{}
		sender := &TwilioSender{api: creator, from: "+15550199"}

		_, err := sender.Send(ctx, "+15550100", "hello")
		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, creator.params)
	})
}
