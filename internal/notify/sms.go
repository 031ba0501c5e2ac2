package notify

import (
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender is the opt-in secondary reminder channel for users who
// registered a phone number.
type SMSSender interface {
	Send(to, body string) error
}

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSenderFromEnv returns a nil SMSSender when the Twilio
// credentials are not configured; the dispatcher then simply skips the
// SMS channel.
func NewTwilioSenderFromEnv() SMSSender {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_FROM_NUMBER")
	if sid == "" || token == "" || from == "" {
		return nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: sid,
		Password: token,
	})
	return &TwilioSender{client: client, from: from}
}

func (t *TwilioSender) Send(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	_, err := t.client.Api.CreateMessage(params)
	return err
}
