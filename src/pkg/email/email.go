/*
Package email sends report e-mails through Amazon SES, Mailgun or SendGrid.

Credentials are read from the environment:
  - SES: AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_REGION
  - Mailgun: MAILGUN_DOMAIN, MAILGUN_API_KEY
  - SendGrid: SENDGRID_API_KEY
*/
package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

type Provider string

const (
	ProviderSES      Provider = "ses"
	ProviderMailgun  Provider = "mailgun"
	ProviderSendGrid Provider = "sendgrid"
)

const sendTimeout = 60 * time.Second

// Attachment is a file sent along with the message.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Message is what every provider receives.
type Message struct {
	Sender      string
	Recipients  []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

type sender interface {
	send(ctx context.Context, message Message) (id string, err error)
}

/*
SendMessage sends one message with the chosen provider.

When sendEmails is nil or false the message is only logged; this is how dry
runs and disabled environments work.
*/
func SendMessage(
	provider Provider, sendEmails *bool, senderAddress string, recipients []string,
	subject string, text string, html string, attachments []Attachment,
) (e *xerr.Error) {
	message := Message{
		Sender:      senderAddress,
		Recipients:  cleanRecipients(recipients),
		Subject:     subject,
		Text:        text,
		HTML:        html,
		Attachments: attachments,
	}

	client, e := newSender(provider)
	if e != nil {
		return e
	}
	if message.Sender == "" || len(message.Recipients) == 0 {
		e = xerr.NewError(fmt.Errorf("sender and at least one recipient are required"), "send email", subject)
		return e
	}

	if sendEmails == nil || !*sendEmails {
		tl.Log(
			tl.Notice, palette.Yellow, "Sending is %s, would send '%s' to %s with %s attachments",
			"disabled", subject, strings.Join(message.Recipients, ", "), fmt.Sprint(len(attachments)),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	id, err := client.send(ctx, message)
	if err != nil {
		e = xerr.NewError(err, "send email via "+string(provider), subject)
		return e
	}

	tl.Log(
		tl.Info, palette.Green, "Sent '%s' to %s via %s (id '%s')",
		subject, strings.Join(message.Recipients, ", "), string(provider), id,
	)
	return nil
}

func newSender(provider Provider) (client sender, e *xerr.Error) {
	switch provider {
	case ProviderSES:
		return sesSender{}, nil
	case ProviderMailgun:
		return mailgunSender{}, nil
	case ProviderSendGrid:
		return sendGridSender{}, nil
	}
	e = xerr.NewError(fmt.Errorf("unknown provider '%s'", provider), "pick email provider", string(provider))
	return nil, e
}

func cleanRecipients(recipients []string) []string {
	cleaned := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient != "" {
			cleaned = append(cleaned, recipient)
		}
	}
	return cleaned
}
