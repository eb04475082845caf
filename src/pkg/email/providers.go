package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sesSender sends a simple message; SES assembles the MIME document, attachments included.
type sesSender struct{}

func (sesSender) send(ctx context.Context, message Message) (string, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("load AWS config: %w", err)
	}

	output, err := sesv2.NewFromConfig(cfg).SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(message.Sender),
		Destination:      &sestypes.Destination{ToAddresses: message.Recipients},
		Content:          sesContent(message),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(output.MessageId), nil
}

func sesContent(message Message) *sestypes.EmailContent {
	body := &sestypes.Body{Text: utf8Content(message.Text)}
	if message.HTML != "" {
		body.Html = utf8Content(message.HTML)
	}

	simple := &sestypes.Message{Subject: utf8Content(message.Subject), Body: body}
	for _, attachment := range message.Attachments {
		simple.Attachments = append(simple.Attachments, sestypes.Attachment{
			FileName:           aws.String(attachment.FileName),
			ContentType:        aws.String(attachment.ContentType),
			ContentDisposition: sestypes.AttachmentContentDispositionAttachment,
			RawContent:         attachment.Data,
		})
	}
	return &sestypes.EmailContent{Simple: simple}
}

func utf8Content(data string) *sestypes.Content {
	return &sestypes.Content{Data: aws.String(data), Charset: aws.String("UTF-8")}
}

type mailgunSender struct{}

func (mailgunSender) send(ctx context.Context, message Message) (string, error) {
	domain := os.Getenv("MAILGUN_DOMAIN")
	apiKey := os.Getenv("MAILGUN_API_KEY")
	if domain == "" || apiKey == "" {
		return "", fmt.Errorf("MAILGUN_DOMAIN and MAILGUN_API_KEY must be set")
	}

	mg := mailgun.NewMailgun(domain, apiKey)
	m := mg.NewMessage(message.Sender, message.Subject, message.Text, message.Recipients...)
	if message.HTML != "" {
		m.SetHtml(message.HTML)
	}
	for _, attachment := range message.Attachments {
		m.AddBufferAttachment(attachment.FileName, attachment.Data)
	}

	_, id, err := mg.Send(ctx, m)
	return id, err
}

type sendGridSender struct{}

func (sendGridSender) send(ctx context.Context, message Message) (string, error) {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("SENDGRID_API_KEY must be set")
	}

	v3 := mail.NewV3Mail()
	v3.SetFrom(mail.NewEmail("", message.Sender))
	v3.Subject = message.Subject

	personalization := mail.NewPersonalization()
	for _, recipient := range message.Recipients {
		personalization.AddTos(mail.NewEmail("", recipient))
	}
	v3.AddPersonalizations(personalization)

	v3.AddContent(mail.NewContent("text/plain", message.Text))
	if message.HTML != "" {
		v3.AddContent(mail.NewContent("text/html", message.HTML))
	}

	for _, attachment := range message.Attachments {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(attachment.Data))
		a.SetType(attachment.ContentType)
		a.SetFilename(attachment.FileName)
		a.SetDisposition("attachment")
		v3.AddAttachment(a)
	}

	response, err := sendgrid.NewSendClient(apiKey).SendWithContext(ctx, v3)
	if err != nil {
		return "", err
	}
	if response.StatusCode >= 300 {
		return "", fmt.Errorf("sendgrid responded %d: %s", response.StatusCode, response.Body)
	}
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}
