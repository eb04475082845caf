package email

import (
	"bytes"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSESContentCarriesAttachments(t *testing.T) {
	pdf := bytes.Repeat([]byte("%PDF-1.3 report body "), 20)
	content := sesContent(Message{
		Sender:     "reportes@sima.example",
		Recipients: []string{"a@acme.example", "b@acme.example"},
		Subject:    "Reporte de Mantenimiento - Marzo 2024",
		Text:       "Adjunto el reporte.",
		HTML:       "<p>Adjunto el reporte.</p>",
		Attachments: []Attachment{
			{FileName: "SIMA_Reporte_Acme_HQ_Marzo_2024.pdf", ContentType: "application/pdf", Data: pdf},
		},
	})

	require.NotNil(t, content.Simple)
	assert.Nil(t, content.Raw)
	assert.Equal(t, "Reporte de Mantenimiento - Marzo 2024", aws.ToString(content.Simple.Subject.Data))
	assert.Equal(t, "UTF-8", aws.ToString(content.Simple.Subject.Charset))
	assert.Equal(t, "Adjunto el reporte.", aws.ToString(content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>Adjunto el reporte.</p>", aws.ToString(content.Simple.Body.Html.Data))

	require.Len(t, content.Simple.Attachments, 1)
	attachment := content.Simple.Attachments[0]
	assert.Equal(t, "SIMA_Reporte_Acme_HQ_Marzo_2024.pdf", aws.ToString(attachment.FileName))
	assert.Equal(t, "application/pdf", aws.ToString(attachment.ContentType))
	assert.Equal(t, sestypes.AttachmentContentDispositionAttachment, attachment.ContentDisposition)
	assert.Equal(t, pdf, attachment.RawContent)
}

func TestSESContentTextOnly(t *testing.T) {
	content := sesContent(Message{Subject: "s", Text: "t"})
	require.NotNil(t, content.Simple)
	assert.Nil(t, content.Simple.Body.Html)
	assert.Empty(t, content.Simple.Attachments)
}

func TestSendMessageDryRun(t *testing.T) {
	disabled := false
	e := SendMessage(ProviderSES, &disabled, "reportes@sima.example", []string{" a@acme.example ", ""}, "s", "t", "", nil)
	assert.Nil(t, e)

	e = SendMessage(ProviderMailgun, nil, "reportes@sima.example", []string{"a@acme.example"}, "s", "t", "", nil)
	assert.Nil(t, e)
}

func TestSendMessageValidation(t *testing.T) {
	disabled := false

	e := SendMessage(Provider("pigeon"), &disabled, "reportes@sima.example", []string{"a@acme.example"}, "s", "t", "", nil)
	assert.NotNil(t, e)

	e = SendMessage(ProviderSendGrid, &disabled, "reportes@sima.example", []string{"  "}, "s", "t", "", nil)
	assert.NotNil(t, e)
}

func TestCleanRecipients(t *testing.T) {
	assert.Equal(t, []string{"a@acme.example", "b@acme.example"}, cleanRecipients([]string{" a@acme.example", "", "b@acme.example "}))
}
