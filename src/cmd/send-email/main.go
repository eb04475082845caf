// in case you need to create an entrypoint with multiple subprograms
package main

import (
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/config"
	"sima-reports/src/pkg/email"
	"sima-reports/src/pkg/setup"
	"sima-reports/src/pkg/util"
)

/*
Pick a provider and use it to send a test email to the given addresses.
With -attach, a generated report (or any file) goes along as an attachment.
*/
func testProvider(subprogram string, flags []string) {
	config.CheckIfEnvVarsPresent(
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION", // amazon ses
		"MAILGUN_DOMAIN", "MAILGUN_API_KEY", // mailgun
		"SENDGRID_API_KEY", // sendgrid
	)

	// common flags
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to the JSON or YAML config file")

	// custom flags
	provider := subprogramCmd.String("provider", "", "Provider to use when sending emails (default: email config)")
	senderAddress := subprogramCmd.String("sender", "", "Sender's address (default: email config)")
	recipientAddress := subprogramCmd.String("recipient", "", "Recipient's address")
	subject := subprogramCmd.String("subject", "Test subject", "Subject of an email")
	emailHtmlFilePath := subprogramCmd.String("html", "./tmp/email.html", "Html of an email, with variables substituted")
	emailTextFilePath := subprogramCmd.String("text", "./tmp/email.txt", "Plain text of an email")
	attachPaths := subprogramCmd.String("attach", "", "Comma-separated files to attach")

	// parse and init config
	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	setup.InitializeConfig(*configPath)

	if *provider == "" {
		*provider = email.Cfg.Provider
	}
	if *senderAddress == "" {
		*senderAddress = email.Cfg.Sender
	}

	util.RequiredFlag(senderAddress, "sender")
	util.RequiredFlag(recipientAddress, "recipient")
	util.RequiredFlag(provider, "provider")
	util.EnsureFlags()

	recipientAddresses := util.SplitList(*recipientAddress)

	// read html file
	htmlFileContentBytes, err := os.ReadFile(*emailHtmlFilePath)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to read file '%s'", *emailHtmlFilePath))
	tl.Log(tl.Verbose, palette.BlueDim, "Full Email:\n```\n%s\n```", htmlFileContentBytes)
	// read text file
	textFileContentBytes, err := os.ReadFile(*emailTextFilePath)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to read file '%s'", *emailTextFilePath))
	tl.Log(tl.Verbose, palette.BlueDim, "Full Email:\n```\n%s\n```", textFileContentBytes)

	attachments := readAttachments(*attachPaths)

	// send email here
	sendEmails := true
	e := email.SendMessage(email.Provider(*provider), &sendEmails, *senderAddress, recipientAddresses, *subject, string(textFileContentBytes), string(htmlFileContentBytes), attachments)
	e.QuitIf("error")
}

func readAttachments(paths string) []email.Attachment {
	attachments := []email.Attachment{}
	for _, path := range util.SplitList(paths) {
		data, err := os.ReadFile(path)
		xerr.QuitIfError(err, fmt.Sprintf("Unable to read attachment '%s'", path))

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		tl.Log(tl.Info, palette.Cyan, "Attaching '%s' (%s, %s bytes)", filepath.Base(path), contentType, fmt.Sprint(len(data)))
		attachments = append(attachments, email.Attachment{FileName: filepath.Base(path), ContentType: contentType, Data: data})
	}
	return attachments
}

func main() {
	// Check if there are enough arguments
	if len(os.Args) < 2 {
		tl.Log(tl.Error, palette.Red, "Usage: %s", "go run src/cmd/send-email/main.go test-provider [flags]")
		os.Exit(1)
	}
	subprogram := os.Args[1]
	flags := os.Args[2:]

	// Switch subprogram based on the first argument
	switch subprogram {
	case "test-provider":
		testProvider(subprogram, flags)
	default:
		tl.Log(tl.Error, palette.Red, "Unknown subprogram: %s", subprogram)
		os.Exit(1)
	}
}
