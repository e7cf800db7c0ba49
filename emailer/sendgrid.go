package emailer

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendgridApiMail struct {
	apiKey   string
	fromName string
	from     string
}

func NewSendgridApiMail(apiKey, fromName, from string) *SendgridApiMail {
	ans := SendgridApiMail{apiKey: apiKey, fromName: fromName, from: from}
	return &ans
}

func (o *SendgridApiMail) Send(toName string, to string, subject string, content string) error {
	m := mail.NewV3MailInit(
		mail.NewEmail(o.fromName, o.from),
		subject,
		mail.NewEmail(toName, to),
		mail.NewContent("text/plain", content),
	)

	request := sendgrid.GetRequest(o.apiKey, "/v3/mail/send", "https://api.sendgrid.com")
	request.Method = "POST"
	request.Body = mail.GetRequestBody(m)
	response, err := sendgrid.API(request)
	if err != nil {
		return err
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}
	return nil
}
