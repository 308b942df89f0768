// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendDocGapAlert(toEmail, question, conversationId string, sources []string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendDocGapAlert(toEmail, question, conversationId string, sources []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Documentation gap reported")

	var sourceList strings.Builder
	for _, src := range sources {
		sourceList.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(src)))
	}
	if sourceList.Len() == 0 {
		sourceList.WriteString("<li>(none)</li>")
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Documentation gap reported</h2>
			<p>A user question could not be answered from the current documentation:</p>
			<blockquote style="border-left: 3px solid #ccc; padding-left: 10px;">%s</blockquote>
			<p>Sources the assistant tried:</p>
			<ul>%s</ul>
			<p>Intercom conversation: %s</p>
		</div>
	`, html.EscapeString(question), sourceList.String(), html.EscapeString(conversationId))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send doc gap alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Doc gap alert sent to %s\n", toEmail)
	return nil
}
