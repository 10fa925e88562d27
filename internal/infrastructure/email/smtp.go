package email

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

type SMTPEmailService struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPEmailService{
		config: config,
		dialer: dialer,
	}
}

// SendMandateRequest forwards a prospect's campaign mandate form to the
// sales inbox. The reply-to is set to the prospect so sales can answer
// directly.
func (s *SMTPEmailService) SendMandateRequest(recipient, prospectEmail, company, message string) error {
	subject := fmt.Sprintf("New campaign mandate from %s", company)
	htmlBody, plainBody := mandateBodies(prospectEmail, company, message)

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromAddress)
	m.SetHeader("To", recipient)
	m.SetHeader("Reply-To", prospectEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// mandateBodies renders the HTML and plain text alternatives. Form
// fields are user-supplied and must not inject markup into the HTML
// alternative.
func mandateBodies(prospectEmail, company, message string) (htmlBody, plainBody string) {
	htmlBody = fmt.Sprintf(`
		<html>
		<body>
			<h2>New Campaign Mandate</h2>
			<p><strong>Company:</strong> %s</p>
			<p><strong>Contact:</strong> %s</p>
			<p><strong>Message:</strong></p>
			<p>%s</p>
		</body>
		</html>
	`, html.EscapeString(company), html.EscapeString(prospectEmail), html.EscapeString(message))

	plainBody = fmt.Sprintf(`
New Campaign Mandate

Company: %s
Contact: %s

Message:
%s
	`, company, prospectEmail, message)

	return htmlBody, plainBody
}
