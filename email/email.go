package email

import (
	"errors"
	"fmt"
	"net/smtp"
)

type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
	to       string
}

func NewEmailService(host, port, user, password, from, to string) *EmailService {
	return &EmailService{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		to:       to,
	}
}

// Configured reports whether enough SMTP settings are present to send mail.
func (e *EmailService) Configured() bool {
	return e != nil && e.host != "" && e.from != "" && e.to != ""
}

// SendContactMessage forwards a contact-form submission to the studio inbox.
func (e *EmailService) SendContactMessage(name, replyTo, body string) error {
	if !e.Configured() {
		return errors.New("smtp is not configured")
	}

	subject := fmt.Sprintf("Contact form: %s", name)
	text := fmt.Sprintf(`New message from the website contact form.

From: %s <%s>

%s
`, name, replyTo, body)

	message := fmt.Sprintf("From: %s\r\n"+
		"Reply-To: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", e.from, replyTo, e.to, subject, text)

	auth := smtp.PlainAuth("", e.user, e.password, e.host)
	addr := fmt.Sprintf("%s:%s", e.host, e.port)

	if err := smtp.SendMail(addr, auth, e.from, []string{e.to}, []byte(message)); err != nil {
		return fmt.Errorf("sending contact email: %w", err)
	}

	return nil
}
