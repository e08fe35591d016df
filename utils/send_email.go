package utils

import (
	"fmt"
	"html"
	"log"
	"net/smtp"
	"os"
)

const (
	smtpHost = "smtp.gmail.com"
	smtpAddr = "smtp.gmail.com:587"
)

func emailConfigured() bool {
	return os.Getenv("SMTP_EMAIL") != "" && os.Getenv("SMTP_PASSWORD") != ""
}

func SendEmail(to, subject, body string) error {
	from := os.Getenv("SMTP_EMAIL")
	pass := os.Getenv("SMTP_PASSWORD")

	msg := ""
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	msg += fmt.Sprintf("From: %s\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "\r\n" + body

	err := smtp.SendMail(
		smtpAddr,
		smtp.PlainAuth("", from, pass, smtpHost),
		from,
		[]string{to},
		[]byte(msg),
	)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func WelcomeEmailBody(name string) string {
	return fmt.Sprintf(`<h2>Welcome to QuizWhiz, %s!</h2>
<p>Your account is ready. Pick a topic, choose a difficulty and start your first quiz.</p>
<p>Every result you finish is saved to your dashboard so you can track your progress.</p>`, html.EscapeString(name))
}

// SendWelcomeEmailAsync is a no-op when SMTP credentials are missing.
func SendWelcomeEmailAsync(to, name string) {
	if !emailConfigured() {
		return
	}
	go func() {
		if err := SendEmail(to, "Welcome to QuizWhiz", WelcomeEmailBody(name)); err != nil {
			log.Printf("Welcome email to %s failed: %v", to, err)
		}
	}()
}
