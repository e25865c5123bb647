package services

import (
	"fmt"
	"log"

	"github.com/AyanAhmedKhan/scholar/config"
)

// MailNotifier sends notification email in the background. Delivery failures
// are logged and dropped; no application flow waits on SMTP.
type MailNotifier struct {
	mailer *config.Mailer
}

func NewMailNotifier(mailer *config.Mailer) *MailNotifier {
	return &MailNotifier{mailer: mailer}
}

func (n *MailNotifier) Notify(recipient, subject, body string) {
	if n.mailer == nil || recipient == "" {
		return
	}
	go func() {
		html := fmt.Sprintf("<p>%s</p><p>— Scholarship Office</p>", body)
		if err := n.mailer.SendMail([]string{recipient}, subject, html); err != nil {
			log.Printf("notify %s: %v", recipient, err)
		}
	}()
}
