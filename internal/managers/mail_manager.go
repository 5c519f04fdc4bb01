package managers

import (
	"context"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"
	"microblog/internal/config"
)

const resetMailSubject = "[Microblog] Reset Your Password"

// MailMgr is an interface that outlines the contract for email management.
type MailMgr interface {
	SendPasswordResetMail(email, username, resetURL string) error
}

// MailManager renders mails with Hermes and delivers them through Mailgun.
// Outside production it only logs what it would have sent.
type MailManager struct {
	Hermes     *hermes.Hermes
	Mailgun    *mailgun.MailgunImpl
	sender     string
	production bool
}

// SendPasswordResetMail sends the link that lets a user choose a new password.
func (mm *MailManager) SendPasswordResetMail(email, username, resetURL string) error {
	if !mm.production {
		log.WithFields(log.Fields{"to": email, "link": resetURL}).Info("Skipping password reset mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"You have requested to reset the password of your Microblog account.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To reset your password, click on the button below:",
					Button: hermes.Button{
						Color: "#DC4D2F",
						Text:  "Reset your password",
						Link:  resetURL,
					},
				},
			},
			Outros: []string{
				"If you have not requested a password reset, simply ignore this message.",
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}
	textBody, err := mm.Hermes.GeneratePlainText(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	message := mm.Mailgun.NewMessage(mm.sender, resetMailSubject, textBody, email)
	message.SetHtml(emailBody)
	_, _, err = mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending password reset mail: " + err.Error())
		return err
	}
	log.Debug("Password reset mail sent to ", email)

	return nil
}

// NewMailManager initializes a new MailManager from the mail settings.
func NewMailManager(cfg *config.Config) MailMgr {
	log.Info("Initializing mail manager")
	if !cfg.IsProduction() {
		log.Info("Running in development mode, email will not be sent to users")
	}

	mailgunInstance := mailgun.NewMailgun(cfg.Mail.Domain, cfg.Mail.APIKey)
	mailgunInstance.SetAPIBase(mailgun.APIBaseEU)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        "Microblog",
				Link:        cfg.BaseURL,
				Copyright:   "© Microblog",
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Mailgun:    mailgunInstance,
		sender:     cfg.Mail.Sender,
		production: cfg.IsProduction(),
	}
	log.Info("Initialized mail manager")
	return mm
}
