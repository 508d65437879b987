// Package mail delivers transactional email over SMTP. Sends are best-effort;
// the caller never consumes a delivery confirmation.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	gomail "github.com/wneessen/go-mail"
)

var invitationTmpl = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #1f2933;">
    <h2>You're invited to {{.ProjectName}}</h2>
    <p>{{.InviterName}} has invited you ({{.Email}}) to collaborate on
    <strong>{{.ProjectName}}</strong>.</p>
    <p><a href="{{.InviteLink}}">Accept the invitation</a></p>
    <p>This invitation expires in 7 days.</p>
  </body>
</html>
`))

// Config holds SMTP and sender settings for the mailer.
type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromName    string
	FromEmail   string
	FrontendURL string
}

// Mailer sends invitation email through a configured SMTP relay.
type Mailer struct {
	cfg Config
}

// New builds a Mailer. Host may be empty, in which case sends fail and the
// caller is expected to log and move on.
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendInvitationEmail renders and delivers the invitation message. The from
// address falls back to the inviter's email when none is configured.
func (m *Mailer) SendInvitationEmail(ctx context.Context, toEmail, senderEmail, projectName, inviterName, token string) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("mail: SMTP host not configured")
	}

	var body bytes.Buffer
	err := invitationTmpl.Execute(&body, map[string]string{
		"ProjectName": projectName,
		"InviterName": inviterName,
		"Email":       toEmail,
		"InviteLink":  m.cfg.FrontendURL + "/invitations/" + token,
	})
	if err != nil {
		return fmt.Errorf("mail: render invitation: %w", err)
	}

	from := m.cfg.FromEmail
	if from == "" {
		from = senderEmail
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, from); err != nil {
		return fmt.Errorf("mail: from address: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("mail: to address: %w", err)
	}
	msg.Subject("Invitation to join " + projectName)
	msg.SetBodyString(gomail.TypeTextHTML, body.String())

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.User),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send invitation to %s: %w", toEmail, err)
	}
	return nil
}
