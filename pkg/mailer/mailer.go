package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"sort"
	"time"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// AlertSummary is the part of an alert included in notification mails
type AlertSummary struct {
	Name        string
	Description string
	WeatherType string
	Location    string
	ImageURL    string
	CreatedAt   time.Time
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer handles sending emails
type Mailer struct {
	config   Config
	sendMail sendFunc
}

// New creates a new Mailer instance
func New(cfg Config) *Mailer {
	return &Mailer{config: cfg, sendMail: smtp.SendMail}
}

// SendSubscriptionConfirmation confirms a new alert subscription
func (m *Mailer) SendSubscriptionConfirmation(toEmail string) error {
	subject := "AgroSynth - You're subscribed to weather alerts"

	body, err := render(confirmTemplate, map[string]interface{}{
		"Email": toEmail,
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return m.send(toEmail, subject, body)
}

// SendNewAlert notifies a subscriber about a newly reported alert
func (m *Mailer) SendNewAlert(toEmail string, alert AlertSummary) error {
	subject := fmt.Sprintf("AgroSynth - %s near %s", alert.Name, alert.Location)

	body, err := render(newAlertTemplate, map[string]interface{}{
		"Alert":   alert,
		"Created": alert.CreatedAt.UTC().Format("Jan 2, 2006 15:04 MST"),
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return m.send(toEmail, subject, body)
}

// send delivers an email via SMTP
func (m *Mailer) send(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", m.config.FromName, m.config.From),
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=\"utf-8\"",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msg bytes.Buffer
	for _, k := range keys {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, headers[k]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if m.config.Username != "" && m.config.Password != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	err := m.sendMail(addr, auth, m.config.From, []string{to}, msg.Bytes())
	if err != nil {
		log.Printf("❌ Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("📧 Email sent to %s: %s", to, subject)
	return nil
}

func render(t *template.Template, data map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	err := t.Execute(&buf, data)
	return buf.String(), err
}

var confirmTemplate = template.Must(template.New("confirm").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#f8f9fa;font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;">
    <div style="max-width:500px;margin:40px auto;background:#ffffff;border-radius:12px;overflow:hidden;border:1px solid #dee2e6;">
        <!-- Header -->
        <div style="background:#0077b6;padding:32px;text-align:center;">
            <h1 style="color:#fff;margin:0;font-size:28px;font-weight:700;">🌦️ AgroSynth</h1>
            <p style="color:rgba(255,255,255,0.85);margin:8px 0 0;font-size:14px;">Weather Alerts</p>
        </div>

        <!-- Body -->
        <div style="padding:32px;">
            <p style="color:#1a1a1a;font-size:16px;line-height:1.6;margin:0 0 24px;">
                Thanks for subscribing, <strong style="color:#0077b6;">{{.Email}}</strong>.
            </p>
            <p style="color:#495057;font-size:14px;line-height:1.6;margin:0;">
                We'll email you whenever someone reports a weather alert in your area.
            </p>
        </div>

        <!-- Footer -->
        <div style="padding:16px 32px;border-top:1px solid #dee2e6;text-align:center;">
            <p style="color:#6c757d;font-size:12px;margin:0;">© 2026 AgroSynth.</p>
        </div>
    </div>
</body>
</html>`))

var newAlertTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#f8f9fa;font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;">
    <div style="max-width:500px;margin:40px auto;background:#ffffff;border-radius:12px;overflow:hidden;border:1px solid #dee2e6;">
        <!-- Header -->
        <div style="background:#fff8e1;padding:32px;text-align:center;">
            <h1 style="color:#444;margin:0;font-size:24px;font-weight:700;">🚨 {{.Alert.Name}}</h1>
            <p style="color:#555;margin:8px 0 0;font-size:14px;">{{.Alert.WeatherType}}</p>
        </div>

        <!-- Body -->
        <div style="padding:32px;">
            <p style="color:#1a1a1a;font-size:15px;line-height:1.6;margin:0 0 16px;">{{.Alert.Description}}</p>
            <p style="color:#888;font-size:14px;margin:0 0 8px;">Location: {{.Alert.Location}}</p>
            <p style="color:#888;font-size:14px;margin:0 0 16px;">Created: {{.Created}}</p>
            {{if .Alert.ImageURL}}<img src="{{.Alert.ImageURL}}" alt="{{.Alert.Name}}" style="max-width:100%;border-radius:8px;">{{end}}
        </div>

        <!-- Footer -->
        <div style="padding:16px 32px;border-top:1px solid #dee2e6;text-align:center;">
            <p style="color:#6c757d;font-size:12px;margin:0;">You receive this because you subscribed to AgroSynth alerts.</p>
        </div>
    </div>
</body>
</html>`))
