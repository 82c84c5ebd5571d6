// Package notify e-mails the office when a loan application arrives.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"sync"

	"github.com/iwvelando/sixsigma-portal/internal/config"
	"github.com/iwvelando/sixsigma-portal/internal/portal"
	"github.com/iwvelando/sixsigma-portal/pkg/constants"
	"github.com/iwvelando/sixsigma-portal/pkg/datetime"
	"github.com/iwvelando/sixsigma-portal/pkg/format"
	"github.com/iwvelando/sixsigma-portal/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrQueueFull is returned when too many notifications are pending.
var ErrQueueFull = errors.New("notification queue full")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("mailer closed")

const queueSize = 64

// SendFunc delivers one message.
type SendFunc func(*gomail.Message) error

// Mailer sends application notices in the background so a slow SMTP server
// never delays a form submission.
type Mailer struct {
	from   string
	to     string
	send   SendFunc
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
	queue  chan *gomail.Message
	done   chan struct{}
}

// New returns a Mailer delivering through the configured SMTP server.
func New(cfg config.NotifyConfig, logger *zap.Logger) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewWithSender(cfg, func(msg *gomail.Message) error { return dialer.DialAndSend(msg) }, logger)
}

// NewWithSender returns a Mailer delivering through send.
func NewWithSender(cfg config.NotifyConfig, send SendFunc, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	if from == "" {
		from = constants.CompanyEmail
	}
	to := cfg.To
	if to == "" {
		to = constants.CompanyEmail
	}

	m := &Mailer{
		from:   from,
		to:     to,
		send:   send,
		logger: logger,
		queue:  make(chan *gomail.Message, queueSize),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *Mailer) run() {
	defer close(m.done)
	for msg := range m.queue {
		if err := m.send(msg); err != nil {
			m.logger.Warn("failed to send notification",
				zap.String("op", "notify.Mailer.run"),
				zap.Strings("subject", msg.GetHeader("Subject")),
				zap.Error(err),
			)
			continue
		}
		m.logger.Debug("notification sent",
			zap.String("op", "notify.Mailer.run"),
			zap.Strings("subject", msg.GetHeader("Subject")),
		)
	}
}

// ApplicationSubmitted queues a notice for a stored application.
func (m *Mailer) ApplicationSubmitted(ctx context.Context, collection string, app *portal.LoanApplication) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body, err := Render(collection, app)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	if app.Email != "" {
		msg.SetHeader("Reply-To", app.Email)
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	select {
	case m.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting notices and waits until queued ones are sent or ctx
// is done.
func (m *Mailer) Close(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var bodyTemplate = template.Must(template.New("application").Parse(`<h2>{{.Heading}}</h2>
<table>
{{- range .Rows}}
<tr><th align="left">{{.Label}}</th><td>{{.Value}}</td></tr>
{{- end}}
</table>
<p>{{.Company}}</p>
`))

type row struct {
	Label string
	Value string
}

// Render builds the subject and HTML body of an application notice.
func Render(collection string, app *portal.LoanApplication) (string, string, error) {
	heading := "New loan application"
	if collection == constants.EmployeeCustomerCollection {
		heading = "New customer added by " + app.EmployeeName
	}

	subject := fmt.Sprintf("%s: %s", heading, app.LoanType)
	if amount, err := strconv.ParseFloat(strings.TrimSpace(app.LoanAmount), 64); err == nil {
		subject += " (" + format.Rupee(amount) + ")"
	}

	values := validation.Values(app)
	var rows []row
	for _, field := range validation.Describe(app).Fields {
		if values[field.Name] == "" {
			continue
		}
		rows = append(rows, row{Label: field.Label, Value: values[field.Name]})
	}
	if app.SubmissionDate != "" {
		rows = append(rows, row{Label: "Submitted", Value: datetime.DisplayDate(app.SubmissionDate)})
	}
	rows = append(rows, row{Label: "Reference", Value: app.ID})

	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, struct {
		Heading string
		Rows    []row
		Company string
	}{heading, rows, constants.CompanyName})
	if err != nil {
		return "", "", fmt.Errorf("render notification: %w", err)
	}
	return subject, buf.String(), nil
}
