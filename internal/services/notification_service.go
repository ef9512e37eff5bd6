package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	applicationReceivedTemplate = "application_received.html"
	applicationStatusTemplate   = "application_status.html"

	defaultSendGridHost = "https://api.sendgrid.com"
	sendTimeout         = 30 * time.Second
)

// Notifier is told about application changes that someone should hear about.
type Notifier interface {
	ApplicationReceived(ctx context.Context, job *models.Job, candidate *models.Candidate)
	ApplicationStatusChanged(ctx context.Context, job *models.Job, candidate *models.Candidate, status string)
}

type applicationReceivedBody struct {
	CompanyName   string
	CandidateName string
	JobTitle      string
}

type applicationStatusBody struct {
	CandidateName string
	CompanyName   string
	JobTitle      string
	Status        string
}

// NotificationService sends templated emails through SendGrid. Without an API
// key every send is skipped.
type NotificationService struct {
	APIKey string
	// Host is the SendGrid API base URL.
	Host   string
	From   *sgmail.Email
	Logger *slog.Logger

	templates *template.Template
	// async sends in the background so requests never wait on SendGrid.
	async bool
}

func NewNotificationService(apiKey, from string, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		APIKey:    apiKey,
		Host:      defaultSendGridHost,
		From:      sgmail.NewEmail("Job Board", from),
		Logger:    logger,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		async:     true,
	}
}

func (s *NotificationService) Enabled() bool {
	return s.APIKey != "" && s.From != nil && s.From.Address != ""
}

func (s *NotificationService) ApplicationReceived(ctx context.Context, job *models.Job, candidate *models.Candidate) {
	if job.Company == nil || job.Company.Email == "" {
		return
	}
	subject := fmt.Sprintf("New applicant for %s", job.Title)
	s.dispatch(ctx, job.Company.Email, subject, applicationReceivedTemplate, applicationReceivedBody{
		CompanyName:   job.Company.CompanyName,
		CandidateName: candidate.Name,
		JobTitle:      job.Title,
	})
}

func (s *NotificationService) ApplicationStatusChanged(ctx context.Context, job *models.Job, candidate *models.Candidate, status string) {
	if candidate.Email == "" {
		return
	}
	companyName := ""
	if job.Company != nil {
		companyName = job.Company.CompanyName
	}
	subject := fmt.Sprintf("Update on your application to %s", job.Title)
	s.dispatch(ctx, candidate.Email, subject, applicationStatusTemplate, applicationStatusBody{
		CandidateName: candidate.Name,
		CompanyName:   companyName,
		JobTitle:      job.Title,
		Status:        status,
	})
}

func (s *NotificationService) dispatch(ctx context.Context, to, subject, tmpl string, data any) {
	if !s.Enabled() {
		s.Logger.Debug("[mail] skipped, sendgrid not configured", "to", to, "template", tmpl)
		return
	}
	send := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		if err := s.Send(ctx, to, subject, tmpl, data); err != nil {
			s.Logger.Error("[mail] send failed", "to", to, "template", tmpl, "error", err)
			return
		}
		s.Logger.Info("[mail] sent", "to", to, "template", tmpl)
	}
	if s.async {
		go send(context.WithoutCancel(ctx))
		return
	}
	send(ctx)
}

// Send renders tmpl with data and posts it to SendGrid, retrying transient
// failures.
func (s *NotificationService) Send(ctx context.Context, to, subject, tmpl string, data any) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("rendering %s: %w", tmpl, err)
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.From)
	m.AddContent(sgmail.NewContent("text/html", body.String()))
	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", to))
	p.Subject = subject
	m.AddPersonalizations(p)

	request := sendgrid.GetRequest(s.APIKey, "/v3/mail/send", s.Host)
	request.Method = "POST"
	request.Body = sgmail.GetRequestBody(m)

	return retry(ctx, s.Logger, 3, time.Second, func() error {
		resp, err := sendgrid.MakeRequestWithContext(ctx, request)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 300 {
			err := fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
			if resp.StatusCode == 429 || resp.StatusCode >= 500 {
				return err
			}
			return permanent{err}
		}
		return nil
	})
}

// permanent marks an error retry must not repeat.
type permanent struct{ error }

func (p permanent) Unwrap() error { return p.error }

// retry runs f up to attempts times with exponential backoff.
func retry(ctx context.Context, logger *slog.Logger, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if p, ok := err.(permanent); ok {
			return p.error
		}
		if i == attempts-1 {
			break
		}
		logger.Warn("[mail] API error, retrying", "error", err, "backoff", sleep)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}
