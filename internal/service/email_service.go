package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-health-api/internal/models"
	"github.com/noah-isme/sma-health-api/pkg/jobs"
	"github.com/noah-isme/sma-health-api/pkg/mailer"
)

// JobTypeEmail tags email jobs on the notification queue.
const JobTypeEmail = "email"

// EmailMessage is the payload of an email job.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

type emailQueue interface {
	Enqueue(job jobs.Job) error
}

type consentTokenIssuer interface {
	Issue(consentID string, status models.ConsentStatus) (string, time.Time, error)
}

// ConsentEmail carries what a consent request email shows to the parent.
type ConsentEmail struct {
	To          string
	ParentName  string
	StudentName string
	Plan        models.MedicalPlan
	ConsentID   string
}

var (
	consentRequestTemplate = template.Must(template.New("consent").Parse(`<p>Kính gửi Quý phụ huynh {{.ParentName}},</p>
<p>Nhà trường tổ chức <strong>{{.PlanName}}</strong> ({{.PlanType}}) từ {{.StartDate}} đến {{.EndDate}}.</p>
{{if .Description}}<p>{{.Description}}</p>{{end}}
<p>Vui lòng xác nhận sự đồng ý cho học sinh <strong>{{.StudentName}}</strong>:</p>
<p><a href="{{.ApproveURL}}">Đồng ý</a> | <a href="{{.RejectURL}}">Từ chối</a></p>
<p>Liên kết có hiệu lực đến {{.ExpiresAt}}. Sau thời hạn này, vui lòng phản hồi trong ứng dụng.</p>`))

	notificationTemplate = template.Must(template.New("notification").Parse(`<p>{{.Title}}</p>
<p>{{.Content}}</p>
<p>Phòng Y tế nhà trường</p>`))
)

// EmailService renders notification emails and delivers them through the background queue.
type EmailService struct {
	sender        mailer.Sender
	tokens        consentTokenIssuer
	metrics       *MetricsService
	logger        *zap.Logger
	publicBaseURL string
	queue         emailQueue
}

// NewEmailService constructs the service. Call SetQueue before enqueueing.
func NewEmailService(sender mailer.Sender, tokens consentTokenIssuer, publicBaseURL string, metrics *MetricsService, logger *zap.Logger) *EmailService {
	if sender == nil {
		sender = mailer.NopSender{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailService{
		sender:        sender,
		tokens:        tokens,
		metrics:       metrics,
		logger:        logger,
		publicBaseURL: publicBaseURL,
	}
}

// SetQueue attaches the worker queue whose handler is Handle.
func (s *EmailService) SetQueue(queue emailQueue) {
	s.queue = queue
}

// Handle delivers one queued email. Returned errors are retried by the queue.
func (s *EmailService) Handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(EmailMessage)
	if !ok {
		s.logger.Error("unexpected email payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	if err := s.sender.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		s.metrics.RecordEmail(false)
		return err
	}
	s.metrics.RecordEmail(true)
	return nil
}

// Enqueue schedules delivery. Failures are logged and never returned.
func (s *EmailService) Enqueue(msg EmailMessage) {
	if msg.To == "" {
		return
	}
	if s.queue == nil {
		s.logger.Warn("email queue not configured, dropping message", zap.String("subject", msg.Subject))
		return
	}
	if err := s.queue.Enqueue(jobs.Job{Type: JobTypeEmail, Payload: msg}); err != nil {
		s.logger.Warn("failed to enqueue email", zap.String("to", msg.To), zap.Error(err))
	}
}

// SendNotificationCopy mirrors an in-app notification to the recipient's inbox.
func (s *EmailService) SendNotificationCopy(to, title, content string) {
	var body bytes.Buffer
	if err := notificationTemplate.Execute(&body, map[string]string{"Title": title, "Content": content}); err != nil {
		s.logger.Warn("failed to render notification email", zap.Error(err))
		return
	}
	s.Enqueue(EmailMessage{To: to, Subject: title, Body: body.String()})
}

// SendConsentRequest emails a parent approve and reject links for one consent.
func (s *EmailService) SendConsentRequest(req ConsentEmail) {
	if req.To == "" {
		return
	}
	body, err := s.renderConsentRequest(req)
	if err != nil {
		s.logger.Warn("failed to render consent email", zap.String("consent_id", req.ConsentID), zap.Error(err))
		return
	}
	s.Enqueue(EmailMessage{
		To:      req.To,
		Subject: fmt.Sprintf("Xác nhận tham gia: %s", req.Plan.Name),
		Body:    body,
	})
}

func (s *EmailService) renderConsentRequest(req ConsentEmail) (string, error) {
	if s.tokens == nil {
		return "", fmt.Errorf("consent token issuer not configured")
	}
	approve, expiresAt, err := s.tokens.Issue(req.ConsentID, models.ConsentStatusApproved)
	if err != nil {
		return "", err
	}
	reject, _, err := s.tokens.Issue(req.ConsentID, models.ConsentStatusRejected)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	err = consentRequestTemplate.Execute(&body, map[string]interface{}{
		"ParentName":  req.ParentName,
		"StudentName": req.StudentName,
		"PlanName":    req.Plan.Name,
		"PlanType":    planTypeLabel(req.Plan.PlanType),
		"Description": req.Plan.Description,
		"StartDate":   req.Plan.StartDate.Format("02/01/2006"),
		"EndDate":     req.Plan.EndDate.Format("02/01/2006"),
		"ApproveURL":  s.consentLink(approve),
		"RejectURL":   s.consentLink(reject),
		"ExpiresAt":   expiresAt.Local().Format("15:04 02/01/2006"),
	})
	if err != nil {
		return "", err
	}
	return body.String(), nil
}

func (s *EmailService) consentLink(token string) string {
	return s.publicBaseURL + "/public/consents/respond?token=" + url.QueryEscape(token)
}

func planTypeLabel(planType models.PlanType) string {
	switch planType {
	case models.PlanTypeVaccination:
		return "tiêm chủng"
	case models.PlanTypeHealthCheckup:
		return "khám sức khỏe"
	default:
		return string(planType)
	}
}
