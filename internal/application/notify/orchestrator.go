package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quotation-api/internal/domain"
	"github.com/quotation-api/internal/infrastructure/smtp"
	snsinfra "github.com/quotation-api/internal/infrastructure/sns"
	"github.com/quotation-api/internal/pkg/id"
)

// Orchestrator fires the advisory side effects of a committed transition:
// back-office notification, claimant SMS, audit entry. The transition is the
// source of truth; nothing here may fail it, so every step logs-and-continues.
type Orchestrator interface {
	ActionApplied(ctx context.Context, q *domain.Quotation, action domain.Action, reason, actor string, claimant domain.Claimant)
}

type activityStore interface {
	Append(ctx context.Context, e *domain.ActivityEntry) error
}

type orchestrator struct {
	mailer     smtp.Mailer
	sms        snsinfra.SMSSender // nil when SNS is unavailable
	activity   activityStore
	backoffice string
}

func NewOrchestrator(mailer smtp.Mailer, sms snsinfra.SMSSender, activity activityStore, backofficeEmail string) Orchestrator {
	return &orchestrator{mailer: mailer, sms: sms, activity: activity, backoffice: backofficeEmail}
}

func (o *orchestrator) ActionApplied(ctx context.Context, q *domain.Quotation, action domain.Action, reason, actor string, claimant domain.Claimant) {
	if o.mailer != nil && o.backoffice != "" {
		subject, body := actionMail(q, action, reason, claimant)
		if err := o.mailer.SendEmail(o.backoffice, subject, body); err != nil {
			slog.Warn("back-office notification failed", "quotation_id", q.QuotationID, "action", action, "err", err)
		}
	}

	if o.sms != nil && claimant.Phone != "" {
		msg := fmt.Sprintf("Your %s request for quotation %q was recorded.", action, q.Title)
		if err := o.sms.SendSMS(ctx, claimant.Phone, msg); err != nil {
			slog.Warn("claimant SMS failed", "quotation_id", q.QuotationID, "err", err)
		}
	}

	if o.activity != nil {
		entry := &domain.ActivityEntry{
			EntryID:     id.New(),
			QuotationID: q.QuotationID,
			Actor:       actor,
			Event:       "quotation." + string(action),
			Detail:      reason,
			CreatedAt:   time.Now().UTC(),
		}
		if err := o.activity.Append(ctx, entry); err != nil {
			slog.Warn("audit append failed", "quotation_id", q.QuotationID, "event", entry.Event, "err", err)
		}
	}
}

func actionMail(q *domain.Quotation, action domain.Action, reason string, claimant domain.Claimant) (subject, body string) {
	switch action {
	case domain.ActionAccept:
		subject = fmt.Sprintf("Quotation %q accepted", q.Title)
	case domain.ActionReject:
		subject = fmt.Sprintf("Quotation %q rejected", q.Title)
	case domain.ActionRevision:
		subject = fmt.Sprintf("Revision requested for quotation %q", q.Title)
	default:
		subject = fmt.Sprintf("Quotation %q updated", q.Title)
	}
	body = fmt.Sprintf("Quotation: %s\nStatus: %s\nBy: %s <%s>", q.QuotationID, q.Status, claimant.Name, claimant.Email)
	if reason != "" {
		body += "\nReason: " + reason
	}
	return subject, body
}
