package quotation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quotation-api/internal/application/notify"
	"github.com/quotation-api/internal/domain"
	"github.com/quotation-api/internal/pkg/id"
	"github.com/quotation-api/internal/pkg/validate"
)

type Service interface {
	Create(ctx context.Context, input domain.QuotationInput) (*domain.Quotation, error)
	Get(ctx context.Context, quotationID string) (*domain.Quotation, error)
	// Update edits the editable fields of a quotation outside the transition
	// path. Terminal quotations cannot be edited.
	Update(ctx context.Context, quotationID string, input domain.QuotationUpdate) (*domain.Quotation, error)
	// Send moves a quotation to the client: draft -> sent or revision -> sent.
	// Re-sending an already sent quotation logs the action without touching
	// the timeline.
	Send(ctx context.Context, quotationID string) (*domain.Quotation, error)
	// ApplyVerifiedAction applies an action whose payload came out of a
	// consumed one-time code.
	ApplyVerifiedAction(ctx context.Context, quotationID string, p domain.ActionPayload) (*domain.Quotation, error)
	// ApplyClientAction is the authenticated variant: identity comes from the
	// session, so ownership is checked instead of an OTP.
	ApplyClientAction(ctx context.Context, quotationID, userID, email string, action domain.Action, reason string) (*domain.Quotation, error)
}

type quotationStore interface {
	Put(ctx context.Context, q *domain.Quotation) error
	Get(ctx context.Context, quotationID string) (*domain.Quotation, error)
	SaveTransition(ctx context.Context, q *domain.Quotation, expected domain.QuotationStatus) error
	Update(ctx context.Context, quotationID string, updates map[string]interface{}) error
}

type service struct {
	repo         quotationStore
	orchestrator notify.Orchestrator
}

func NewService(repo quotationStore, orchestrator notify.Orchestrator) Service {
	return &service{repo: repo, orchestrator: orchestrator}
}

func (s *service) Create(ctx context.Context, input domain.QuotationInput) (*domain.Quotation, error) {
	now := time.Now().UTC()
	q := &domain.Quotation{
		QuotationID:      id.New(),
		Title:            input.Title,
		ClientEmail:      strings.ToLower(strings.TrimSpace(input.ClientEmail)),
		AssociatedUserID: input.UserID,
		Status:           domain.StatusDraft,
		Actions:          []domain.ActionRecord{},
		StatusTimeline: []domain.TimelineEntry{
			{Status: domain.StatusDraft, Date: now, Description: "Quotation created"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *service) Get(ctx context.Context, quotationID string) (*domain.Quotation, error) {
	return s.repo.Get(ctx, quotationID)
}

func (s *service) Update(ctx context.Context, quotationID string, input domain.QuotationUpdate) (*domain.Quotation, error) {
	q, err := s.repo.Get(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	// accepted and rejected are terminal; what the client decided on must not
	// change under them.
	switch q.Status {
	case domain.StatusAccepted, domain.StatusRejected:
		return nil, fmt.Errorf("cannot edit quotation in status %q: %w", q.Status, domain.ErrInvalidState)
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", domain.ErrBadRequest)
		}
		q.Title = title
		updates["title"] = title
	}
	if input.ClientEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*input.ClientEmail))
		if !validate.Email(email) {
			return nil, fmt.Errorf("invalid email address: %w", domain.ErrBadRequest)
		}
		q.ClientEmail = email
		updates["client_email"] = email
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no editable fields in request: %w", domain.ErrBadRequest)
	}

	if err := s.repo.Update(ctx, quotationID, updates); err != nil {
		return nil, err
	}
	q.UpdatedAt = time.Now().UTC()
	return q, nil
}

func (s *service) Send(ctx context.Context, quotationID string) (*domain.Quotation, error) {
	q, err := s.repo.Get(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	switch q.Status {
	case domain.StatusDraft, domain.StatusRevision, domain.StatusSent:
	default:
		return nil, fmt.Errorf("cannot send quotation in status %q: %w", q.Status, domain.ErrInvalidState)
	}
	if err := s.apply(ctx, q, domain.ActionSend, "", "admin", domain.Claimant{}); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *service) ApplyVerifiedAction(ctx context.Context, quotationID string, p domain.ActionPayload) (*domain.Quotation, error) {
	if p.QuotationID != quotationID {
		return nil, fmt.Errorf("payload bound to quotation %q: %w", p.QuotationID, domain.ErrPayloadMismatch)
	}
	q, err := s.repo.Get(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if !domain.Actionable(q.Status) {
		return nil, fmt.Errorf("quotation is %q: %w", q.Status, domain.ErrInvalidState)
	}
	if err := s.apply(ctx, q, p.Action, p.Reason, p.Claimant.Email, p.Claimant); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *service) ApplyClientAction(ctx context.Context, quotationID, userID, email string, action domain.Action, reason string) (*domain.Quotation, error) {
	if !domain.ClientAction(action) {
		return nil, fmt.Errorf("unknown action %q: %w", action, domain.ErrBadRequest)
	}
	q, err := s.repo.Get(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if !owns(q, userID, email) {
		return nil, fmt.Errorf("quotation belongs to a different client: %w", domain.ErrForbidden)
	}
	if !domain.Actionable(q.Status) {
		return nil, fmt.Errorf("quotation is %q: %w", q.Status, domain.ErrInvalidState)
	}
	claimant := domain.Claimant{Email: email}
	if err := s.apply(ctx, q, action, reason, userID, claimant); err != nil {
		return nil, err
	}
	return q, nil
}

// apply runs the transition on q in place and persists it, conditional on the
// status q was read with. The side-effect dispatch happens only after the
// conditional write succeeds and can never fail the transition.
func (s *service) apply(ctx context.Context, q *domain.Quotation, action domain.Action, reason, actor string, claimant domain.Claimant) error {
	target, ok := domain.TargetStatus(action)
	if !ok {
		return fmt.Errorf("unknown action %q: %w", action, domain.ErrBadRequest)
	}
	reason = strings.TrimSpace(reason)
	if domain.RequiresReason(action) && reason == "" {
		return fmt.Errorf("action %q requires a reason: %w", action, domain.ErrBadRequest)
	}

	expected := q.Status
	now := time.Now().UTC()

	// The journal entry is appended unconditionally once the transition is
	// accepted; the timeline only moves when the status actually changes.
	q.Actions = append(q.Actions, domain.ActionRecord{
		Action:    action,
		Reason:    reason,
		Timestamp: now,
		Verified:  true,
	})
	if target != q.Status {
		q.Status = target
		q.StatusTimeline = reconcileTimeline(q.StatusTimeline, target, now, transitionDescription(target, reason))
	}
	q.UpdatedAt = now

	if err := s.repo.SaveTransition(ctx, q, expected); err != nil {
		return err
	}

	if s.orchestrator != nil {
		s.orchestrator.ActionApplied(ctx, q, action, reason, actor, claimant)
	}
	return nil
}

func transitionDescription(status domain.QuotationStatus, reason string) string {
	switch status {
	case domain.StatusAccepted:
		return "Quotation accepted by client"
	case domain.StatusRejected:
		return "Quotation rejected by client - " + reason
	case domain.StatusRevision:
		return "Revision requested by client - " + reason
	case domain.StatusSent:
		return "Quotation sent to client"
	}
	return "Status changed to " + string(status)
}

func owns(q *domain.Quotation, userID, email string) bool {
	if q.AssociatedUserID != nil && userID != "" && *q.AssociatedUserID == userID {
		return true
	}
	return email != "" && strings.EqualFold(q.ClientEmail, email)
}
