package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/quotation-api/internal/domain"
	"github.com/quotation-api/internal/infrastructure/smtp"
	"github.com/quotation-api/internal/pkg/validate"
)

// codePattern is the only shape a submitted code may take, after trimming.
var codePattern = regexp.MustCompile(`^\d{6}$`)

// maxCodeDraws bounds the redraws used to keep active code values globally
// unique.
const maxCodeDraws = 5

// IssueRequest describes a pending client action to bind a code to.
type IssueRequest struct {
	QuotationID string
	Name        string
	Email       string
	Phone       string
	Action      domain.Action
	Reason      string
}

type Service interface {
	// Issue binds a fresh code to the requested action and delivers it to the
	// claimant's email. A prior code for the same recipient is superseded.
	Issue(ctx context.Context, req IssueRequest) (*domain.OneTimeCode, error)
	// Verify consumes a submitted code and returns the action payload it was
	// bound to. quotationID is the request context the payload must match.
	Verify(ctx context.Context, quotationID, rawCode string) (domain.ActionPayload, error)
}

type codeStore interface {
	Put(ctx context.Context, c *domain.OneTimeCode) error
	FindByCode(ctx context.Context, code string) (*domain.OneTimeCode, error)
	FindActiveByQuotation(ctx context.Context, quotationID string) (*domain.OneTimeCode, error)
	Consume(ctx context.Context, recipient, code string) error
	MarkUsed(ctx context.Context, recipient string) error
	IncrementAttempts(ctx context.Context, recipient string) (int, error)
	Delete(ctx context.Context, recipient string) error
}

type quotationGetter interface {
	Get(ctx context.Context, quotationID string) (*domain.Quotation, error)
}

type service struct {
	codes      codeStore
	quotations quotationGetter
	mailer     smtp.Mailer
	ttl        time.Duration
}

func NewService(codes codeStore, quotations quotationGetter, mailer smtp.Mailer, ttl time.Duration) Service {
	return &service{codes: codes, quotations: quotations, mailer: mailer, ttl: ttl}
}

func (s *service) Issue(ctx context.Context, req IssueRequest) (*domain.OneTimeCode, error) {
	if !domain.ClientAction(req.Action) {
		return nil, fmt.Errorf("unknown action %q: %w", req.Action, domain.ErrBadRequest)
	}
	reason := strings.TrimSpace(req.Reason)
	if domain.RequiresReason(req.Action) && reason == "" {
		return nil, fmt.Errorf("action %q requires a reason: %w", req.Action, domain.ErrBadRequest)
	}
	recipient := strings.ToLower(strings.TrimSpace(req.Email))
	if !validate.Email(recipient) {
		return nil, fmt.Errorf("invalid email address: %w", domain.ErrBadRequest)
	}

	q, err := s.quotations.Get(ctx, req.QuotationID)
	if err != nil {
		return nil, err
	}
	// Codes are only offered against a quotation awaiting its decision.
	if q.Status != domain.StatusSent {
		return nil, fmt.Errorf("quotation is %q: %w", q.Status, domain.ErrInvalidState)
	}

	payload, err := domain.EncodeActionPayload(domain.ActionPayload{
		QuotationID: q.QuotationID,
		Action:      req.Action,
		Reason:      reason,
		Claimant:    domain.Claimant{Name: req.Name, Email: recipient, Phone: req.Phone},
	})
	if err != nil {
		return nil, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &domain.OneTimeCode{
		Recipient:   recipient,
		Code:        code,
		QuotationID: q.QuotationID,
		ExpiresAt:   now.Add(s.ttl).Unix(),
		Payload:     payload,
		CreatedAt:   now,
	}
	// Put overwrites the recipient's previous code: single active code per
	// recipient, no delete+insert window.
	if err := s.codes.Put(ctx, rec); err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("Verification code for quotation %q", q.Title)
	body := fmt.Sprintf("Your verification code is %s. It confirms your %q request and expires in %d minutes.",
		code, req.Action, int(s.ttl.Minutes()))
	if err := s.mailer.SendEmail(recipient, subject, body); err != nil {
		// An undelivered code is a dead state; remove it so the caller can
		// retry cleanly.
		if delErr := s.codes.Delete(ctx, recipient); delErr != nil {
			slog.Warn("could not clean up undelivered code", "recipient", recipient, "err", delErr)
		}
		return nil, fmt.Errorf("send verification code: %v: %w", err, domain.ErrDelivery)
	}
	return rec, nil
}

func (s *service) Verify(ctx context.Context, quotationID, rawCode string) (domain.ActionPayload, error) {
	code := strings.TrimSpace(rawCode)
	if !codePattern.MatchString(code) {
		return domain.ActionPayload{}, fmt.Errorf("malformed code: %w", domain.ErrCodeInvalid)
	}
	now := time.Now().UTC()

	rec, err := s.codes.FindByCode(ctx, code)
	switch {
	case err == nil:
		return s.consume(ctx, rec, code, quotationID, now)
	case errors.Is(err, domain.ErrNotFound):
		// No record holds this value: charge the failed guess against the
		// quotation's active code, if one exists.
		return domain.ActionPayload{}, s.chargeFailure(ctx, quotationID, now)
	default:
		return domain.ActionPayload{}, err
	}
}

func (s *service) consume(ctx context.Context, rec *domain.OneTimeCode, code, quotationID string, now time.Time) (domain.ActionPayload, error) {
	if rec.Used {
		return domain.ActionPayload{}, fmt.Errorf("code %q: %w", code, domain.ErrCodeUsed)
	}
	if rec.Expired(now) {
		return domain.ActionPayload{}, fmt.Errorf("code %q: %w", code, domain.ErrCodeExpired)
	}
	if rec.Attempts >= domain.MaxCodeAttempts {
		if err := s.codes.MarkUsed(ctx, rec.Recipient); err != nil {
			slog.Warn("could not force-mark exhausted code", "recipient", rec.Recipient, "err", err)
		}
		return domain.ActionPayload{}, fmt.Errorf("code %q: %w", code, domain.ErrCodeAttemptsExceeded)
	}

	// Consume before acting on the payload: a crash or a concurrent duplicate
	// past this point can never replay the code. The store write is
	// conditional, so exactly one racer gets past it.
	if err := s.codes.Consume(ctx, rec.Recipient, code); err != nil {
		return domain.ActionPayload{}, err
	}

	p, err := domain.DecodeActionPayload(rec.Payload)
	if err != nil {
		return domain.ActionPayload{}, err
	}
	if quotationID != "" && p.QuotationID != quotationID {
		return domain.ActionPayload{}, fmt.Errorf("code bound to quotation %q: %w", p.QuotationID, domain.ErrPayloadMismatch)
	}
	return p, nil
}

func (s *service) chargeFailure(ctx context.Context, quotationID string, now time.Time) error {
	active, err := s.codes.FindActiveByQuotation(ctx, quotationID)
	if err != nil || !active.Active(now) {
		return fmt.Errorf("no matching code: %w", domain.ErrCodeInvalid)
	}
	attempts, err := s.codes.IncrementAttempts(ctx, active.Recipient)
	if err != nil {
		slog.Warn("could not record failed attempt", "recipient", active.Recipient, "err", err)
		return fmt.Errorf("no matching code: %w", domain.ErrCodeInvalid)
	}
	if attempts >= domain.MaxCodeAttempts {
		if err := s.codes.MarkUsed(ctx, active.Recipient); err != nil {
			slog.Warn("could not force-mark exhausted code", "recipient", active.Recipient, "err", err)
		}
		return fmt.Errorf("attempt budget exhausted: %w", domain.ErrCodeAttemptsExceeded)
	}
	return fmt.Errorf("no matching code: %w", domain.ErrCodeInvalid)
}

// uniqueCode draws a uniform 6-digit code, redrawing while another active
// record already holds the candidate value.
func (s *service) uniqueCode(ctx context.Context) (string, error) {
	now := time.Now().UTC()
	for i := 0; i < maxCodeDraws; i++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		existing, err := s.codes.FindByCode(ctx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		if !existing.Active(now) {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not draw a unique code after %d attempts", maxCodeDraws)
}

// generateCode draws uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
