package domain

import "time"

// QuotationStatus is the lifecycle state of a quotation.
type QuotationStatus string

const (
	StatusDraft    QuotationStatus = "draft"
	StatusSent     QuotationStatus = "sent"
	StatusAccepted QuotationStatus = "accepted"
	StatusRejected QuotationStatus = "rejected"
	StatusRevision QuotationStatus = "revision"
)

// Action is a client- or admin-initiated intent that drives the state machine.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionRevision Action = "revision"
	// ActionSend is admin-only: draft -> sent and revision -> sent.
	ActionSend Action = "send"
)

// ClientAction reports whether a is one of the three client-facing actions.
func ClientAction(a Action) bool {
	return a == ActionAccept || a == ActionReject || a == ActionRevision
}

// TargetStatus returns the status an action transitions into, and whether the
// action is known at all.
func TargetStatus(a Action) (QuotationStatus, bool) {
	switch a {
	case ActionAccept:
		return StatusAccepted, true
	case ActionReject:
		return StatusRejected, true
	case ActionRevision:
		return StatusRevision, true
	case ActionSend:
		return StatusSent, true
	}
	return "", false
}

// RequiresReason reports whether an action must carry a non-empty reason.
func RequiresReason(a Action) bool {
	return a == ActionReject || a == ActionRevision
}

// Actionable reports whether a client/admin action may fire from status s.
// draft, accepted and rejected are closed: draft is not yet offered, the
// other two are terminal.
func Actionable(s QuotationStatus) bool {
	return s == StatusSent || s == StatusRevision
}

// ActionRecord is one entry of the append-only action journal. Entries are
// never removed or edited.
type ActionRecord struct {
	Action    Action    `json:"action" dynamodbav:"action"`
	Reason    string    `json:"reason,omitempty" dynamodbav:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
	Verified  bool      `json:"verified" dynamodbav:"verified"`
}

// TimelineEntry is one entry of the status timeline: a latest-occurrence-per-
// status projection, distinct from the full journal above.
type TimelineEntry struct {
	Status      QuotationStatus `json:"status" dynamodbav:"status"`
	Date        time.Time       `json:"date" dynamodbav:"date"`
	Description string          `json:"description" dynamodbav:"description"`
}

// Quotation is the unit of consistency for the action subsystem.
type Quotation struct {
	QuotationID      string          `json:"id" dynamodbav:"quotation_id"`
	Title            string          `json:"title" dynamodbav:"title"`
	ClientEmail      string          `json:"client_email" dynamodbav:"client_email"`
	AssociatedUserID *string         `json:"associated_user_id,omitempty" dynamodbav:"associated_user_id,omitempty"`
	Status           QuotationStatus `json:"status" dynamodbav:"status"`
	Actions          []ActionRecord  `json:"actions" dynamodbav:"actions"`
	StatusTimeline   []TimelineEntry `json:"status_timeline" dynamodbav:"status_timeline"`
	CreatedAt        time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time       `json:"updated" dynamodbav:"updated_at"`
}

// QuotationInput is the admin create payload.
type QuotationInput struct {
	Title       string  `json:"title" validate:"required"`
	ClientEmail string  `json:"client_email" validate:"required,email"`
	UserID      *string `json:"user_id"`
}

// QuotationUpdate is the admin partial-edit payload. Nil fields are left
// untouched.
type QuotationUpdate struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	ClientEmail *string `json:"client_email" validate:"omitempty,email"`
}
