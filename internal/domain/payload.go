package domain

import (
	"encoding/json"
	"fmt"
)

// PayloadKindQuotationAction is the only payload kind the verifier accepts.
// The discriminator exists so a stored blob from some future code flavour can
// never be mistaken for a quotation action.
const PayloadKindQuotationAction = "quotation_action"

// Claimant is the self-reported identity of an unauthenticated requester.
type Claimant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// ActionPayload is the pending action a one-time code is bound to.
type ActionPayload struct {
	Kind        string   `json:"kind"`
	QuotationID string   `json:"quotation_id"`
	Action      Action   `json:"action"`
	Reason      string   `json:"reason,omitempty"`
	Claimant    Claimant `json:"claimant"`
}

// EncodeActionPayload serializes p, stamping the kind discriminator.
func EncodeActionPayload(p ActionPayload) (string, error) {
	p.Kind = PayloadKindQuotationAction
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode action payload: %w", err)
	}
	return string(b), nil
}

// DecodeActionPayload parses a stored payload, rejecting unknown kinds and
// unknown actions.
func DecodeActionPayload(s string) (ActionPayload, error) {
	var p ActionPayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return ActionPayload{}, fmt.Errorf("decode action payload: %w", err)
	}
	if p.Kind != PayloadKindQuotationAction {
		return ActionPayload{}, fmt.Errorf("unknown payload kind %q: %w", p.Kind, ErrBadRequest)
	}
	if _, ok := TargetStatus(p.Action); !ok {
		return ActionPayload{}, fmt.Errorf("unknown action %q: %w", p.Action, ErrBadRequest)
	}
	return p, nil
}
