package domain

import "time"

// MaxCodeAttempts is the failed-verification budget per issued code. The third
// failure force-marks the code used so it cannot be guessed further.
const MaxCodeAttempts = 3

// OneTimeCode authorizes exactly one mutation of exactly one quotation.
// PK: recipient (normalized email) — issuing a new code overwrites the
// recipient's previous one, so at most one active code exists per recipient.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type OneTimeCode struct {
	Recipient   string    `json:"recipient" dynamodbav:"recipient"`
	Code        string    `json:"code" dynamodbav:"code"`
	QuotationID string    `json:"quotation_id" dynamodbav:"quotation_id"`
	ExpiresAt   int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	Used        bool      `json:"used" dynamodbav:"used"`
	Attempts    int       `json:"attempts" dynamodbav:"attempts"`
	Payload     string    `json:"payload" dynamodbav:"payload"` // serialized ActionPayload
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}

// Expired reports whether the code is past its TTL at the given instant.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return c.ExpiresAt <= now.Unix()
}

// Active reports whether the code is still consumable: unused, unexpired.
func (c *OneTimeCode) Active(now time.Time) bool {
	return !c.Used && !c.Expired(now)
}
