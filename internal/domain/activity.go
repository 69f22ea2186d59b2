package domain

import "time"

// ActivityEntry is one append-only audit record. This service only writes
// them; querying and pagination belong to the reporting side.
type ActivityEntry struct {
	EntryID     string    `json:"id" dynamodbav:"entry_id"`
	QuotationID string    `json:"quotation_id" dynamodbav:"quotation_id"`
	Actor       string    `json:"actor" dynamodbav:"actor"` // claimant email or user id
	Event       string    `json:"event" dynamodbav:"event"`
	Detail      string    `json:"detail,omitempty" dynamodbav:"detail,omitempty"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}
