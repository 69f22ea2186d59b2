package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/quotation-api/internal/domain"
)

// QuotationRepo provides typed DynamoDB operations for the quotations table.
type QuotationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewQuotationRepo(client *dynamodb.Client, tableName string) *QuotationRepo {
	return &QuotationRepo{client: client, tableName: tableName}
}

func (r *QuotationRepo) Put(ctx context.Context, q *domain.Quotation) error {
	item, err := attributevalue.MarshalMap(q)
	if err != nil {
		return fmt.Errorf("marshal quotation: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *QuotationRepo) Get(ctx context.Context, quotationID string) (*domain.Quotation, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("quotation_id", quotationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("quotation not found: %w", domain.ErrNotFound)
	}
	var q domain.Quotation
	if err := attributevalue.UnmarshalMap(out.Item, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// SaveTransition persists a computed transition (status, journal, timeline),
// conditional on the quotation still being in the status the engine read.
// A concurrent action that already moved the quotation fails the condition
// and surfaces as ErrInvalidState — the single pending decision was consumed
// by someone else.
func (r *QuotationRepo) SaveTransition(ctx context.Context, q *domain.Quotation, expected domain.QuotationStatus) error {
	actions, err := attributevalue.Marshal(q.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}
	timeline, err := attributevalue.Marshal(q.StatusTimeline)
	if err != nil {
		return fmt.Errorf("marshal status timeline: %w", err)
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("quotation_id", q.QuotationID),
		UpdateExpression:    aws.String("SET #status = :s, #actions = :a, status_timeline = :t, updated_at = :u"),
		ConditionExpression: aws.String("#status = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#status":  "status",
			"#actions": "actions",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s":        &types.AttributeValueMemberS{Value: string(q.Status)},
			":a":        actions,
			":t":        timeline,
			":u":        &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
			":expected": &types.AttributeValueMemberS{Value: string(expected)},
		},
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("quotation no longer in status %q: %w", expected, domain.ErrInvalidState)
	}
	return err
}

// Update applies a partial field update, for admin edits outside the
// transition path.
func (r *QuotationRepo) Update(ctx context.Context, quotationID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("quotation_id", quotationID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
