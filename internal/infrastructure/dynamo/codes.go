package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/quotation-api/internal/domain"
)

// CodeRepo manages one-time codes.
// PK: recipient — a PutItem for the same recipient replaces the previous code
// in a single write, which is what keeps at most one active code per
// recipient without a delete+insert window.
type CodeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCodeRepo(client *dynamodb.Client, tableName string) *CodeRepo {
	return &CodeRepo{client: client, tableName: tableName}
}

// Put stores c, replacing any previous code for the same recipient.
func (r *CodeRepo) Put(ctx context.Context, c *domain.OneTimeCode) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal one-time code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// FindByCode looks up a code record by its value via the code GSI, used or
// not. When several records share a value (a stale used record not yet
// TTL-collected), the most recently created one wins.
func (r *CodeRepo) FindByCode(ctx context.Context, code string) (*domain.OneTimeCode, error) {
	return r.queryLatest(ctx, "code-index", "code", code, false)
}

// FindActiveByQuotation returns the unused code bound to a quotation, if any.
// Expiry is the caller's concern; used records are filtered out here.
func (r *CodeRepo) FindActiveByQuotation(ctx context.Context, quotationID string) (*domain.OneTimeCode, error) {
	return r.queryLatest(ctx, "quotation_id-index", "quotation_id", quotationID, true)
}

func (r *CodeRepo) queryLatest(ctx context.Context, index, attr, value string, unusedOnly bool) (*domain.OneTimeCode, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	}
	if unusedOnly {
		input.FilterExpression = aws.String("used = :f")
		input.ExpressionAttributeValues[":f"] = &types.AttributeValueMemberBOOL{Value: false}
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("code not found: %w", domain.ErrNotFound)
	}
	var codes []domain.OneTimeCode
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &codes); err != nil {
		return nil, err
	}
	latest := codes[0]
	for _, c := range codes[1:] {
		if c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	return &latest, nil
}

// Consume flips used to true for the recipient's record, conditional on the
// record still holding the given code value and still being unused. The
// condition is what makes consumption at-most-once under concurrent
// verification attempts: exactly one caller wins, the rest get ErrCodeUsed.
func (r *CodeRepo) Consume(ctx context.Context, recipient, code string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("recipient", recipient),
		UpdateExpression:    aws.String("SET used = :t"),
		ConditionExpression: aws.String("#code = :c AND used = :f"),
		ExpressionAttributeNames: map[string]string{
			"#code": "code",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
			":f": &types.AttributeValueMemberBOOL{Value: false},
			":c": &types.AttributeValueMemberS{Value: code},
		},
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("consume one-time code: %w", domain.ErrCodeUsed)
	}
	return err
}

// MarkUsed force-marks the recipient's record used, unconditionally. Called
// when the attempt budget is exhausted.
func (r *CodeRepo) MarkUsed(ctx context.Context, recipient string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("recipient", recipient),
		UpdateExpression:    aws.String("SET used = :t"),
		ConditionExpression: aws.String("attribute_exists(recipient)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("code not found: %w", domain.ErrNotFound)
	}
	return err
}

// IncrementAttempts adds one failed attempt to the recipient's record and
// returns the new count.
func (r *CodeRepo) IncrementAttempts(ctx context.Context, recipient string) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("recipient", recipient),
		UpdateExpression:    aws.String("ADD attempts :one"),
		ConditionExpression: aws.String("attribute_exists(recipient)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if isConditionalCheckFailed(err) {
		return 0, fmt.Errorf("code not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	var c domain.OneTimeCode
	if err := attributevalue.UnmarshalMap(out.Attributes, &c); err != nil {
		return 0, err
	}
	return c.Attempts, nil
}

// Delete removes the recipient's record. Used to clean up a persisted but
// undelivered code.
func (r *CodeRepo) Delete(ctx context.Context, recipient string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("recipient", recipient),
	})
	return err
}

func isConditionalCheckFailed(err error) bool {
	var ccfe *types.ConditionalCheckFailedException
	return errors.As(err, &ccfe)
}
