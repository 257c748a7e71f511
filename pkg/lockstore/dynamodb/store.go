// Package dynamodb implements lockstore.Store against a DynamoDB table,
// the canonical backing store the spec describes: a cloud-hosted,
// strongly-consistent key-value table with conditional single-item
// writes. lockstore.Condition values compile to
// expression.ConditionBuilder, PutItem/UpdateItem/DeleteItem carry the
// resulting ConditionExpression, and a failed condition surfaces from
// AWS as *types.ConditionalCheckFailedException, translated back to
// lockstore.ErrConditionFailed.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/stealthycoin/lynk/pkg/lockstore"
)

const (
	attrName          = "name"
	attrVersionNumber = "version_number"
	attrLeaseSeconds  = "lease_duration_seconds"
	attrHostID        = "host_identifier"
)

// Store is a DynamoDB-backed lockstore.Store.
type Store struct {
	client *dynamodb.Client
	table  string
}

var _ lockstore.Store = (*Store)(nil)

// New loads the default AWS config (honoring Config.Region and an
// optional Config.Endpoint override) and returns a Store bound to
// table.
func New(ctx context.Context, table string, cfg Config) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("lockstore/dynamodb: load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
		}
	})

	return &Store{client: client, table: table}, nil
}

func keyFor(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrName: &types.AttributeValueMemberS{Value: name},
	}
}

// buildCondition compiles a lockstore.Condition into the
// ConditionExpression DynamoDB expects. nil reports "no condition".
func buildCondition(cond *lockstore.Condition) (*expression.ConditionBuilder, error) {
	if cond == nil {
		return nil, nil
	}

	nameAttr := expression.Name(attrName)
	versionAttr := expression.Name(attrVersionNumber)

	var builder expression.ConditionBuilder
	switch {
	case cond.IsLockFree():
		builder = expression.AttributeNotExists(nameAttr)
	case cond.IsLockExpired(), cond.IsWeOwnLock():
		builder = expression.And(
			expression.AttributeExists(nameAttr),
			expression.Equal(versionAttr, expression.Value(cond.PriorVersion())),
		)
	case cond.IsLockFreeOrExpired():
		builder = expression.Or(
			expression.AttributeNotExists(nameAttr),
			expression.Equal(versionAttr, expression.Value(cond.PriorVersion())),
		)
	default:
		return nil, fmt.Errorf("lockstore/dynamodb: unsupported condition")
	}

	return &builder, nil
}

func (s *Store) Put(ctx context.Context, rec lockstore.Record, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	condBuilder, err := buildCondition(cond)
	if err != nil {
		return err
	}

	item := map[string]types.AttributeValue{
		attrName:          &types.AttributeValueMemberS{Value: rec.Name},
		attrVersionNumber: &types.AttributeValueMemberS{Value: rec.VersionNumber},
		attrLeaseSeconds:  &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(rec.LeaseDuration/time.Second), 10)},
		attrHostID:        &types.AttributeValueMemberS{Value: rec.HostIdentifier},
	}

	input := &dynamodb.PutItemInput{
		TableName: &s.table,
		Item:      item,
	}

	if condBuilder != nil {
		expr, err := expression.NewBuilder().WithCondition(*condBuilder).Build()
		if err != nil {
			return fmt.Errorf("lockstore/dynamodb: build expression: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	_, err = s.client.PutItem(ctx, input)
	return translateError(err)
}

func (s *Store) Update(ctx context.Context, name string, versionNumber string, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	condBuilder, err := buildCondition(cond)
	if err != nil {
		return err
	}
	// Update also requires the record to exist, regardless of cond.
	existsCond := expression.AttributeExists(expression.Name(attrName))
	if condBuilder != nil {
		combined := expression.And(existsCond, *condBuilder)
		condBuilder = &combined
	} else {
		condBuilder = &existsCond
	}

	update := expression.Set(expression.Name(attrVersionNumber), expression.Value(versionNumber))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(*condBuilder).Build()
	if err != nil {
		return fmt.Errorf("lockstore/dynamodb: build expression: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &s.table,
		Key:                       keyFor(name),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return translateUpdateDeleteError(ctx, s, name, err)
}

func (s *Store) Delete(ctx context.Context, name string, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	condBuilder, err := buildCondition(cond)
	if err != nil {
		return err
	}
	existsCond := expression.AttributeExists(expression.Name(attrName))
	if condBuilder != nil {
		combined := expression.And(existsCond, *condBuilder)
		condBuilder = &combined
	} else {
		condBuilder = &existsCond
	}

	expr, err := expression.NewBuilder().WithCondition(*condBuilder).Build()
	if err != nil {
		return fmt.Errorf("lockstore/dynamodb: build expression: %w", err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 &s.table,
		Key:                       keyFor(name),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return translateUpdateDeleteError(ctx, s, name, err)
}

func (s *Store) Get(ctx context.Context, name string) (lockstore.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return lockstore.Record{}, false, err
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.table,
		Key:            keyFor(name),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return lockstore.Record{}, false, translateError(err)
	}
	if out.Item == nil {
		return lockstore.Record{}, false, nil
	}

	rec, err := recordFromItem(out.Item)
	if err != nil {
		return lockstore.Record{}, false, err
	}

	return rec, true, nil
}

func recordFromItem(item map[string]types.AttributeValue) (lockstore.Record, error) {
	var rec lockstore.Record

	name, ok := item[attrName].(*types.AttributeValueMemberS)
	if !ok {
		return rec, fmt.Errorf("lockstore/dynamodb: missing %s attribute", attrName)
	}
	rec.Name = name.Value

	version, ok := item[attrVersionNumber].(*types.AttributeValueMemberS)
	if !ok {
		return rec, fmt.Errorf("lockstore/dynamodb: missing %s attribute", attrVersionNumber)
	}
	rec.VersionNumber = version.Value

	if lease, ok := item[attrLeaseSeconds].(*types.AttributeValueMemberN); ok {
		seconds, err := strconv.ParseInt(lease.Value, 10, 64)
		if err != nil {
			return rec, fmt.Errorf("lockstore/dynamodb: decode %s: %w", attrLeaseSeconds, err)
		}
		rec.LeaseDuration = time.Duration(seconds) * time.Second
	}

	if host, ok := item[attrHostID].(*types.AttributeValueMemberS); ok {
		rec.HostIdentifier = host.Value
	}

	return rec, nil
}

func awsBool(b bool) *bool { return &b }

// translateError maps a ConditionalCheckFailedException to
// lockstore.ErrConditionFailed and wraps anything else for context.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return lockstore.ErrConditionFailed
	}
	return fmt.Errorf("lockstore/dynamodb: %w", err)
}

// translateUpdateDeleteError additionally distinguishes "record absent"
// from "condition failed" for Update/Delete, since DynamoDB reports both
// as the same ConditionalCheckFailedException when the existence
// requirement is folded into the condition expression.
func translateUpdateDeleteError(ctx context.Context, s *Store, name string, err error) error {
	if err == nil {
		return nil
	}
	var condErr *types.ConditionalCheckFailedException
	if !errors.As(err, &condErr) {
		return fmt.Errorf("lockstore/dynamodb: %w", err)
	}

	_, present, getErr := s.Get(ctx, name)
	if getErr != nil {
		return lockstore.ErrConditionFailed
	}
	if !present {
		return lockstore.ErrNoSuchLock
	}
	return lockstore.ErrConditionFailed
}
