package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const tableWaitTimeout = 2 * time.Minute

// Control exposes the table-management operations the Python original's
// DynamoDBControl offered: create, destroy, exists, and find. These are
// explicitly outside the locking core; cmd/lynkctl's `table` subcommands
// are the only caller.
type Control struct {
	client *dynamodb.Client
}

// NewControl builds a Control sharing the given Store's client.
func NewControl(s *Store) *Control {
	return &Control{client: s.client}
}

// CreateTable creates a lock table with the schema Store expects: a
// single string hash key named "name", on-demand billing.
func (c *Control) CreateTable(ctx context.Context, table string) error {
	_, err := c.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: &table,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: awsString(attrName), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: awsString(attrName), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("lockstore/dynamodb: create table %s: %w", table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(c.client)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: &table}, tableWaitTimeout)
}

// DestroyTable deletes table. Succeeds if the table is already absent.
func (c *Control) DestroyTable(ctx context.Context, table string) error {
	_, err := c.client.DeleteTable(ctx, &dynamodb.DeleteTableInput{TableName: &table})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("lockstore/dynamodb: destroy table %s: %w", table, err)
	}
	return nil
}

// Exists reports whether table is present.
func (c *Control) Exists(ctx context.Context, table string) (bool, error) {
	_, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: &table})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("lockstore/dynamodb: describe table %s: %w", table, err)
	}
	return true, nil
}

// List returns the names of every table in the account/region, for
// `lynkctl table list`.
func (c *Control) List(ctx context.Context) ([]string, error) {
	var tables []string
	var startTable *string

	for {
		out, err := c.client.ListTables(ctx, &dynamodb.ListTablesInput{ExclusiveStartTableName: startTable})
		if err != nil {
			return nil, fmt.Errorf("lockstore/dynamodb: list tables: %w", err)
		}
		tables = append(tables, out.TableNames...)
		if out.LastEvaluatedTableName == nil {
			break
		}
		startTable = out.LastEvaluatedTableName
	}

	return tables, nil
}

func awsString(s string) *string { return &s }
