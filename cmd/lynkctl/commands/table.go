package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stealthycoin/lynk/pkg/lockstore/dynamodb"
)

var tableName string

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Manage the DynamoDB table backing a dynamodb-type store",
}

var tableCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the lock table",
	RunE:  runTableCreate,
}

var tableDestroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete the lock table",
	RunE:  runTableDestroy,
}

var tableListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tables in the configured account/region",
	RunE:  runTableList,
}

func init() {
	tableCmd.PersistentFlags().StringVar(&tableName, "table", "", "table name (defaults to store.table from config)")
	tableCmd.AddCommand(tableCreateCmd, tableDestroyCmd, tableListCmd)
}

func dynamoControl(cmd *cobra.Command) (*dynamodb.Control, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	if cfg.Store.Type != "dynamodb" || cfg.Store.DynamoDB == nil {
		return nil, "", fmt.Errorf("table management requires store.type: dynamodb with a dynamodb section configured")
	}

	table := tableName
	if table == "" {
		table = cfg.Store.Table
	}
	if table == "" {
		table = "locks"
	}

	store, err := dynamodb.New(cmd.Context(), table, dynamodb.Config{
		Region:   cfg.Store.DynamoDB.Region,
		Endpoint: cfg.Store.DynamoDB.Endpoint,
	})
	if err != nil {
		return nil, "", fmt.Errorf("connecting to dynamodb: %w", err)
	}

	return dynamodb.NewControl(store), table, nil
}

func runTableCreate(cmd *cobra.Command, args []string) error {
	control, table, err := dynamoControl(cmd)
	if err != nil {
		return err
	}
	if err := control.CreateTable(cmd.Context(), table); err != nil {
		return fmt.Errorf("create table %q: %w", table, err)
	}
	fmt.Printf("created table %q\n", table)
	return nil
}

func runTableDestroy(cmd *cobra.Command, args []string) error {
	control, table, err := dynamoControl(cmd)
	if err != nil {
		return err
	}
	if err := control.DestroyTable(cmd.Context(), table); err != nil {
		return fmt.Errorf("destroy table %q: %w", table, err)
	}
	fmt.Printf("destroyed table %q\n", table)
	return nil
}

func runTableList(cmd *cobra.Command, args []string) error {
	control, _, err := dynamoControl(cmd)
	if err != nil {
		return err
	}
	tables, err := control.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	for _, t := range tables {
		fmt.Println(t)
	}
	return nil
}
