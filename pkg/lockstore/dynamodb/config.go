package dynamodb

// Config selects the AWS region and (optionally) a non-standard
// endpoint, for pointing the client at a local DynamoDB instance during
// development. Credentials are always resolved through the standard AWS
// SDK v2 chain (environment, shared config, EC2/ECS role) and never
// live in this struct.
type Config struct {
	// Region is the AWS region hosting the table.
	Region string

	// Endpoint overrides the DynamoDB endpoint when set.
	Endpoint string
}
