package store

import (
	"context"
	"fmt"

	"github.com/kendall-kelly/inventory-api/schema"
)

// Backend names accepted by New.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongodb"
	BackendDynamo   = "dynamodb"
)

// Options selects and configures a backend.
type Options struct {
	Backend        string
	DatabaseURL    string // sqlite path or postgres DSN
	MongoURI       string
	MongoDatabase  string
	DynamoPrefix   string
	DynamoEndpoint string
	AWSRegion      string
}

// New opens the backend named by opts.Backend.
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil

	case BackendSQLite, BackendPostgres:
		db, err := OpenGorm(opts.Backend, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db)

	case BackendMongo:
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase)

	case BackendDynamo:
		s, err := NewDynamoStore(ctx, opts.DynamoPrefix, opts.DynamoEndpoint, opts.AWSRegion)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureTables(ctx, schema.Collections()); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
}
