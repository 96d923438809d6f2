// Package store persists universes, entities, relationships, pages and jobs
// in Memgraph over the bolt protocol. All reads and writes are scoped by
// universe id; concurrent pipeline runs against different universes never
// touch each other's rows.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphDriver abstracts query execution so tests can substitute a mock.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
}

func NewMemgraphDriver(ctx context.Context, uri, username, password string) (*MemgraphDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}
	return &MemgraphDriver{Driver: driver}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Character(uuid);",
		"CREATE INDEX ON :Location(uuid);",
		"CREATE INDEX ON :Event(uuid);",
		"CREATE INDEX ON :Object(uuid);",
		"CREATE INDEX ON :Universe(uuid);",
		"CREATE INDEX ON :Job(uuid);",

		"CREATE INDEX ON :Character(universe_id);",
		"CREATE INDEX ON :Location(universe_id);",
		"CREATE INDEX ON :Event(universe_id);",
		"CREATE INDEX ON :Object(universe_id);",
		"CREATE INDEX ON :Page(universe_id);",
		"CREATE INDEX ON :Job(universe_id);",
	}

	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			// The index may already exist; Memgraph errors rather than
			// no-ops on re-creation.
			slog.Warn("failed to create index", "query", q, "error", err)
		}
	}
	return nil
}
