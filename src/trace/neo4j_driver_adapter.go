//go:build neo4j

package trace

import (
	"context"

	neo4j "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type driverExecutor struct {
	driver   neo4j.DriverWithContext
	database string
}

// WrapNeo4jDriver adapts the official Neo4j Go driver so it can be used
// with NewNeo4jSink.
func WrapNeo4jDriver(driver neo4j.DriverWithContext, database string) neo4jExecutor {
	if driver == nil {
		return nil
	}
	return &driverExecutor{driver: driver, database: database}
}

func (d *driverExecutor) Run(ctx context.Context, query string, params map[string]any) error {
	session := d.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: d.database,
	})
	defer session.Close(ctx)
	result, err := session.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

func (d *driverExecutor) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}
