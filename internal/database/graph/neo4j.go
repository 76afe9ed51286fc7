package graph

import (
	"context"
	"fmt"
	"time"

	"chemsafe/internal/chemgraph"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphClient defines the interface for graph database operations.
type GraphClient interface {
	Close(ctx context.Context) error
	Reset(ctx context.Context) error
	IngestGraph(ctx context.Context, export chemgraph.GraphExport) error
	ExecuteCypher(ctx context.Context, query string) ([]map[string]any, error)
}

// Neo4jClient implements GraphClient for Neo4j.
type Neo4jClient struct {
	driver neo4j.DriverWithContext
	dbName string
}

// NewNeo4jClient creates a new Neo4j client.
func NewNeo4jClient(uri, username, password, dbName string) (*Neo4jClient, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	return &Neo4jClient{
		driver: driver,
		dbName: dbName,
	}, nil
}

func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// Reset deletes all data in the graph.
func (c *Neo4jClient) Reset(ctx context.Context) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.dbName})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
	})
	return err
}

// IngestGraph mirrors a chemgraph export into Neo4j. The mirror is replaced
// wholesale: existing data is cleared, then nodes and typed relationships
// are written in one managed transaction.
func (c *Neo4jClient) IngestGraph(ctx context.Context, export chemgraph.GraphExport) error {
	if err := c.Reset(ctx); err != nil {
		return fmt.Errorf("reset before ingest: %w", err)
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.dbName})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// 1. Nodes
		for _, node := range export.Nodes {
			if err := mergeNode(ctx, tx, node); err != nil {
				return nil, err
			}
		}
		// 2. Relationships
		for _, edge := range export.Edges {
			if err := createRelationship(ctx, tx, edge); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func mergeNode(ctx context.Context, tx neo4j.ManagedTransaction, node chemgraph.ExportedNode) error {
	var query string
	switch node.Attrs.Kind {
	case chemgraph.KindManufacturer:
		query = `
			MERGE (m:Manufacturer {key: $key})
			SET m.name = $name
		`
	default:
		query = `
			MERGE (c:Chemical {cas: $key})
			SET c.name = $name,
				c.formula = $formula,
				c.supplier = $supplier,
				c.ghs_class = $ghs_class,
				c.environmental_risk = $env_risk,
				c.hazard_classes = $hazard_classes,
				c.p_statements = $p_statements
		`
	}
	params := map[string]any{
		"key":            node.Key,
		"name":           node.Attrs.Name,
		"formula":        node.Attrs.Formula,
		"supplier":       node.Attrs.Supplier,
		"ghs_class":      node.Attrs.GHSClass,
		"env_risk":       node.Attrs.EnvRisk,
		"hazard_classes": node.Attrs.HazardClasses,
		"p_statements":   node.Attrs.PStatements,
	}
	// optional numerics only when recorded
	if node.Attrs.MolecularWeight != nil {
		params["weight"] = *node.Attrs.MolecularWeight
		query += ", c.molecular_weight = $weight"
	}
	if node.Attrs.IDLH != nil {
		params["idlh"] = *node.Attrs.IDLH
		query += ", c.idlh = $idlh"
	}
	_, err := tx.Run(ctx, query, params)
	return err
}

func createRelationship(ctx context.Context, tx neo4j.ManagedTransaction, edge chemgraph.ExportedEdge) error {
	var query string
	params := map[string]any{
		"src": edge.SrcKey,
		"dst": edge.DstKey,
	}

	switch edge.Kind {
	case chemgraph.EdgeIncompatibleWith:
		query = `
			MATCH (a:Chemical {cas: $src})
			MATCH (b:Chemical {cas: $dst})
			CREATE (a)-[:INCOMPATIBLE_WITH {
				rule: $rule, source: $source, justification: $justification,
				group_source: $group_source, group_target: $group_target
			}]->(b)
		`
		params["rule"] = edge.Attrs.RuleCode
		params["source"] = edge.Attrs.Source
		params["justification"] = edge.Attrs.Justification
		params["group_source"] = edge.Attrs.GroupSource
		params["group_target"] = edge.Attrs.GroupTarget
	case chemgraph.EdgeManufacturedBy:
		query = `
			MATCH (a:Chemical {cas: $src})
			MATCH (b:Manufacturer {key: $dst})
			CREATE (a)-[:MANUFACTURED_BY]->(b)
		`
	case chemgraph.EdgeProductFamily:
		query = `
			MATCH (a:Chemical {cas: $src})
			MATCH (b:Chemical {cas: $dst})
			CREATE (a)-[:PRODUCT_FAMILY {manufacturer: $manufacturer}]->(b)
		`
		params["manufacturer"] = edge.Attrs.Source
	case chemgraph.EdgeSimilarTo:
		query = `
			MATCH (a:Chemical {cas: $src})
			MATCH (b:Chemical {cas: $dst})
			CREATE (a)-[:SIMILAR_TO {score: $score, similarity_type: $similarity_type}]->(b)
		`
		params["score"] = edge.Attrs.Score
		params["similarity_type"] = edge.Attrs.SimilarityType
	default:
		return nil
	}

	_, err := tx.Run(ctx, query, params)
	return err
}
