// model/neo4j/relationships.go
package sas_neo4j

// Relationship Types
const (
	// RelHasPolicy connects a container to each of its stored access policies
	RelHasPolicy = "HAS_POLICY"
)
