// model/neo4j/nodes.go
package sas_neo4j

// Node Labels
const (
	// LabelContainer represents a blob container that owns stored access policies
	LabelContainer = "CONTAINER"

	// LabelAccessPolicy represents a named stored access policy
	LabelAccessPolicy = "ACCESS_POLICY"
)
