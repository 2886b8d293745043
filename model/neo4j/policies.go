// model/neo4j/policies.go
package sas_neo4j

// Property keys on ACCESS_POLICY and CONTAINER nodes
const (
	PropName       = "name"
	PropID         = "id"
	PropPermission = "permission"
	PropStart      = "start"
	PropExpiry     = "expiry"
	PropACLETag    = "aclEtag"
)
