// model/operation.go
package model

import "fmt"

// Operation is a storage action subject to authorization.
type Operation string

const (
	OperationWrite  Operation = "write"
	OperationList   Operation = "list"
	OperationRead   Operation = "read"
	OperationDelete Operation = "delete"

	// Operations below are only available with the account credential.
	OperationCreateContainer Operation = "create_container"
	OperationDeleteContainer Operation = "delete_container"
	OperationGetContainer    Operation = "get_container"
	OperationGetACL          Operation = "get_acl"
	OperationSetACL          Operation = "set_acl"
)

// OperationPermissions maps each SAS-capable operation to the permission it
// requires. Conventions differ between backends, so the mapping is config.
type OperationPermissions map[Operation]Permissions

// DefaultOperationPermissions requires d for deletes.
func DefaultOperationPermissions() OperationPermissions {
	return OperationPermissions{
		OperationWrite:  PermissionWrite,
		OperationList:   PermissionList,
		OperationRead:   PermissionRead,
		OperationDelete: PermissionDelete,
	}
}

// NewOperationPermissions builds the default mapping with the delete
// requirement overridden, e.g. "w" for backends that treat delete as a write.
func NewOperationPermissions(deleteRequires string) (OperationPermissions, error) {
	mapping := DefaultOperationPermissions()
	if deleteRequires == "" {
		return mapping, nil
	}
	p, err := ParsePermissions(deleteRequires)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return nil, fmt.Errorf("delete must require at least one permission")
	}
	mapping[OperationDelete] = p
	return mapping, nil
}

// Required returns the permission needed for op, or false when a SAS can
// never authorize it.
func (m OperationPermissions) Required(op Operation) (Permissions, bool) {
	p, ok := m[op]
	return p, ok
}
