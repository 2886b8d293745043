// model/permission.go
package model

import (
	"fmt"
	"strings"
)

// Permissions is the set of actions a shared access signature grants.
type Permissions uint8

const (
	PermissionRead Permissions = 1 << iota
	PermissionWrite
	PermissionDelete
	PermissionList
)

// permissionLetters is the canonical order used when a set is rendered into
// the sp query parameter and into the string-to-sign.
var permissionLetters = []struct {
	perm   Permissions
	letter byte
}{
	{PermissionRead, 'r'},
	{PermissionWrite, 'w'},
	{PermissionDelete, 'd'},
	{PermissionList, 'l'},
}

// ParsePermissions accepts the letters r, w, d and l in any order.
func ParsePermissions(s string) (Permissions, error) {
	var p Permissions
	for i := 0; i < len(s); i++ {
		found := false
		for _, pl := range permissionLetters {
			if s[i] == pl.letter {
				p |= pl.perm
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown permission %q in %q", s[i], s)
		}
	}
	return p, nil
}

func (p Permissions) String() string {
	var b strings.Builder
	for _, pl := range permissionLetters {
		if p&pl.perm != 0 {
			b.WriteByte(pl.letter)
		}
	}
	return b.String()
}

// Has reports whether every permission in required is granted.
func (p Permissions) Has(required Permissions) bool {
	return p&required == required
}

func (p Permissions) IsEmpty() bool {
	return p == 0
}

func (p Permissions) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Permissions) UnmarshalText(text []byte) error {
	parsed, err := ParsePermissions(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
