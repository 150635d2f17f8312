package permissions

import (
	"errors"
	"fmt"
	"strings"
)

// Permission is a single access bit in the rwx vector.
type Permission uint8

const (
	Read Permission = 1 << iota
	Write
	Execute
)

var (
	// ErrUnknownPermission indicates a permission name outside read/write/execute.
	ErrUnknownPermission = errors.New("permissions: unknown permission")
	// ErrInvalidPermissionString indicates a malformed rwx string.
	ErrInvalidPermissionString = errors.New("permissions: invalid permission string")
)

func (p Permission) String() string {
	switch p {
	case Read:
		return "read"
	case Write:
		return "write"
	case Execute:
		return "execute"
	}
	return fmt.Sprintf("permission(0b%03b)", uint8(p))
}

func (p Permission) valid() bool {
	return p == Read || p == Write || p == Execute
}

// ParsePermission resolves the textual permission names used on the wire.
func ParsePermission(value string) (Permission, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "read", "r":
		return Read, nil
	case "write", "w":
		return Write, nil
	case "execute", "x":
		return Execute, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPermission, value)
}

// Set is a combination of rwx bits for one of the owner/group/world slots.
type Set uint8

// NewSet combines individual permissions into a set.
func NewSet(perms ...Permission) Set {
	var s Set
	for _, p := range perms {
		s |= Set(p)
	}
	return s
}

// Has reports whether the set contains the given permission.
func (s Set) Has(p Permission) bool {
	return uint8(s)&uint8(p) != 0
}

// Add returns a copy of the set with the permission included.
func (s Set) Add(p Permission) Set {
	return s | Set(p)
}

// String encodes the set in the canonical 3-character form, e.g. "rw-".
func (s Set) String() string {
	buf := [3]byte{'-', '-', '-'}
	if s.Has(Read) {
		buf[0] = 'r'
	}
	if s.Has(Write) {
		buf[1] = 'w'
	}
	if s.Has(Execute) {
		buf[2] = 'x'
	}
	return string(buf[:])
}

// ParseSet decodes a 3-character rwx string. Each position admits exactly one
// symbol ('r', 'w', 'x' respectively) or '-'.
func ParseSet(value string) (Set, error) {
	if len(value) != 3 {
		return 0, fmt.Errorf("%w: %q must be exactly 3 characters", ErrInvalidPermissionString, value)
	}

	var s Set
	for i, want := range [3]struct {
		symbol byte
		perm   Permission
	}{
		{'r', Read},
		{'w', Write},
		{'x', Execute},
	} {
		switch value[i] {
		case want.symbol:
			s = s.Add(want.perm)
		case '-':
		default:
			return 0, fmt.Errorf("%w: unexpected %q at position %d of %q", ErrInvalidPermissionString, value[i], i, value)
		}
	}
	return s, nil
}

// Triple is the full owner/group/world permission vector of a resource.
type Triple struct {
	Owner Set
	Group Set
	World Set
}

// String encodes the triple in the 9-character form, e.g. "rwxr-x---".
func (t Triple) String() string {
	return t.Owner.String() + t.Group.String() + t.World.String()
}

// ParseTriple decodes a 9-character permission string into its three sets.
func ParseTriple(value string) (Triple, error) {
	if len(value) != 9 {
		return Triple{}, fmt.Errorf("%w: %q must be exactly 9 characters", ErrInvalidPermissionString, value)
	}

	owner, err := ParseSet(value[0:3])
	if err != nil {
		return Triple{}, err
	}
	group, err := ParseSet(value[3:6])
	if err != nil {
		return Triple{}, err
	}
	world, err := ParseSet(value[6:9])
	if err != nil {
		return Triple{}, err
	}
	return Triple{Owner: owner, Group: group, World: world}, nil
}
