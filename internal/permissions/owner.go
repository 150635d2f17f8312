package permissions

import (
	"errors"
	"fmt"
	"strings"
)

// OwnerType is the closed set of principal kinds that may own a resource.
type OwnerType string

const (
	OwnerTypeUser  OwnerType = "user"
	OwnerTypeGroup OwnerType = "group"
)

// ErrInvalidOwnerType indicates an owner type outside user/group.
var ErrInvalidOwnerType = errors.New("permissions: invalid owner type")

// ParseOwnerType resolves the textual owner type used on the wire.
func ParseOwnerType(value string) (OwnerType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(OwnerTypeUser):
		return OwnerTypeUser, nil
	case string(OwnerTypeGroup):
		return OwnerTypeGroup, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOwnerType, value)
}

// Owner identifies the single principal controlling a resource.
type Owner struct {
	Type OwnerType `json:"owner_type"`
	ID   string    `json:"owner_id"`
}

func (o Owner) validate() error {
	if o.Type != OwnerTypeUser && o.Type != OwnerTypeGroup {
		return fmt.Errorf("%w: %q", ErrInvalidOwnerType, o.Type)
	}
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("permissions: owner id is required")
	}
	return nil
}
