package permissions

import "time"

// Record is the materialized rwx grant record for one resource.
type Record struct {
	ResourceType string
	ResourceID   string
	Perms        Triple
	UpdatedAt    time.Time
	UpdatedBy    *string
}

// DefaultPerms is the triple applied while no record has been stored for an
// owned resource: the owner holds rwx, group and world hold nothing
// (private by default, rwx------). It is derived, never materialized.
var DefaultPerms = Triple{Owner: NewSet(Read, Write, Execute)}
