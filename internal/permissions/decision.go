package permissions

import "fmt"

// Via records which slot of the rwx vector justified a decision.
type Via string

const (
	ViaOwner Via = "owner"
	ViaGroup Via = "group"
	ViaWorld Via = "world"
	ViaNone  Via = "none"
)

// Decision is the outcome of a permission check. A denial is a normal
// outcome, not an error; the reason is always human readable.
type Decision struct {
	Allowed bool   `json:"has_permission"`
	Reason  string `json:"reason"`
	Via     Via    `json:"via"`
}

// ReasonNoOwner is returned for resources that were never registered.
const ReasonNoOwner = "no owner registered"

// ReasonWorldDenied is the terminal denial after every slot failed to grant.
const ReasonWorldDenied = "insufficient permissions: not owner, not in group, no world access"

func allowedBy(via Via, p Permission) Decision {
	return Decision{
		Allowed: true,
		Reason:  fmt.Sprintf("%s permissions grant %s", via, p),
		Via:     via,
	}
}

func deniedByOwner(p Permission) Decision {
	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("owner permissions do not include %s", p),
		Via:     ViaOwner,
	}
}

func denied(reason string) Decision {
	return Decision{
		Allowed: false,
		Reason:  reason,
		Via:     ViaNone,
	}
}
