package status

import (
	"sort"
	"time"
)

// Record captures the deployment state of a single vehicle.
type Record struct {
	Vehicle    string
	Deployed   bool
	DeployedAt time.Time
	Files      []string
}

// Equal reports whether two records carry the same state. Timestamps are
// compared at second precision, matching storage resolution.
func (r Record) Equal(other Record) bool {
	if r.Vehicle != other.Vehicle || r.Deployed != other.Deployed {
		return false
	}
	if !r.DeployedAt.Truncate(time.Second).Equal(other.DeployedAt.Truncate(time.Second)) {
		return false
	}
	if len(r.Files) != len(other.Files) {
		return false
	}
	a := append([]string{}, r.Files...)
	b := append([]string{}, other.Files...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
