package mapping

// Cascade operations in canonical order
const (
	CascadeRemove  = "remove"
	CascadePersist = "persist"
	CascadeRefresh = "refresh"
	CascadeMerge   = "merge"
	CascadeDetach  = "detach"

	// CascadeAll stands for every operation at once
	CascadeAll = "all"
)

// CascadeOperations lists every cascadable operation in canonical order
var CascadeOperations = []string{
	CascadeRemove,
	CascadePersist,
	CascadeRefresh,
	CascadeMerge,
	CascadeDetach,
}

// IsCascadeOperation reports whether op is one of the five operations
func IsCascadeOperation(op string) bool {
	for _, known := range CascadeOperations {
		if op == known {
			return true
		}
	}
	return false
}

// ExpandCascade resolves CascadeAll, removes duplicates and puts known
// operations in canonical order. Unknown operations follow in input order.
func ExpandCascade(ops []string) []string {
	seen := make(map[string]bool, len(ops))
	for _, op := range ops {
		if op == CascadeAll {
			for _, known := range CascadeOperations {
				seen[known] = true
			}
			continue
		}
		seen[op] = true
	}

	out := make([]string, 0, len(seen))
	for _, known := range CascadeOperations {
		if seen[known] {
			out = append(out, known)
			delete(seen, known)
		}
	}
	for _, op := range ops {
		if op != CascadeAll && seen[op] {
			out = append(out, op)
			delete(seen, op)
		}
	}
	return out
}

// CompactCascade intersects ops with the canonical operation set, in
// canonical order, and collapses the full set to []string{CascadeAll}.
// A stored CascadeAll counts as all five operations.
func CompactCascade(ops []string) []string {
	expanded := ExpandCascade(ops)
	present := make(map[string]bool, len(expanded))
	for _, op := range expanded {
		present[op] = true
	}

	out := make([]string, 0, len(CascadeOperations))
	for _, known := range CascadeOperations {
		if present[known] {
			out = append(out, known)
		}
	}

	if len(out) == len(CascadeOperations) {
		return []string{CascadeAll}
	}
	return out
}
