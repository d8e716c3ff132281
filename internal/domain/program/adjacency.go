package program

// EnsureGroupAdjacency reorders rowIDs so that rows sharing a group are
// contiguous. groupOf maps a row ID to its group ID; rows missing from the
// map or mapped to "" are standalone.
//
// Walking the input, a standalone row is placed as is. The first member of a
// group pulls every still unplaced member of that group, in input order, to
// the current position. Standalone rows keep their relative order, and the
// result is a fixed point: resolving it again returns the same order.
// Duplicate IDs are emitted once.
func EnsureGroupAdjacency(rowIDs []string, groupOf map[string]string) []string {
	members := make(map[string][]string)
	for _, id := range rowIDs {
		if g := groupOf[id]; g != "" {
			members[g] = append(members[g], id)
		}
	}

	out := make([]string, 0, len(rowIDs))
	placed := make(map[string]bool, len(rowIDs))
	for _, id := range rowIDs {
		if placed[id] {
			continue
		}
		g := groupOf[id]
		if g == "" {
			out = append(out, id)
			placed[id] = true
			continue
		}
		for _, m := range members[g] {
			if !placed[m] {
				out = append(out, m)
				placed[m] = true
			}
		}
	}
	return out
}

// IsGroupAdjacent reports whether every group in rowIDs occupies one
// contiguous run.
func IsGroupAdjacent(rowIDs []string, groupOf map[string]string) bool {
	closed := make(map[string]bool)
	current := ""
	for _, id := range rowIDs {
		g := groupOf[id]
		if g == current {
			continue
		}
		if current != "" {
			closed[current] = true
		}
		if g != "" && closed[g] {
			return false
		}
		current = g
	}
	return true
}
