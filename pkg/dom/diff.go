package dom

import "sort"

// DiffStrategy selects how DiffChildren decides which retained children
// move.
type DiffStrategy int

const (
	// MinimalMoves keeps the largest set of retained children whose
	// relative order is unchanged, always including children whose index
	// did not change, and moves the rest.
	MinimalMoves DiffStrategy = iota

	// PositionalMoves moves every retained child whose index changed.
	PositionalMoves
)

func (s DiffStrategy) String() string {
	if s == PositionalMoves {
		return "positional"
	}
	return "minimal"
}

// ParseDiffStrategy maps "minimal" and "positional" to a strategy.
func ParseDiffStrategy(s string) (DiffStrategy, bool) {
	switch s {
	case "", "minimal":
		return MinimalMoves, true
	case "positional":
		return PositionalMoves, true
	}
	return MinimalMoves, false
}

// ChildrenDiff is the argument set of one ManageChildren call.
// MoveFrom/MoveTo and AddTags/AddAt are index-paired.
type ChildrenDiff struct {
	MoveFrom []int
	MoveTo   []int
	AddTags  []int
	AddAt    []int
	RemoveAt []int
}

// Empty reports whether the diff changes nothing.
func (d ChildrenDiff) Empty() bool {
	return len(d.MoveFrom) == 0 && len(d.AddTags) == 0 && len(d.RemoveAt) == 0
}

// DiffChildren computes the operations turning old into next. Both lists
// must be free of duplicates.
//
// Tags of next missing from old become additions at their new index; old
// indices whose tag is missing from next become removals. Retained tags
// either stay or move according to strategy; a tag whose index is the same
// in both lists never appears in the result.
func DiffChildren(old, next []int, strategy DiffStrategy) ChildrenDiff {
	var d ChildrenDiff

	nextIndex := make(map[int]int, len(next))
	for i, tag := range next {
		nextIndex[tag] = i
	}
	oldSet := make(map[int]struct{}, len(old))
	for _, tag := range old {
		oldSet[tag] = struct{}{}
	}

	for i, tag := range next {
		if _, ok := oldSet[tag]; !ok {
			d.AddTags = append(d.AddTags, tag)
			d.AddAt = append(d.AddAt, i)
		}
	}

	// retained holds (from, to) pairs in old order.
	var from, to []int
	for i, tag := range old {
		j, ok := nextIndex[tag]
		if !ok {
			d.RemoveAt = append(d.RemoveAt, i)
			continue
		}
		from = append(from, i)
		to = append(to, j)
	}

	var stays []bool
	if strategy == PositionalMoves {
		stays = make([]bool, len(from))
		for k := range from {
			stays[k] = from[k] == to[k]
		}
	} else {
		stays = stableChain(from, to)
	}

	for k := range from {
		if !stays[k] {
			d.MoveFrom = append(d.MoveFrom, from[k])
			d.MoveTo = append(d.MoveTo, to[k])
		}
	}
	return d
}

// stableChain picks the heaviest chain of retained children with
// increasing destination indices. Children with an unchanged index weigh
// more than all others together, so every such child is in the chain.
func stableChain(from, to []int) []bool {
	n := len(to)
	pinned := n + 1
	weight := make([]int, n)
	best := make([]int, n)
	prev := make([]int, n)

	top := -1
	for i := 0; i < n; i++ {
		weight[i] = 1
		if from[i] == to[i] {
			weight[i] += pinned
		}
		best[i] = weight[i]
		prev[i] = -1
		for j := 0; j < i; j++ {
			if to[j] < to[i] && best[j]+weight[i] > best[i] {
				best[i] = best[j] + weight[i]
				prev[i] = j
			}
		}
		if top < 0 || best[i] > best[top] {
			top = i
		}
	}

	stays := make([]bool, n)
	for i := top; i >= 0; i = prev[i] {
		stays[i] = true
	}
	return stays
}

// Apply replays the diff on old the way a host applies ManageChildren:
// every index in MoveFrom and RemoveAt is removed, then moved and added
// tags are inserted at their destination indices in ascending order.
// Indices are assumed valid.
func (d ChildrenDiff) Apply(old []int) []int {
	drop := make(map[int]bool, len(d.MoveFrom)+len(d.RemoveAt))
	type placement struct{ at, tag int }
	var inserts []placement
	for k, i := range d.MoveFrom {
		drop[i] = true
		inserts = append(inserts, placement{d.MoveTo[k], old[i]})
	}
	for _, i := range d.RemoveAt {
		drop[i] = true
	}
	for k, tag := range d.AddTags {
		inserts = append(inserts, placement{d.AddAt[k], tag})
	}

	out := make([]int, 0, len(old)+len(d.AddTags))
	for i, tag := range old {
		if !drop[i] {
			out = append(out, tag)
		}
	}
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].at < inserts[j].at })
	for _, p := range inserts {
		out = append(out, 0)
		copy(out[p.at+1:], out[p.at:])
		out[p.at] = p.tag
	}
	return out
}
