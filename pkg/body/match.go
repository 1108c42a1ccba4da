package body

import "sort"

// ValidModifiers reports whether every token can be assigned to a distinct
// modifier axis of r whose value set contains it. An empty token list is
// valid.
func (r *Region) ValidModifiers(tokens []string) bool {
	_, ok := r.AssignModifiers(tokens)
	return ok
}

// AssignModifiers returns a token to axis assignment for tokens, or false if
// none exists.
//
// Tokens are taken in ascending order of how many axes contain them (ties by
// name) and greedily given the first free axis in name order. That settles
// almost every real model in one pass. When the greedy pass leaves a token
// unassigned the assignment is completed with augmenting paths, so the answer
// matches an exact bipartite matching.
func (r *Region) AssignModifiers(tokens []string) (map[string]string, bool) {
	uniq := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		uniq[normalize(tok)] = struct{}{}
	}
	if len(uniq) == 0 {
		return map[string]string{}, true
	}

	axes := r.Axes()
	if len(uniq) > len(axes) {
		return nil, false
	}

	// candidates[token] lists the axes containing token, in name order.
	candidates := make(map[string][]string, len(uniq))
	ordered := make([]string, 0, len(uniq))
	for tok := range uniq {
		for _, axis := range axes {
			if _, ok := r.modifiers[axis][tok]; ok {
				candidates[tok] = append(candidates[tok], axis)
			}
		}
		if len(candidates[tok]) == 0 {
			return nil, false
		}
		ordered = append(ordered, tok)
	}
	sort.Slice(ordered, func(i, j int) bool {
		fi, fj := len(candidates[ordered[i]]), len(candidates[ordered[j]])
		if fi != fj {
			return fi < fj
		}
		return ordered[i] < ordered[j]
	})

	m := &matcher{
		candidates: candidates,
		axisOwner:  make(map[string]string, len(axes)),
		tokenAxis:  make(map[string]string, len(uniq)),
	}

	var pending []string
	for _, tok := range ordered {
		if !m.assignFree(tok) {
			pending = append(pending, tok)
		}
	}

	for _, tok := range pending {
		if !m.augment(tok, make(map[string]bool, len(axes))) {
			return nil, false
		}
	}

	return m.tokenAxis, true
}

type matcher struct {
	candidates map[string][]string
	axisOwner  map[string]string
	tokenAxis  map[string]string
}

func (m *matcher) assignFree(tok string) bool {
	for _, axis := range m.candidates[tok] {
		if _, taken := m.axisOwner[axis]; !taken {
			m.bind(tok, axis)
			return true
		}
	}
	return false
}

// augment tries to give tok an axis, moving already assigned tokens to other
// axes along an alternating path.
func (m *matcher) augment(tok string, visited map[string]bool) bool {
	for _, axis := range m.candidates[tok] {
		if visited[axis] {
			continue
		}
		visited[axis] = true

		owner, taken := m.axisOwner[axis]
		if !taken || m.augment(owner, visited) {
			m.bind(tok, axis)
			return true
		}
	}
	return false
}

func (m *matcher) bind(tok, axis string) {
	m.axisOwner[axis] = tok
	m.tokenAxis[tok] = axis
}
