package engine

import (
	"fmt"
	"sort"
	"strings"
)

// Order arranges engine instances into the attempt order implied by their
// descriptors' tryBefore/tryAfter constraints.
//
// Constraints apply between engine types; only types present in the input
// participate, so a constraint naming an absent type is inert. The sort
// proceeds in rounds: each round takes every type with no unsatisfied
// predecessor and emits all of its instances together, sorted by ascending
// instance id. Instance ids are ULIDs, so ties between same-type instances
// resolve to creation order and the result is deterministic for a given set
// of rows.
//
// If the constraints among the present types form a cycle, Order returns
// ErrCycle naming the types involved.
func (r *Registry) Order(engines []Engine) ([]Engine, error) {
	if len(engines) <= 1 {
		return engines, nil
	}

	byType := make(map[string][]Engine)
	for _, e := range engines {
		byType[e.Type()] = append(byType[e.Type()], e)
	}

	// Edge a -> b means a's instances come before b's.
	succ := make(map[string]map[string]bool)
	indegree := make(map[string]int, len(byType))
	for t := range byType {
		indegree[t] = 0
	}
	addEdge := func(from, to string) {
		if from == to {
			return
		}
		if _, present := byType[from]; !present {
			return
		}
		if _, present := byType[to]; !present {
			return
		}
		if succ[from] == nil {
			succ[from] = make(map[string]bool)
		}
		if !succ[from][to] {
			succ[from][to] = true
			indegree[to]++
		}
	}

	r.mu.RLock()
	for t := range byType {
		d, ok := r.descriptors[t]
		if !ok {
			continue
		}
		for _, other := range d.TryBefore {
			addEdge(t, other)
		}
		for _, other := range d.TryAfter {
			addEdge(other, t)
		}
	}
	r.mu.RUnlock()

	ordered := make([]Engine, 0, len(engines))
	remaining := len(byType)
	for remaining > 0 {
		var ready []string
		for t, deg := range indegree {
			if deg == 0 {
				ready = append(ready, t)
			}
		}
		if len(ready) == 0 {
			var cyclic []string
			for t, deg := range indegree {
				if deg > 0 {
					cyclic = append(cyclic, t)
				}
			}
			sort.Strings(cyclic)
			return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(cyclic, ", "))
		}

		var batch []Engine
		for _, t := range ready {
			batch = append(batch, byType[t]...)
			for next := range succ[t] {
				indegree[next]--
			}
			delete(indegree, t)
			remaining--
		}
		sort.Slice(batch, func(i, j int) bool {
			return batch[i].Backend().ID.Compare(batch[j].Backend().ID) < 0
		})
		ordered = append(ordered, batch...)
	}
	return ordered, nil
}
