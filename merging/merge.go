// Package merging implements action merging (spec §4.2): given a group of
// actions that share an identical effect fingerprint, it computes the
// minimal relevant precondition FactSet that characterizes the group as a
// whole, eliminating dependencies on variables whose precondition values
// the group covers completely (spanning variables).
package merging

import (
	"errors"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/sasscope/sasscope/factset"
	"github.com/sasscope/sasscope/sastask"
)

// ErrFingerprintMismatch is returned when Merge is called with a group of
// actions that do not all share the same effect fingerprint. A correctly
// partitioned caller (backward.Run) never triggers this; it surfaces a
// programmer error in the partitioning logic.
var ErrFingerprintMismatch = errors.New("merging: group contains actions with differing effect fingerprints")

// Stats accumulates merge bookkeeping counters.
type Stats struct {
	Attempts int
}

// Merge computes the merged relevant precondition FactSet for group, a
// set of actions sharing an identical effect fingerprint over relevant.
// domains supplies each variable's full value range, used both to expand
// factset.AnyValue sentinels and to test spanning-variable coverage.
func Merge(group []*sastask.Action, relevant map[sastask.VarID]bool, domains *factset.FactSet) (*factset.FactSet, Stats, error) {
	if len(group) == 0 {
		return factset.New(), Stats{}, nil
	}
	if len(group) == 1 {
		return expandFacts(group[0].Pre, domains), Stats{}, nil
	}

	fp := group[0].Fingerprint(relevant)
	for _, a := range group[1:] {
		if a.Fingerprint(relevant) != fp {
			return nil, Stats{}, ErrFingerprintMismatch
		}
	}
	stats := Stats{Attempts: 1}

	for _, a := range group {
		if len(a.Pre) == 0 {
			// The group can be triggered unconditionally.
			return factset.New(), stats, nil
		}
	}

	union := factset.New()
	for _, a := range group {
		union.Union(expandFacts(a.Pre, domains))
	}

	spanning := spanningVariables(group, domains)
	if len(spanning) == 0 {
		return union, stats, nil
	}
	sortSpanning(spanning, domains)

	visited := make(map[*sastask.Action]bool)
	result := factset.New()
	for _, vs := range spanning {
		matching := actionsWithVar(group, vs)
		if len(matching) == 0 {
			continue
		}
		for _, proj := range partitionByProjection(group, vs) {
			if !projectionHasMatch(proj.actions, matching) {
				continue
			}
			required := requiredValues(proj.actions, vs, domains)
			result.Union(expandFacts(proj.context, domains))
			if required.Count() != domains.DomainSize(vs) {
				factset.ForEachBit(required, func(x uint) {
					result.Add(vs, x)
				})
			}
			for _, a := range proj.actions {
				if containsVar(a.Pre, vs) {
					visited[a] = true
				}
			}
		}
	}

	for _, a := range group {
		if !visited[a] {
			result.Union(expandFacts(a.Pre, domains))
		}
	}
	return result, stats, nil
}

// expandFacts expands any factset.AnyValue sentinel in facts to the
// variable's full domain; ordinary facts pass through unchanged.
func expandFacts(facts []sastask.Fact, domains *factset.FactSet) *factset.FactSet {
	out := factset.New()
	for _, f := range facts {
		if f.Val == factset.AnyValue {
			factset.ForEachBit(domains.Values(f.Var), func(x uint) {
				out.Add(f.Var, x)
			})
		} else {
			out.Add(f.Var, f.Val)
		}
	}
	return out
}

func containsVar(facts []sastask.Fact, v sastask.VarID) bool {
	for _, f := range facts {
		if f.Var == v {
			return true
		}
	}
	return false
}

func valueOf(facts []sastask.Fact, v sastask.VarID) (uint, bool) {
	for _, f := range facts {
		if f.Var == v {
			return f.Val, true
		}
	}
	return 0, false
}

// spanningVariables returns the variables whose union of precondition
// values across group covers the variable's entire domain.
func spanningVariables(group []*sastask.Action, domains *factset.FactSet) []sastask.VarID {
	covered := make(map[sastask.VarID]*bitset.BitSet)
	for _, a := range group {
		for _, f := range a.Pre {
			b, ok := covered[f.Var]
			if !ok {
				b = new(bitset.BitSet)
				covered[f.Var] = b
			}
			if f.Val == factset.AnyValue {
				covered[f.Var] = b.Union(domains.Values(f.Var))
			} else {
				b.Set(f.Val)
			}
		}
	}
	var spanning []sastask.VarID
	for v, b := range covered {
		if b.Count() == domains.DomainSize(v) {
			spanning = append(spanning, v)
		}
	}
	return spanning
}

// sortSpanning orders spanning variables by ascending domain size, ties
// broken by ascending VarID — the deterministic tie-break policy chosen
// to resolve the Open Question on merge ordering (spec.md §9).
func sortSpanning(vars []sastask.VarID, domains *factset.FactSet) {
	sort.Slice(vars, func(i, j int) bool {
		si, sj := domains.DomainSize(vars[i]), domains.DomainSize(vars[j])
		if si != sj {
			return si < sj
		}
		return vars[i] < vars[j]
	})
}

func actionsWithVar(group []*sastask.Action, v sastask.VarID) []*sastask.Action {
	var out []*sastask.Action
	for _, a := range group {
		if containsVar(a.Pre, v) {
			out = append(out, a)
		}
	}
	return out
}

type projection struct {
	key     string
	context []sastask.Fact
	actions []*sastask.Action
}

// partitionByProjection groups every action in group by its precondition
// projected onto all variables except vs.
func partitionByProjection(group []*sastask.Action, vs sastask.VarID) []*projection {
	index := make(map[string]*projection)
	var order []string
	for _, a := range group {
		var ctx []sastask.Fact
		for _, f := range a.Pre {
			if f.Var != vs {
				ctx = append(ctx, f)
			}
		}
		key := projectionKey(ctx)
		p, ok := index[key]
		if !ok {
			p = &projection{key: key, context: ctx}
			index[key] = p
			order = append(order, key)
		}
		p.actions = append(p.actions, a)
	}
	sort.Strings(order)
	out := make([]*projection, len(order))
	for i, k := range order {
		out[i] = index[k]
	}
	return out
}

func projectionHasMatch(actions []*sastask.Action, matching []*sastask.Action) bool {
	for _, a := range actions {
		for _, m := range matching {
			if a == m {
				return true
			}
		}
	}
	return false
}

func projectionKey(facts []sastask.Fact) string {
	sorted := append([]sastask.Fact(nil), facts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Var != sorted[j].Var {
			return sorted[i].Var < sorted[j].Var
		}
		return sorted[i].Val < sorted[j].Val
	})
	b := make([]byte, 0, 8*len(sorted))
	for _, f := range sorted {
		b = appendUint(b, uint64(f.Var))
		b = append(b, ':')
		b = appendUint(b, uint64(f.Val))
		b = append(b, ';')
	}
	return string(b)
}

func appendUint(b []byte, v uint64) []byte {
	if v == 0 {
		return append(b, '0')
	}
	var digits [20]byte
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return append(b, digits[i:]...)
}

// requiredValues collects the values of vs required across actions,
// treating a missing constraint (the action has no fact on vs at all) or
// an explicit factset.AnyValue constraint as the full domain of vs.
func requiredValues(actions []*sastask.Action, vs sastask.VarID, domains *factset.FactSet) *bitset.BitSet {
	req := new(bitset.BitSet)
	for _, a := range actions {
		val, ok := valueOf(a.Pre, vs)
		if !ok || val == factset.AnyValue {
			req = req.Union(domains.Values(vs))
			continue
		}
		req.Set(val)
	}
	return req
}
