// Package factset implements the FactSet algebra: a mapping from a planning
// task's variables to the set of values relevant to them. It is the sole
// container used to represent goal-relevant facts, reachable facts, and
// precondition facts throughout backward, forward, and merging analyses.
package factset

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// AnyValue is the sentinel used by a precondition fact to mean "this
// variable is explicitly a precondition, but any of its values satisfy
// it" — the in-memory counterpart of the SAS+ format's literal -1
// precondition value. It is only ever produced and consumed at the
// merging boundary (see the merging package); ordinary facts never use
// it.
const AnyValue uint = ^uint(0)

// VarID identifies a task variable. SAS+ tasks parsed by sascodec number
// variables by their position in the input file; hand-constructed tasks
// (tests, fixtures) may assign any stable int, including ones mapped from
// symbolic names by the caller.
type VarID int

// Fact is a (variable, value) pair.
type Fact struct {
	Var VarID
	Val uint
}

// FactSet maps each variable to the set of values relevant to it. A
// variable absent from the map is equivalent to one present with an empty
// value set; all operations treat the two identically.
type FactSet struct {
	sets map[VarID]*bitset.BitSet
}

// New returns an empty FactSet.
func New() *FactSet {
	return &FactSet{sets: make(map[VarID]*bitset.BitSet)}
}

// FromFacts builds a FactSet from a slice of facts.
func FromFacts(facts []Fact) *FactSet {
	f := New()
	f.AddFacts(facts)
	return f
}

// Add inserts value x at variable v. Idempotent.
func (f *FactSet) Add(v VarID, x uint) {
	b, ok := f.sets[v]
	if !ok {
		b = new(bitset.BitSet)
		f.sets[v] = b
	}
	b.Set(x)
}

// AddFacts bulk-adds facts.
func (f *FactSet) AddFacts(facts []Fact) {
	for _, ft := range facts {
		f.Add(ft.Var, ft.Val)
	}
}

// Union merges other into f in place. Variables missing from either side
// are treated as empty.
func (f *FactSet) Union(other *FactSet) {
	for v, b := range other.sets {
		if b == nil || b.None() {
			continue
		}
		cur, ok := f.sets[v]
		if !ok {
			f.sets[v] = b.Clone()
			continue
		}
		f.sets[v] = cur.Union(b)
	}
}

// Variables returns the variables with a non-empty value set, in
// ascending order. A variable with an empty value set is considered
// absent and is never returned.
func (f *FactSet) Variables() []VarID {
	vars := make([]VarID, 0, len(f.sets))
	for v, b := range f.sets {
		if b != nil && b.Any() {
			vars = append(vars, v)
		}
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	return vars
}

// NumFacts returns the sum of value-set sizes across all variables.
func (f *FactSet) NumFacts() int {
	n := 0
	for _, b := range f.sets {
		if b != nil {
			n += int(b.Count())
		}
	}
	return n
}

// Contains reports whether (v, x) is a member of f.
func (f *FactSet) Contains(v VarID, x uint) bool {
	b, ok := f.sets[v]
	return ok && b.Test(x)
}

// Values returns the value set at v, or an empty set if v is absent. The
// returned bitset must not be mutated by the caller.
func (f *FactSet) Values(v VarID) *bitset.BitSet {
	b, ok := f.sets[v]
	if !ok {
		return new(bitset.BitSet)
	}
	return b
}

// Facts returns the (variable, value) pairs held by f, ordered by
// variable then value.
func (f *FactSet) Facts() []Fact {
	var facts []Fact
	for _, v := range f.Variables() {
		b := f.sets[v]
		for i, ok := uint(0), true; ok; i++ {
			if i, ok = b.NextSet(i); ok {
				facts = append(facts, Fact{Var: v, Val: i})
			}
		}
	}
	return facts
}

// IsSubsetOf reports whether every fact in f is also in other.
func (f *FactSet) IsSubsetOf(other *FactSet) bool {
	for v, b := range f.sets {
		if b == nil || b.None() {
			continue
		}
		ob := other.Values(v)
		if b.Difference(ob).Any() {
			return false
		}
	}
	return true
}

// Equal reports whether f and other contain exactly the same facts. A
// variable with an empty set is equal to an absent variable.
func (f *FactSet) Equal(other *FactSet) bool {
	return f.IsSubsetOf(other) && other.IsSubsetOf(f)
}

// Clone returns a deep copy of f.
func (f *FactSet) Clone() *FactSet {
	clone := New()
	for v, b := range f.sets {
		if b != nil {
			clone.sets[v] = b.Clone()
		}
	}
	return clone
}

// ForEach invokes fn once per non-empty variable, in ascending order.
func (f *FactSet) ForEach(fn func(VarID, *bitset.BitSet)) {
	for _, v := range f.Variables() {
		fn(v, f.sets[v])
	}
}

// CoarsenToVariables replaces every value set present in f by the full
// domain of its variable, as recorded in domains. Used when an analysis
// operates at variable granularity rather than fact granularity.
func (f *FactSet) CoarsenToVariables(domains *FactSet) *FactSet {
	out := New()
	for _, v := range f.Variables() {
		out.sets[v] = domains.Values(v).Clone()
	}
	return out
}

// NewDomains builds a FactSet whose value set at each variable is the
// full domain [0, size) described by sizes.
func NewDomains(sizes map[VarID]uint) *FactSet {
	f := New()
	for v, size := range sizes {
		b := new(bitset.BitSet)
		for x := uint(0); x < size; x++ {
			b.Set(x)
		}
		f.sets[v] = b
	}
	return f
}

// DomainSize returns the cardinality of the value set at v.
func (f *FactSet) DomainSize(v VarID) uint {
	return f.Values(v).Count()
}

// ForEachBit invokes fn once per set bit of b, in ascending order. It is
// exported so that other packages (merging, in particular) can iterate a
// *bitset.BitSet obtained from FactSet.Values without reaching for the
// NextSet idiom themselves.
func ForEachBit(b *bitset.BitSet, fn func(uint)) {
	for i, ok := uint(0), true; ok; i++ {
		if i, ok = b.NextSet(i); ok {
			fn(i)
		}
	}
}
