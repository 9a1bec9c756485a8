// Package sastask defines the in-memory representation of a SAS+ planning
// task: variables and their domains, the initial state, the goal, actions,
// axioms, and mutex groups. It is the common currency passed between the
// codec and the scoping analyses.
package sastask

import (
	"sort"

	"github.com/sasscope/sasscope/factset"
)

// Fact re-exports factset.Fact for callers that only need sastask.
type Fact = factset.Fact

// VarID re-exports factset.VarID.
type VarID = factset.VarID

// Role distinguishes an Action record used as an ordinary operator from
// one used as a derivation rule (axiom). A single tagged record is used
// for both rather than separate interfaces or an inheritance hierarchy,
// since analyses only ever need to know the role, never dispatch on it.
type Role int

const (
	RoleAction Role = iota
	RoleAxiom
)

// Action is a named precondition/effect/cost record. Axioms are
// represented as Actions with Role == RoleAxiom and Cost == 0; a zero
// cost on an axiom is enforced by NewAxiom regardless of any cost field
// present at the codec boundary.
type Action struct {
	Name string
	Pre  []Fact
	Eff  []Fact
	Cost int
	Role Role
}

// NewAxiom builds an Action in the axiom role. Axioms carry precondition
// facts and exactly one effect fact, and never contribute to plan cost.
func NewAxiom(name string, pre []Fact, eff Fact) *Action {
	return &Action{Name: name, Pre: pre, Eff: []Fact{eff}, Cost: 0, Role: RoleAxiom}
}

// IsAxiom reports whether a is a derivation rule rather than an ordinary
// operator.
func (a *Action) IsAxiom() bool { return a.Role == RoleAxiom }

// EffectVar reports the value a's effect writes to v, and whether the
// effect touches v at all.
func (a *Action) EffectVar(v VarID) (uint, bool) {
	for _, e := range a.Eff {
		if e.Var == v {
			return e.Val, true
		}
	}
	return 0, false
}

// Prevail returns the precondition facts whose variable is not written by
// the effect, or is written only to the same value the precondition
// already requires.
func (a *Action) Prevail() []Fact {
	var prevail []Fact
	for _, p := range a.Pre {
		if val, ok := a.EffectVar(p.Var); !ok || val == p.Val {
			prevail = append(prevail, p)
		}
	}
	return prevail
}

// EffectFingerprint is the equivalence class key used by merging: the
// sorted projection of the effect onto relevant, plus the cost. Two
// actions have the same fingerprint iff they are candidates for the same
// merge group.
type EffectFingerprint struct {
	Effects string // canonical encoding of the sorted, relevant-restricted effect
	Cost    int
}

// Fingerprint computes a's effect fingerprint restricted to relevant.
func (a *Action) Fingerprint(relevant map[VarID]bool) EffectFingerprint {
	var facts []Fact
	for _, e := range a.Eff {
		if relevant == nil || relevant[e.Var] {
			facts = append(facts, e)
		}
	}
	sort.Slice(facts, func(i, j int) bool {
		if facts[i].Var != facts[j].Var {
			return facts[i].Var < facts[j].Var
		}
		return facts[i].Val < facts[j].Val
	})
	cost := a.Cost
	if a.IsAxiom() {
		cost = 0
	}
	return EffectFingerprint{Effects: encodeFacts(facts), Cost: cost}
}

func encodeFacts(facts []Fact) string {
	var b []byte
	for _, f := range facts {
		b = appendInt(b, int64(f.Var))
		b = append(b, ':')
		b = appendInt(b, int64(f.Val))
		b = append(b, ';')
	}
	return string(b)
}

func appendInt(b []byte, v int64) []byte {
	if v < 0 {
		b = append(b, '-')
		v = -v
	}
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

// Applicable reports whether every precondition fact of a is satisfied by
// state, a partial assignment from variable to value.
func (a *Action) Applicable(state map[VarID]uint) bool {
	for _, p := range a.Pre {
		v, ok := state[p.Var]
		if !ok || v != p.Val {
			return false
		}
	}
	return true
}

// Mutex is a list of facts declared pairwise mutually exclusive in any
// reachable state.
type Mutex struct {
	Facts []Fact
}

// Task aggregates the complete description of a SAS+ planning task.
type Task struct {
	Domains    *factset.FactSet // full domain per variable
	Init       []Fact           // one fact per variable
	Goal       []Fact           // partial state
	Actions    []*Action        // Role == RoleAction
	Axioms     []*Action        // Role == RoleAxiom
	Mutexes    []Mutex
	Metric     bool // true iff action costs are used
	ValueNames map[VarID][]string
}

// AllOperators returns Actions and Axioms concatenated, for analyses that
// treat the two uniformly (backward relevance, forward reachability).
func (t *Task) AllOperators() []*Action {
	ops := make([]*Action, 0, len(t.Actions)+len(t.Axioms))
	ops = append(ops, t.Actions...)
	ops = append(ops, t.Axioms...)
	return ops
}

// Variables returns the task's variables in ascending order.
func (t *Task) Variables() []VarID {
	return t.Domains.Variables()
}

// InitState returns the initial state as a variable-to-value map.
func (t *Task) InitState() map[VarID]uint {
	state := make(map[VarID]uint, len(t.Init))
	for _, f := range t.Init {
		state[f.Var] = f.Val
	}
	return state
}

// GoalFactSet returns the goal as a FactSet.
func (t *Task) GoalFactSet() *factset.FactSet {
	return factset.FromFacts(t.Goal)
}

// Equal reports whether t and other are structurally equal under
// canonical ordering of actions, mutexes, and init/goal facts.
func (t *Task) Equal(other *Task) bool {
	if !t.Domains.Equal(other.Domains) {
		return false
	}
	if !sameFactSlice(t.Init, other.Init) || !sameFactSlice(t.Goal, other.Goal) {
		return false
	}
	if t.Metric != other.Metric {
		return false
	}
	if !sameActionSlice(t.Actions, other.Actions) || !sameActionSlice(t.Axioms, other.Axioms) {
		return false
	}
	if len(t.Mutexes) != len(other.Mutexes) {
		return false
	}
	am := canonicalMutexes(t.Mutexes)
	bm := canonicalMutexes(other.Mutexes)
	for i := range am {
		if am[i] != bm[i] {
			return false
		}
	}
	return true
}

func sameFactSlice(a, b []Fact) bool {
	if len(a) != len(b) {
		return false
	}
	ac := append([]Fact(nil), a...)
	bc := append([]Fact(nil), b...)
	sortFacts(ac)
	sortFacts(bc)
	for i := range ac {
		if ac[i] != bc[i] {
			return false
		}
	}
	return true
}

func sortFacts(facts []Fact) {
	sort.Slice(facts, func(i, j int) bool {
		if facts[i].Var != facts[j].Var {
			return facts[i].Var < facts[j].Var
		}
		return facts[i].Val < facts[j].Val
	})
}

func sameActionSlice(a, b []*Action) bool {
	if len(a) != len(b) {
		return false
	}
	an := actionNames(a)
	bn := actionNames(b)
	for i := range an {
		if an[i] != bn[i] {
			return false
		}
		ai := findAction(a, an[i])
		bi := findAction(b, bn[i])
		if ai.Cost != bi.Cost || !sameFactSlice(ai.Pre, bi.Pre) || !sameFactSlice(ai.Eff, bi.Eff) {
			return false
		}
	}
	return true
}

func actionNames(actions []*Action) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

func findAction(actions []*Action, name string) *Action {
	for _, a := range actions {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func canonicalMutexes(mutexes []Mutex) []string {
	out := make([]string, len(mutexes))
	for i, m := range mutexes {
		facts := append([]Fact(nil), m.Facts...)
		sortFacts(facts)
		out[i] = encodeFacts(facts)
	}
	sort.Strings(out)
	return out
}
