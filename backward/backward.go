// Package backward implements the least-fixed-point backward goal
// relevance analysis (spec §4.3): it grows the sets of goal-relevant
// facts and actions by alternating a causal-link filter, a coarsening
// step, and action merging, until both sets stop changing.
package backward

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/sasscope/sasscope/factset"
	"github.com/sasscope/sasscope/merging"
	"github.com/sasscope/sasscope/sastask"
)

// Options selects which of the backward step's optional refinements run.
type Options struct {
	CausalLinks bool
	Merging     bool
	FactBased   bool
}

// Result is the fixed point reached by Run.
type Result struct {
	RelevantFacts   *factset.FactSet
	RelevantActions []*sastask.Action
	MergeAttempts   int
}

// Run computes goal relevance for task under opts, iterating the step
// function to a fixed point and then adding the task's initial-state
// facts to the relevant set so that pruning preserves the initial
// assignment on relevant variables.
func Run(task *sastask.Task, opts Options) (Result, error) {
	relevantFacts := factset.FromFacts(task.Goal)
	if !opts.FactBased {
		relevantFacts = relevantFacts.CoarsenToVariables(task.Domains)
	}
	var relevantActions []*sastask.Action
	initState := task.InitState()
	allOps := task.AllOperators()
	mergeAttempts := 0

	for {
		filtered := causalLinkFilter(relevantFacts, initState, relevantActions, opts)
		if !opts.FactBased {
			filtered = filtered.CoarsenToVariables(task.Domains)
		}

		newActions := discoverActions(allOps, filtered)
		newRelevantFacts, attempts, err := expandPreconditions(newActions, filtered.Variables(), task.Domains, opts.Merging)
		if err != nil {
			return Result{}, err
		}
		mergeAttempts += attempts

		nextFacts := filtered.Clone()
		nextFacts.Union(newRelevantFacts)

		changed := !nextFacts.Equal(relevantFacts) || !sameActionSet(newActions, relevantActions)
		relevantFacts = nextFacts
		relevantActions = newActions
		if !changed {
			break
		}
	}

	relevantFacts.AddFacts(task.Init)
	return Result{RelevantFacts: relevantFacts, RelevantActions: relevantActions, MergeAttempts: mergeAttempts}, nil
}

// causalLinkFilter removes facts that are already supplied by the
// initial state and unthreatened by the current relevant actions. When
// opts.CausalLinks is false it is the identity function.
func causalLinkFilter(facts *factset.FactSet, init map[sastask.VarID]uint, actions []*sastask.Action, opts Options) *factset.FactSet {
	if !opts.CausalLinks {
		return facts.Clone()
	}
	out := factset.New()
	facts.ForEach(func(v sastask.VarID, values *bitset.BitSet) {
		factset.ForEachBit(values, func(x uint) {
			initVal, hasInit := init[v]
			if hasInit && initVal == x && unthreatened(v, x, actions, opts.FactBased) {
				return
			}
			out.Add(v, x)
		})
	})
	return out
}

// unthreatened reports whether no relevant action's effect touches v, or
// (in fact-based mode) every effect on v writes the same value x already
// holds in the initial state.
func unthreatened(v sastask.VarID, x uint, actions []*sastask.Action, factBased bool) bool {
	touched := false
	onlySameValue := true
	for _, a := range actions {
		val, ok := a.EffectVar(v)
		if !ok {
			continue
		}
		touched = true
		if val != x {
			onlySameValue = false
		}
	}
	if !touched {
		return true
	}
	return factBased && onlySameValue
}

// discoverActions returns the operators (actions and axioms alike) whose
// effect intersects filtered.
func discoverActions(all []*sastask.Action, filtered *factset.FactSet) []*sastask.Action {
	var out []*sastask.Action
	for _, a := range all {
		for _, e := range a.Eff {
			if filtered.Contains(e.Var, e.Val) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// expandPreconditions partitions actions by effect fingerprint (when
// merging is enabled; otherwise each action is its own singleton group)
// and unions the merged precondition FactSet of every partition.
func expandPreconditions(actions []*sastask.Action, relevantVars []sastask.VarID, domains *factset.FactSet, mergingEnabled bool) (*factset.FactSet, int, error) {
	relevant := make(map[sastask.VarID]bool, len(relevantVars))
	for _, v := range relevantVars {
		relevant[v] = true
	}

	result := factset.New()
	attempts := 0

	groups := [][]*sastask.Action{}
	if mergingEnabled {
		groups = partitionByFingerprint(actions, relevant)
	} else {
		for _, a := range actions {
			groups = append(groups, []*sastask.Action{a})
		}
	}

	for _, group := range groups {
		out, stats, err := merging.Merge(group, relevant, domains)
		if err != nil {
			return nil, attempts, err
		}
		attempts += stats.Attempts
		result.Union(out)
	}
	return result, attempts, nil
}

func partitionByFingerprint(actions []*sastask.Action, relevant map[sastask.VarID]bool) [][]*sastask.Action {
	index := make(map[sastask.EffectFingerprint][]*sastask.Action)
	var order []sastask.EffectFingerprint
	for _, a := range actions {
		fp := a.Fingerprint(relevant)
		if _, ok := index[fp]; !ok {
			order = append(order, fp)
		}
		index[fp] = append(index[fp], a)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].Effects != order[j].Effects {
			return order[i].Effects < order[j].Effects
		}
		return order[i].Cost < order[j].Cost
	})
	groups := make([][]*sastask.Action, len(order))
	for i, fp := range order {
		groups[i] = index[fp]
	}
	return groups
}

func sameActionSet(a, b []*sastask.Action) bool {
	if len(a) != len(b) {
		return false
	}
	an := actionNames(a)
	bn := actionNames(b)
	for i := range an {
		if an[i] != bn[i] {
			return false
		}
	}
	return true
}

func actionNames(actions []*sastask.Action) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}
