// Package forward implements forward reachability analysis (spec §4.4):
// a dual fixed point that restricts a task to the facts and actions
// reachable from its initial state, used as a sound over-approximation
// to detect goal unreachability and to drop facts the initial state can
// never touch.
package forward

import (
	"sort"

	"github.com/sasscope/sasscope/factset"
	"github.com/sasscope/sasscope/sastask"
)

// Result is the fixed point reached by Run.
type Result struct {
	Reachable     *factset.FactSet
	Applied       []*sastask.Action
	GoalReachable bool
}

// Run computes the set of facts reachable from task's initial state,
// applying every action (and axiom) whose precondition is satisfied,
// until no further fact can be added.
func Run(task *sastask.Task) Result {
	reachable := factset.FromFacts(task.Init)
	var applied []*sastask.Action
	appliedSet := make(map[string]bool)
	allOps := task.AllOperators()

	for {
		changed := false
		for _, a := range allOps {
			if appliedSet[a.Name] {
				continue
			}
			if isSubsetOfReachable(a.Pre, reachable) {
				for _, e := range a.Eff {
					if !reachable.Contains(e.Var, e.Val) {
						reachable.Add(e.Var, e.Val)
						changed = true
					}
				}
				applied = append(applied, a)
				appliedSet[a.Name] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	sort.Slice(applied, func(i, j int) bool { return applied[i].Name < applied[j].Name })

	goalReachable := factset.FromFacts(task.Goal).IsSubsetOf(reachable)
	return Result{Reachable: reachable, Applied: applied, GoalReachable: goalReachable}
}

func isSubsetOfReachable(facts []sastask.Fact, reachable *factset.FactSet) bool {
	for _, f := range facts {
		if !reachable.Contains(f.Var, f.Val) {
			return false
		}
	}
	return true
}
