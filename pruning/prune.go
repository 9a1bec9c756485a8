// Package pruning restricts a Task to the facts, actions, mutexes, and
// axioms a relevance analysis has identified as relevant (spec §4.5),
// dropping any variable whose surviving value set has collapsed to a
// constant.
package pruning

import (
	"sort"

	"github.com/sasscope/sasscope/factset"
	"github.com/sasscope/sasscope/sastask"
)

// Prune restricts task to relevantFacts and relevantActions, dropping
// constant variables (those whose relevant value set has cardinality
// <= 1) and rewriting every surviving structure's facts accordingly.
func Prune(task *sastask.Task, relevantFacts *factset.FactSet, relevantActions []*sastask.Action) *sastask.Task {
	surviving := survivingVariables(task, relevantFacts)
	relevantSet := make(map[string]bool, len(relevantActions))
	for _, a := range relevantActions {
		relevantSet[a.Name] = true
	}

	out := &sastask.Task{
		Domains:    restrictDomains(task.Domains, surviving),
		Init:       restrictFacts(task.Init, surviving),
		Goal:       restrictFacts(task.Goal, surviving),
		Metric:     task.Metric,
		ValueNames: restrictValueNames(task.ValueNames, surviving),
	}

	for _, a := range task.Actions {
		if !relevantSet[a.Name] {
			continue
		}
		out.Actions = append(out.Actions, restrictAction(a, surviving))
	}

	for _, ax := range task.Axioms {
		if !relevantSet[ax.Name] {
			continue
		}
		if len(ax.Eff) == 0 || !surviving[ax.Eff[0].Var] {
			continue
		}
		out.Axioms = append(out.Axioms, restrictAction(ax, surviving))
	}

	out.Mutexes = NormalizeMutexes(restrictMutexes(task.Mutexes, surviving))

	return out
}

// survivingVariables returns the variables whose relevant value set has
// cardinality > 1 — the variables that still vary in the pruned task.
func survivingVariables(task *sastask.Task, relevantFacts *factset.FactSet) map[sastask.VarID]bool {
	surviving := make(map[sastask.VarID]bool)
	for _, v := range task.Domains.Variables() {
		if relevantFacts.DomainSize(v) > 1 {
			surviving[v] = true
		}
	}
	return surviving
}

func restrictDomains(domains *factset.FactSet, surviving map[sastask.VarID]bool) *factset.FactSet {
	out := factset.New()
	for _, v := range domains.Variables() {
		if !surviving[v] {
			continue
		}
		factset.ForEachBit(domains.Values(v), func(x uint) {
			out.Add(v, x)
		})
	}
	return out
}

func restrictFacts(facts []sastask.Fact, surviving map[sastask.VarID]bool) []sastask.Fact {
	var out []sastask.Fact
	for _, f := range facts {
		if surviving[f.Var] {
			out = append(out, f)
		}
	}
	return out
}

func restrictAction(a *sastask.Action, surviving map[sastask.VarID]bool) *sastask.Action {
	return &sastask.Action{
		Name: a.Name,
		Pre:  restrictFacts(a.Pre, surviving),
		Eff:  restrictFacts(a.Eff, surviving),
		Cost: a.Cost,
		Role: a.Role,
	}
}

func restrictMutexes(mutexes []sastask.Mutex, surviving map[sastask.VarID]bool) []sastask.Mutex {
	var out []sastask.Mutex
	for _, m := range mutexes {
		out = append(out, sastask.Mutex{Facts: restrictFacts(m.Facts, surviving)})
	}
	return out
}

func restrictValueNames(names map[sastask.VarID][]string, surviving map[sastask.VarID]bool) map[sastask.VarID][]string {
	if names == nil {
		return nil
	}
	out := make(map[sastask.VarID][]string)
	for v, n := range names {
		if surviving[v] {
			out[v] = n
		}
	}
	return out
}

// NormalizeMutexes drops mutexes with fewer than two facts or spanning
// fewer than two variables, and deduplicates the remainder, preserving
// first-seen order. Ported from the original implementation's mutex
// sanitation pass (see SPEC_FULL.md §11), folded into pruning rather
// than kept as a separate invariant-finder.
func NormalizeMutexes(mutexes []sastask.Mutex) []sastask.Mutex {
	seen := make(map[string]bool)
	var out []sastask.Mutex
	for _, m := range mutexes {
		if len(m.Facts) < 2 {
			continue
		}
		if countVariables(m.Facts) < 2 {
			continue
		}
		key := mutexKey(m.Facts)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

func countVariables(facts []sastask.Fact) int {
	vars := make(map[sastask.VarID]bool)
	for _, f := range facts {
		vars[f.Var] = true
	}
	return len(vars)
}

func mutexKey(facts []sastask.Fact) string {
	sorted := append([]sastask.Fact(nil), facts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Var != sorted[j].Var {
			return sorted[i].Var < sorted[j].Var
		}
		return sorted[i].Val < sorted[j].Val
	})
	var b []byte
	for _, f := range sorted {
		b = append(b, []byte(itoa(int(f.Var))+":"+itoa(int(f.Val))+";")...)
	}
	return string(b)
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var digits [20]byte
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		digits[i] = '-'
	}
	return string(digits[i:])
}
