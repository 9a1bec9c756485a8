package sascodec

import (
	"sort"

	"github.com/sasscope/sasscope/factset"
	"github.com/sasscope/sasscope/sastask"
)

// ToTask converts a parsed Document into a sastask.Task. sastask.Action
// carries a single flat precondition and effect list with no per-effect
// conditions, so an operator's effect conditions and its effect's
// required previous value (when not -1) are folded into the action's
// precondition: a conservative widening that only ever adds
// preconditions, never drops one a sound backward analysis depends on.
func ToTask(doc *Document) *sastask.Task {
	sizes := make(map[sastask.VarID]uint, len(doc.Variables))
	valueNames := make(map[sastask.VarID][]string, len(doc.Variables))
	for i, v := range doc.Variables {
		vid := sastask.VarID(i)
		sizes[vid] = uint(v.Range)
		valueNames[vid] = v.ValueNames
	}

	init := make([]sastask.Fact, 0, len(doc.InitState))
	for i, val := range doc.InitState {
		init = append(init, sastask.Fact{Var: sastask.VarID(i), Val: uint(val)})
	}

	goal := make([]sastask.Fact, 0, len(doc.Goal))
	for _, f := range doc.Goal {
		goal = append(goal, sastask.Fact{Var: sastask.VarID(f.Var), Val: uint(f.Val)})
	}

	actions := make([]*sastask.Action, 0, len(doc.Operators))
	for _, op := range doc.Operators {
		actions = append(actions, convertOperator(op))
	}

	axioms := make([]*sastask.Action, 0, len(doc.Axioms))
	for i, ax := range doc.Axioms {
		axioms = append(axioms, convertAxiom(i, ax))
	}

	mutexes := make([]sastask.Mutex, 0, len(doc.Mutexes))
	for _, m := range doc.Mutexes {
		mutexes = append(mutexes, sastask.Mutex{Facts: convertFacts(m.Facts)})
	}

	return &sastask.Task{
		Domains:    factset.NewDomains(sizes),
		Init:       init,
		Goal:       goal,
		Actions:    actions,
		Axioms:     axioms,
		Mutexes:    mutexes,
		Metric:     doc.Metric,
		ValueNames: valueNames,
	}
}

func convertFacts(facts []Fact) []sastask.Fact {
	out := make([]sastask.Fact, 0, len(facts))
	for _, f := range facts {
		out = append(out, sastask.Fact{Var: sastask.VarID(f.Var), Val: uint(f.Val)})
	}
	return out
}

func convertOperator(op Operator) *sastask.Action {
	pre := make(map[sastask.Fact]bool)
	for _, f := range convertFacts(op.Prevail) {
		pre[f] = true
	}

	var eff []sastask.Fact
	for _, e := range op.Effects {
		for _, c := range convertFacts(e.Conditions) {
			pre[c] = true
		}
		if e.PreVal != -1 {
			pre[sastask.Fact{Var: sastask.VarID(e.Var), Val: uint(e.PreVal)}] = true
		}
		eff = append(eff, sastask.Fact{Var: sastask.VarID(e.Var), Val: uint(e.PostVal)})
	}

	return &sastask.Action{
		Name: op.Name,
		Pre:  sortedFactKeys(pre),
		Eff:  eff,
		Cost: op.Cost,
		Role: sastask.RoleAction,
	}
}

func convertAxiom(index int, ax Axiom) *sastask.Action {
	pre := make(map[sastask.Fact]bool)
	for _, c := range convertFacts(ax.Conditions) {
		pre[c] = true
	}
	if ax.PreVal != -1 {
		pre[sastask.Fact{Var: sastask.VarID(ax.Var), Val: uint(ax.PreVal)}] = true
	}
	return sastask.NewAxiom(axiomName(index), sortedFactKeys(pre), sastask.Fact{Var: sastask.VarID(ax.Var), Val: uint(ax.PostVal)})
}

func axiomName(index int) string { return "axiom#" + itoa(index) }

func sortedFactKeys(set map[sastask.Fact]bool) []sastask.Fact {
	out := make([]sastask.Fact, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Var != out[j].Var {
			return out[i].Var < out[j].Var
		}
		return out[i].Val < out[j].Val
	})
	return out
}

// FromTask builds an output Document for task, reusing original's
// variable names, axiom layers, and value names for every variable that
// survived scoping. Variables are renumbered to a contiguous range in
// ascending original order, since the text format requires it; value
// indices within a surviving variable are never touched by pruning, so
// they are copied through unchanged.
func FromTask(task *sastask.Task, original *Document) *Document {
	survivors := task.Domains.Variables()
	newIndex := make(map[sastask.VarID]int, len(survivors))
	for i, v := range survivors {
		newIndex[v] = i
	}

	doc := &Document{
		Version: original.Version,
		Metric:  task.Metric,
	}

	for _, v := range survivors {
		orig := original.Variables[int(v)]
		doc.Variables = append(doc.Variables, Variable{
			Name:       orig.Name,
			AxiomLayer: orig.AxiomLayer,
			Range:      orig.Range,
			ValueNames: orig.ValueNames,
		})
	}

	for _, m := range task.Mutexes {
		doc.Mutexes = append(doc.Mutexes, Mutex{Facts: renumberFacts(m.Facts, newIndex)})
	}

	initByVar := make(map[sastask.VarID]uint, len(task.Init))
	for _, f := range task.Init {
		initByVar[f.Var] = f.Val
	}
	doc.InitState = make([]int, len(survivors))
	for i, v := range survivors {
		doc.InitState[i] = int(initByVar[v])
	}

	doc.Goal = renumberFacts(task.Goal, newIndex)

	for _, a := range task.Actions {
		doc.Operators = append(doc.Operators, operatorFromAction(a, newIndex))
	}

	for _, ax := range task.Axioms {
		doc.Axioms = append(doc.Axioms, axiomFromAction(ax, newIndex))
	}

	return doc
}

func renumberFacts(facts []sastask.Fact, newIndex map[sastask.VarID]int) []Fact {
	out := make([]Fact, 0, len(facts))
	for _, f := range facts {
		out = append(out, Fact{Var: newIndex[f.Var], Val: int(f.Val)})
	}
	return out
}

func operatorFromAction(a *sastask.Action, newIndex map[sastask.VarID]int) Operator {
	prevail := renumberFacts(a.Prevail(), newIndex)

	preByVar := make(map[sastask.VarID]uint, len(a.Pre))
	for _, p := range a.Pre {
		preByVar[p.Var] = p.Val
	}

	effects := make([]Effect, 0, len(a.Eff))
	for _, e := range a.Eff {
		preVal := -1
		if v, ok := preByVar[e.Var]; ok {
			preVal = int(v)
		}
		effects = append(effects, Effect{
			Var:     newIndex[e.Var],
			PreVal:  preVal,
			PostVal: int(e.Val),
		})
	}

	return Operator{
		Name:    a.Name,
		Prevail: prevail,
		Effects: effects,
		Cost:    a.Cost,
	}
}

func axiomFromAction(ax *sastask.Action, newIndex map[sastask.VarID]int) Axiom {
	eff := ax.Eff[0]
	preVal := -1
	for _, p := range ax.Pre {
		if p.Var == eff.Var {
			preVal = int(p.Val)
		}
	}
	var conditions []sastask.Fact
	for _, p := range ax.Pre {
		if p.Var != eff.Var {
			conditions = append(conditions, p)
		}
	}
	return Axiom{
		Conditions: renumberFacts(conditions, newIndex),
		Var:        newIndex[eff.Var],
		PreVal:     preVal,
		PostVal:    int(eff.Val),
	}
}
