package pruning

import (
	"testing"

	"github.com/sasscope/sasscope/backward"
	"github.com/sasscope/sasscope/factset"
	"github.com/sasscope/sasscope/internal/fixtures"
	"github.com/sasscope/sasscope/sastask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneDropsConstantVariable(t *testing.T) {
	task := fixtures.Chain(0)
	task.Goal = fixtures.GoalX1()

	result, err := backward.Run(task, backward.Options{})
	require.NoError(t, err)

	pruned := Prune(task, result.RelevantFacts, result.RelevantActions)

	// z's relevant value set collapsed to {0}: a constant, dropped.
	assert.NotContains(t, pruned.Domains.Variables(), fixtures.VarZ)
	assert.Contains(t, pruned.Domains.Variables(), fixtures.VarX)
	assert.Contains(t, pruned.Domains.Variables(), fixtures.VarY)

	names := make(map[string]bool)
	for _, a := range pruned.Actions {
		names[a.Name] = true
	}
	assert.True(t, names["a1"])
	assert.True(t, names["a2"])
	assert.True(t, names["b1"])
	assert.False(t, names["a3"], "a3 was never discovered as relevant to goal x=1")
}

func TestPruneRewritesFactsToSurvivingVariablesOnly(t *testing.T) {
	task := fixtures.Chain(0)
	task.Goal = fixtures.GoalX1()
	result, err := backward.Run(task, backward.Options{})
	require.NoError(t, err)

	pruned := Prune(task, result.RelevantFacts, result.RelevantActions)
	for _, f := range pruned.Init {
		assert.NotEqual(t, fixtures.VarZ, f.Var)
	}
	for _, f := range pruned.Goal {
		assert.NotEqual(t, fixtures.VarZ, f.Var)
	}
	for _, a := range pruned.Actions {
		for _, f := range a.Pre {
			assert.NotEqual(t, fixtures.VarZ, f.Var)
		}
		for _, f := range a.Eff {
			assert.NotEqual(t, fixtures.VarZ, f.Var)
		}
	}
}

func TestNormalizeMutexesDropsTrivialAndDuplicateGroups(t *testing.T) {
	const varA sastask.VarID = 0
	const varB sastask.VarID = 1

	mutexes := []sastask.Mutex{
		{Facts: []sastask.Fact{{Var: varA, Val: 0}}},                      // too few facts
		{Facts: []sastask.Fact{{Var: varA, Val: 0}, {Var: varA, Val: 1}}}, // single variable
		{Facts: []sastask.Fact{{Var: varA, Val: 0}, {Var: varB, Val: 0}}}, // kept
		{Facts: []sastask.Fact{{Var: varB, Val: 0}, {Var: varA, Val: 0}}}, // duplicate of above, reordered
	}

	out := NormalizeMutexes(mutexes)
	require.Len(t, out, 1)
	assert.ElementsMatch(t, []sastask.Fact{{Var: varA, Val: 0}, {Var: varB, Val: 0}}, out[0].Facts)
}

func TestPruneDropsAxiomOverDroppedVariable(t *testing.T) {
	const varX sastask.VarID = 0
	const varY sastask.VarID = 1
	task := &sastask.Task{
		Domains: factset.NewDomains(map[sastask.VarID]uint{varX: 2, varY: 2}),
		Init:    []sastask.Fact{{Var: varX, Val: 0}, {Var: varY, Val: 0}},
		Goal:    []sastask.Fact{{Var: varX, Val: 1}},
	}
	relevantFacts := factset.New()
	relevantFacts.Add(varX, 0)
	relevantFacts.Add(varX, 1)
	relevantFacts.Add(varY, 0) // constant: cardinality 1

	axiom := sastask.NewAxiom("derive", []sastask.Fact{{Var: varX, Val: 0}}, sastask.Fact{Var: varY, Val: 1})
	task.Axioms = []*sastask.Action{axiom}

	pruned := Prune(task, relevantFacts, []*sastask.Action{axiom})
	assert.Empty(t, pruned.Axioms, "derive's effect variable y is constant and dropped")
}
