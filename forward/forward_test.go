package forward

import (
	"testing"

	"github.com/sasscope/sasscope/factset"
	"github.com/sasscope/sasscope/internal/fixtures"
	"github.com/sasscope/sasscope/sastask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreachableGoalIsReportedUnreachable(t *testing.T) {
	task := fixtures.Unreachable()
	result := Run(task)

	assert.False(t, result.GoalReachable)
	assert.True(t, result.Reachable.Contains(fixtures.VarUX, 2))
	assert.True(t, result.Reachable.Contains(fixtures.VarUY, 1))
	assert.Empty(t, result.Applied, "neither inc0 nor inc1 is ever applicable from x=2")
}

func TestChainReachesGoalThroughAllIntermediateActions(t *testing.T) {
	task := fixtures.Chain(0)
	task.Goal = fixtures.GoalZ1()
	result := Run(task)

	assert.True(t, result.GoalReachable)
	assert.True(t, result.Reachable.Contains(fixtures.VarX, 1))
	assert.True(t, result.Reachable.Contains(fixtures.VarY, 1))
	assert.True(t, result.Reachable.Contains(fixtures.VarZ, 1))

	names := make([]string, len(result.Applied))
	for i, a := range result.Applied {
		names[i] = a.Name
	}
	assert.Contains(t, names, "a1")
	assert.Contains(t, names, "a2")
	assert.Contains(t, names, "a3")
}

func TestApplicationIsMonotonicAndTerminates(t *testing.T) {
	task := fixtures.HungryFoodMoneyServes()
	result := Run(task)

	assert.True(t, result.GoalReachable, "f.takeout is directly applicable from the initial state")

	seen := make(map[string]bool)
	for _, a := range result.Applied {
		assert.False(t, seen[a.Name], "each action appears in Applied at most once")
		seen[a.Name] = true
	}
}

func TestAxiomsParticipateInForwardReachability(t *testing.T) {
	const varTrigger sastask.VarID = 0
	const varDerived sastask.VarID = 1
	task := &sastask.Task{
		Domains: factset.NewDomains(map[sastask.VarID]uint{varTrigger: 2, varDerived: 2}),
		Init:    []sastask.Fact{{Var: varTrigger, Val: 1}, {Var: varDerived, Val: 0}},
		Goal:    []sastask.Fact{{Var: varDerived, Val: 1}},
		Axioms: []*sastask.Action{
			sastask.NewAxiom("derive", []sastask.Fact{{Var: varTrigger, Val: 1}}, sastask.Fact{Var: varDerived, Val: 1}),
		},
	}
	result := Run(task)
	require.True(t, result.GoalReachable)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "derive", result.Applied[0].Name)
}
