package sascodec

import (
	"testing"

	"github.com/sasscope/sasscope/factset"
	"github.com/sasscope/sasscope/sastask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGripper = `begin_version
3
end_version
begin_metric
0
end_metric
2
begin_variable
var0
-1
2
Atom a()
Atom b()
end_variable
begin_variable
var1
-1
2
Atom c()
Atom d()
end_variable
1
begin_mutex_group
2
0 0
1 0
end_mutex_group
begin_state
0
1
end_state
begin_goal
1
0 1
end_goal
1
begin_operator
op1
1
1 1
1
0 0 0 1
0
end_operator
0
`

func TestParseThenEmitIsByteIdentical(t *testing.T) {
	doc, err := Parse([]byte(sampleGripper))
	require.NoError(t, err)

	out := Emit(doc)
	assert.Equal(t, sampleGripper, string(out))
}

func TestParseBuildsExpectedDocument(t *testing.T) {
	doc, err := Parse([]byte(sampleGripper))
	require.NoError(t, err)

	assert.Equal(t, 3, doc.Version)
	assert.False(t, doc.Metric)
	require.Len(t, doc.Variables, 2)
	assert.Equal(t, "var0", doc.Variables[0].Name)
	assert.Equal(t, []string{"Atom a()", "Atom b()"}, doc.Variables[0].ValueNames)
	require.Len(t, doc.Mutexes, 1)
	assert.Equal(t, []Fact{{Var: 0, Val: 0}, {Var: 1, Val: 0}}, doc.Mutexes[0].Facts)
	assert.Equal(t, []int{0, 1}, doc.InitState)
	assert.Equal(t, []Fact{{Var: 0, Val: 1}}, doc.Goal)
	require.Len(t, doc.Operators, 1)
	op := doc.Operators[0]
	assert.Equal(t, "op1", op.Name)
	assert.Equal(t, []Fact{{Var: 1, Val: 1}}, op.Prevail)
	require.Len(t, op.Effects, 1)
	assert.Equal(t, 0, op.Effects[0].Var)
	assert.Equal(t, 0, op.Effects[0].PreVal)
	assert.Equal(t, 1, op.Effects[0].PostVal)
	assert.Empty(t, doc.Axioms)
}

func TestParseRejectsMismatchedSectionMarker(t *testing.T) {
	bad := `begin_version
3
end_verrrsion
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "version", perr.Section)
	assert.ErrorIs(t, err, ErrMalformedSection)
}

func TestParseRejectsBadEffectFieldCount(t *testing.T) {
	bad := `begin_version
3
end_version
begin_metric
0
end_metric
1
begin_variable
var0
-1
2
a
b
end_variable
0
begin_state
0
end_state
begin_goal
0
end_goal
1
begin_operator
op1
0
1
0 0 0
end_operator
0
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCountMismatch)
}

func TestToTaskFoldsEffectPreValIntoPrecondition(t *testing.T) {
	doc, err := Parse([]byte(sampleGripper))
	require.NoError(t, err)

	task := ToTask(doc)
	require.Len(t, task.Actions, 1)
	op1 := task.Actions[0]
	assert.Contains(t, op1.Pre, sastask.Fact{Var: 0, Val: 0})
	assert.Contains(t, op1.Pre, sastask.Fact{Var: 1, Val: 1})
	assert.Contains(t, op1.Eff, sastask.Fact{Var: 0, Val: 1})
	assert.Equal(t, uint(2), task.Domains.DomainSize(0))
}

func TestFromTaskRenumbersSurvivingVariablesAndPreservesValueIndices(t *testing.T) {
	doc, err := Parse([]byte(sampleGripper))
	require.NoError(t, err)
	task := ToTask(doc)

	// Drop variable 1 as if scoping had found it constant.
	onlyVar0 := factset.New()
	onlyVar0.AddFacts([]sastask.Fact{{Var: 0, Val: 0}, {Var: 0, Val: 1}})
	task.Domains = onlyVar0
	task.Init = []sastask.Fact{{Var: 0, Val: 0}}
	task.Goal = []sastask.Fact{{Var: 0, Val: 1}}
	task.Actions[0].Pre = []sastask.Fact{{Var: 0, Val: 0}}

	out := FromTask(task, doc)
	require.Len(t, out.Variables, 1)
	assert.Equal(t, "var0", out.Variables[0].Name)
	assert.Equal(t, []int{0}, out.InitState)
	assert.Equal(t, []Fact{{Var: 0, Val: 1}}, out.Goal)
	require.Len(t, out.Operators, 1)
	assert.Equal(t, 0, out.Operators[0].Effects[0].Var)
}
