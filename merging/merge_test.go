package merging

import (
	"testing"

	"github.com/sasscope/sasscope/factset"
	"github.com/sasscope/sasscope/sastask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	varX sastask.VarID = iota
	varY
	varZ
)

func domains() *factset.FactSet {
	return factset.NewDomains(map[sastask.VarID]uint{varX: 3, varY: 2, varZ: 4})
}

func TestMergeSingleActionExpandsAnyValue(t *testing.T) {
	a := &sastask.Action{
		Name: "a1",
		Pre:  []sastask.Fact{{Var: varX, Val: factset.AnyValue}, {Var: varY, Val: 0}},
		Eff:  []sastask.Fact{{Var: varZ, Val: 1}},
	}
	out, stats, err := Merge([]*sastask.Action{a}, nil, domains())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Attempts, "a single-action group records no merge attempt")
	assert.Equal(t, 4, out.NumFacts()) // x expands to {0,1,2}, plus y=0
	assert.True(t, out.Contains(varX, 0))
	assert.True(t, out.Contains(varX, 2))
	assert.True(t, out.Contains(varY, 0))
}

func TestMergeEliminatesSpanningVariable(t *testing.T) {
	// a3 and a4 share the effect z=1 at the same cost. Under the fixed
	// context x=0, their precondition on y covers {0,1} = y's whole
	// domain, so the merge should drop the dependency on y for that
	// context and report only x=0.
	a3 := &sastask.Action{Name: "a3", Pre: []sastask.Fact{{Var: varX, Val: 0}, {Var: varY, Val: 0}}, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}
	a4 := &sastask.Action{Name: "a4", Pre: []sastask.Fact{{Var: varX, Val: 0}, {Var: varY, Val: 1}}, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}

	relevant := map[sastask.VarID]bool{varZ: true}
	out, stats, err := Merge([]*sastask.Action{a3, a4}, relevant, domains())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Attempts)
	assert.Equal(t, []sastask.VarID{varX}, out.Variables(), "y should be eliminated as a spanning variable")
	assert.True(t, out.Contains(varX, 0))
}

func TestMergeKeepsPartialSpanningValues(t *testing.T) {
	// a3/a4 as above, but a fifth action a5 shares the same effect with a
	// different x context (x=1, no y constraint). x's values are not fully
	// spanned, so x=0 and x=1 both survive; y is still eliminated under
	// x=0, and a5 adds only its own x=1.
	a3 := &sastask.Action{Name: "a3", Pre: []sastask.Fact{{Var: varX, Val: 0}, {Var: varY, Val: 0}}, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}
	a4 := &sastask.Action{Name: "a4", Pre: []sastask.Fact{{Var: varX, Val: 0}, {Var: varY, Val: 1}}, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}
	a5 := &sastask.Action{Name: "a5", Pre: []sastask.Fact{{Var: varX, Val: 1}}, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}

	relevant := map[sastask.VarID]bool{varZ: true}
	out, _, err := Merge([]*sastask.Action{a3, a4, a5}, relevant, domains())
	require.NoError(t, err)
	assert.ElementsMatch(t, []sastask.VarID{varX}, out.Variables())
	assert.True(t, out.Contains(varX, 0))
	assert.True(t, out.Contains(varX, 1))
}

func TestMergeUnconditionalTrigger(t *testing.T) {
	a1 := &sastask.Action{Name: "a1", Pre: nil, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}
	a2 := &sastask.Action{Name: "a2", Pre: []sastask.Fact{{Var: varX, Val: 0}}, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}

	relevant := map[sastask.VarID]bool{varZ: true}
	out, _, err := Merge([]*sastask.Action{a1, a2}, relevant, domains())
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumFacts())
}

func TestMergeFingerprintMismatchIsAnError(t *testing.T) {
	a1 := &sastask.Action{Name: "a1", Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}
	a2 := &sastask.Action{Name: "a2", Eff: []sastask.Fact{{Var: varZ, Val: 2}}, Cost: 1}

	relevant := map[sastask.VarID]bool{varZ: true}
	_, _, err := Merge([]*sastask.Action{a1, a2}, relevant, domains())
	require.ErrorIs(t, err, ErrFingerprintMismatch)
}

func TestMergeSpanningBinEliminatesVariableWhenOneActionIsUnconstrained(t *testing.T) {
	// a0 has no precondition on y at all; a1 and a2 together cover y's
	// whole domain {0,1}. Within the x=0 projection bin, a0 (free on y)
	// and a1 (y=0) are the only matches — since a0 imposes no constraint
	// on y, the bin's dependency on y must be treated as trivially
	// eliminated (a0 alone already covers the full domain), so y=0 must
	// not survive into the merged result.
	a0 := &sastask.Action{Name: "a0", Pre: []sastask.Fact{{Var: varX, Val: 0}}, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}
	a1 := &sastask.Action{Name: "a1", Pre: []sastask.Fact{{Var: varX, Val: 0}, {Var: varY, Val: 0}}, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}
	a2 := &sastask.Action{Name: "a2", Pre: []sastask.Fact{{Var: varX, Val: 1}, {Var: varY, Val: 1}}, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}

	relevant := map[sastask.VarID]bool{varZ: true}
	out, _, err := Merge([]*sastask.Action{a0, a1, a2}, relevant, domains())
	require.NoError(t, err)
	assert.False(t, out.Contains(varY, 0), "y=0 must not survive: a0 is unconstrained on y in this bin")
	assert.True(t, out.Contains(varY, 1))
	assert.True(t, out.Contains(varX, 0))
	assert.True(t, out.Contains(varX, 1))
}

func TestMergeNoSpanningVariableReturnsUnion(t *testing.T) {
	a1 := &sastask.Action{Name: "a1", Pre: []sastask.Fact{{Var: varX, Val: 0}}, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}
	a2 := &sastask.Action{Name: "a2", Pre: []sastask.Fact{{Var: varX, Val: 1}}, Eff: []sastask.Fact{{Var: varZ, Val: 1}}, Cost: 1}

	relevant := map[sastask.VarID]bool{varZ: true}
	out, _, err := Merge([]*sastask.Action{a1, a2}, relevant, domains())
	require.NoError(t, err)
	assert.True(t, out.Contains(varX, 0))
	assert.True(t, out.Contains(varX, 1))
	assert.False(t, out.Contains(varX, 2))
}
