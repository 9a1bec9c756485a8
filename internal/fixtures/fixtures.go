// Package fixtures builds the hand-crafted tasks used throughout the test
// suite (the chain task of scenarios S1/S3, the merge-task fixture of S2,
// the unreachable-goal task of S4, and the hungry/food/money/serves task
// of S5), so each scenario is defined once instead of re-typed per test
// file. It plays the role the original implementation's
// scripts/generate_scoping_example.py played for its own test suite.
package fixtures

import (
	"github.com/sasscope/sasscope/factset"
	"github.com/sasscope/sasscope/sastask"
)

// Chain variable identities, stable across the fixtures that use them.
const (
	VarX sastask.VarID = iota
	VarY
	VarZ
)

// Chain builds the x/y/z chain task used by scenarios S1 and S3:
//
//	domains: x in {0,1,2}, y in {0,1}, z in {0,1,2}
//	actions: a1 pre x=0 eff x=1
//	         a2 pre x=1 eff y=1
//	         a3 pre y=1 eff z=1
//	         b1 pre y=0 eff x=2
//	         b2 pre z=0 eff z=2
//
// initX is the initial value of x; y and z are always initially 0.
func Chain(initX uint) *sastask.Task {
	return &sastask.Task{
		Domains: factset.NewDomains(map[sastask.VarID]uint{VarX: 3, VarY: 2, VarZ: 3}),
		Init: []sastask.Fact{
			{Var: VarX, Val: initX},
			{Var: VarY, Val: 0},
			{Var: VarZ, Val: 0},
		},
		Actions: []*sastask.Action{
			{Name: "a1", Pre: []sastask.Fact{{Var: VarX, Val: 0}}, Eff: []sastask.Fact{{Var: VarX, Val: 1}}, Cost: 1},
			{Name: "a2", Pre: []sastask.Fact{{Var: VarX, Val: 1}}, Eff: []sastask.Fact{{Var: VarY, Val: 1}}, Cost: 1},
			{Name: "a3", Pre: []sastask.Fact{{Var: VarY, Val: 1}}, Eff: []sastask.Fact{{Var: VarZ, Val: 1}}, Cost: 1},
			{Name: "b1", Pre: []sastask.Fact{{Var: VarY, Val: 0}}, Eff: []sastask.Fact{{Var: VarX, Val: 2}}, Cost: 1},
			{Name: "b2", Pre: []sastask.Fact{{Var: VarZ, Val: 0}}, Eff: []sastask.Fact{{Var: VarZ, Val: 2}}, Cost: 1},
		},
	}
}

// GoalX1 is the S1 goal: x=1.
func GoalX1() []sastask.Fact { return []sastask.Fact{{Var: VarX, Val: 1}} }

// GoalZ1 is the S3 goal: z=1.
func GoalZ1() []sastask.Fact { return []sastask.Fact{{Var: VarZ, Val: 1}} }

// Unreachable variable identities (S4).
const (
	VarUX sastask.VarID = iota
	VarUY
	VarUZ
)

// Unreachable builds the S4 fixture: x, y, z all range over {0,1,2}; the
// only actions advance x upward, so a goal of y=0 (with init y=1) can
// never be reached going forward from the initial state.
func Unreachable() *sastask.Task {
	return &sastask.Task{
		Domains: factset.NewDomains(map[sastask.VarID]uint{VarUX: 3, VarUY: 3, VarUZ: 3}),
		Init: []sastask.Fact{
			{Var: VarUX, Val: 2},
			{Var: VarUY, Val: 1},
			{Var: VarUZ, Val: 2},
		},
		Goal: []sastask.Fact{{Var: VarUY, Val: 0}},
		Actions: []*sastask.Action{
			{Name: "inc0", Pre: []sastask.Fact{{Var: VarUX, Val: 0}}, Eff: []sastask.Fact{{Var: VarUX, Val: 1}}, Cost: 1},
			{Name: "inc1", Pre: []sastask.Fact{{Var: VarUX, Val: 1}}, Eff: []sastask.Fact{{Var: VarUX, Val: 2}}, Cost: 1},
		},
	}
}

// Hungry/food/money/serves variable identities (S5).
const (
	VarHungry sastask.VarID = iota
	VarFood
	VarMoney
	VarServes
)

// HungryFoodMoneyServes builds the nine-action fixture of scenario S5:
// a diner starts hungry with money but no food; food can be cooked from
// money and time, or bought ready-made ("takeout"), and eating food
// satisfies hunger. serves tracks which dish was last served (0 = none,
// 1 = home-cooked, 2 = takeout); the goal is serves=2 (takeout was
// served), reachable by a single direct action once enough passes have
// stripped away the cooking-at-home alternative.
func HungryFoodMoneyServes() *sastask.Task {
	return &sastask.Task{
		Domains: factset.NewDomains(map[sastask.VarID]uint{
			VarHungry: 2, VarFood: 2, VarMoney: 2, VarServes: 3,
		}),
		Init: []sastask.Fact{
			{Var: VarHungry, Val: 1},
			{Var: VarFood, Val: 0},
			{Var: VarMoney, Val: 1},
			{Var: VarServes, Val: 0},
		},
		Goal: []sastask.Fact{{Var: VarServes, Val: 2}},
		Actions: []*sastask.Action{
			{Name: "a.buy_ingredients", Pre: []sastask.Fact{{Var: VarMoney, Val: 1}}, Eff: []sastask.Fact{{Var: VarFood, Val: 1}, {Var: VarMoney, Val: 0}}, Cost: 1},
			{Name: "b.cook", Pre: []sastask.Fact{{Var: VarFood, Val: 1}, {Var: VarHungry, Val: 1}}, Eff: []sastask.Fact{{Var: VarServes, Val: 1}}, Cost: 2},
			{Name: "c.eat_home", Pre: []sastask.Fact{{Var: VarServes, Val: 1}}, Eff: []sastask.Fact{{Var: VarHungry, Val: 0}}, Cost: 1},
			{Name: "d.earn_money", Pre: []sastask.Fact{{Var: VarMoney, Val: 0}}, Eff: []sastask.Fact{{Var: VarMoney, Val: 1}}, Cost: 3},
			{Name: "e.order_delivery", Pre: []sastask.Fact{{Var: VarMoney, Val: 1}, {Var: VarHungry, Val: 1}}, Eff: []sastask.Fact{{Var: VarFood, Val: 1}, {Var: VarMoney, Val: 0}}, Cost: 2},
			{Name: "f.takeout", Pre: []sastask.Fact{{Var: VarMoney, Val: 1}, {Var: VarHungry, Val: 1}}, Eff: []sastask.Fact{{Var: VarServes, Val: 2}, {Var: VarMoney, Val: 0}}, Cost: 1},
			{Name: "g.eat_out", Pre: []sastask.Fact{{Var: VarServes, Val: 2}}, Eff: []sastask.Fact{{Var: VarHungry, Val: 0}}, Cost: 1},
			{Name: "h.stay_hungry", Pre: []sastask.Fact{{Var: VarHungry, Val: 1}}, Eff: []sastask.Fact{{Var: VarHungry, Val: 1}}, Cost: 0},
			{Name: "i.skip_meal", Pre: []sastask.Fact{{Var: VarFood, Val: 0}, {Var: VarMoney, Val: 0}}, Eff: []sastask.Fact{{Var: VarHungry, Val: 1}}, Cost: 0},
		},
	}
}

// MergeTask variable identities (S2).
const (
	VarMX sastask.VarID = iota
	VarMY
	VarMZ
	VarMW
)

// MergeTask builds the S2 fixture: x in {0,1,2}, y in {0,1}, z in
// {0,1,2,3}, w in {0,1}. a3 and a4 share the effect z=1 at equal cost
// and, under the fixed context x=0, cover the whole domain of y — the
// canonical shape that lets merging eliminate y as a spanning ancestor.
// a1/a2 only ever affect w and are unreachable from the z=1 goal.
func MergeTask() *sastask.Task {
	return &sastask.Task{
		Domains: factset.NewDomains(map[sastask.VarID]uint{VarMX: 3, VarMY: 2, VarMZ: 4, VarMW: 2}),
		Init: []sastask.Fact{
			{Var: VarMX, Val: 0},
			{Var: VarMY, Val: 0},
			{Var: VarMZ, Val: 0},
			{Var: VarMW, Val: 0},
		},
		Goal: []sastask.Fact{{Var: VarMZ, Val: 1}},
		Actions: []*sastask.Action{
			{Name: "a1", Pre: []sastask.Fact{{Var: VarMW, Val: 0}}, Eff: []sastask.Fact{{Var: VarMW, Val: 1}}, Cost: 1},
			{Name: "a2", Pre: []sastask.Fact{{Var: VarMW, Val: 1}}, Eff: []sastask.Fact{{Var: VarMW, Val: 0}}, Cost: 1},
			{Name: "a3", Pre: []sastask.Fact{{Var: VarMX, Val: 0}, {Var: VarMY, Val: 0}}, Eff: []sastask.Fact{{Var: VarMZ, Val: 1}}, Cost: 1},
			{Name: "a4", Pre: []sastask.Fact{{Var: VarMX, Val: 0}, {Var: VarMY, Val: 1}}, Eff: []sastask.Fact{{Var: VarMZ, Val: 1}}, Cost: 1},
		},
	}
}
