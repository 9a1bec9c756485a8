// Package driver orchestrates backward relevance, forward reachability,
// and pruning into the outer scoping loop (spec §4.6, §4.8): the state
// machine that runs backward analysis, optionally checks reachability,
// and optionally repeats to a joint fixed point.
package driver

import (
	"context"
	"fmt"
	"os"

	"github.com/sasscope/sasscope/backward"
	"github.com/sasscope/sasscope/forward"
	"github.com/sasscope/sasscope/internal/scopelog"
	"github.com/sasscope/sasscope/pruning"
	"github.com/sasscope/sasscope/sascodec"
	"github.com/sasscope/sasscope/sastask"
)

// Options is the explicit configuration record named by spec.md §9
// ("global mutable option bag ... is not part of the core"): every
// boolean that controls the outer loop travels here, never through
// package-level state.
type Options struct {
	CausalLinks bool
	Merging     bool
	FactBased   bool
	ForwardPass bool
	Loop        bool

	WriteOutputFile bool
}

// DefaultOptions returns every pass enabled, the CLI's default.
func DefaultOptions() Options {
	return Options{
		CausalLinks: true,
		Merging:     true,
		FactBased:   true,
		ForwardPass: true,
		Loop:        true,
	}
}

// Info aggregates counters and diagnostics for one Scope invocation.
type Info struct {
	Iterations    int
	MergeAttempts int
	Infeasible    bool
	TriviallyTrue bool

	VariablesBefore, VariablesAfter int
	FactsBefore, FactsAfter         int
	OperatorsBefore, OperatorsAfter int

	Log scopelog.Log
}

// Scope runs the S0-S5 state machine on task and returns the pruned
// result. It never mutates task; every pass returns a new Task value.
func Scope(task *sastask.Task, opts Options) (*sastask.Task, Info, error) {
	return scopeWithContext(context.Background(), task, opts)
}

// ScopeFile parses path as a SAS+ file, scopes it under opts, and, if
// opts.WriteOutputFile is set, writes the pruned task back out with a
// "_scoped" suffix. ctx bounds the outer loop: on cancellation the task
// from the most recently completed pruning step is accepted as a sound
// partial result (spec §5).
func ScopeFile(ctx context.Context, path string, opts Options) (Info, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("driver: reading %s: %w", path, err)
	}
	doc, err := sascodec.Parse(raw)
	if err != nil {
		return Info{}, fmt.Errorf("driver: parsing %s: %w", path, err)
	}
	task := sascodec.ToTask(doc)

	pruned, info, err := scopeWithContext(ctx, task, opts)
	if err != nil {
		return info, err
	}

	if opts.WriteOutputFile {
		outDoc := sascodec.FromTask(pruned, doc)
		out := sascodec.Emit(outDoc)
		outPath := outputPath(path)
		if err := os.WriteFile(outPath, out, 0644); err != nil {
			return info, fmt.Errorf("driver: writing %s: %w", outPath, err)
		}
	}
	return info, nil
}

func outputPath(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[:i] + "_scoped" + path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return path + "_scoped"
}

// scopeWithContext runs the state machine described in spec §4.8:
// S0 backward+prune, optionally S1->S2 forward+prune, S2->S3 loop check,
// terminating at S4 (accept) or S5 (infeasible).
func scopeWithContext(ctx context.Context, task *sastask.Task, opts Options) (*sastask.Task, Info, error) {
	info := &Info{}
	info.VariablesBefore = len(task.Variables())
	info.FactsBefore = task.Domains.NumFacts()
	info.OperatorsBefore = len(task.AllOperators())

	current := task
	for {
		select {
		case <-ctx.Done():
			info.Log.Warnf("outer loop cancelled; returning most recently pruned task", nil)
			finish(current, info)
			return current, *info, nil
		default:
		}

		info.Iterations++

		// S0: backward + prune.
		back, err := backward.Run(current, backward.Options{
			CausalLinks: opts.CausalLinks,
			Merging:     opts.Merging,
			FactBased:   opts.FactBased,
		})
		if err != nil {
			return nil, *info, fmt.Errorf("driver: backward pass: %w", err)
		}
		info.MergeAttempts += back.MergeAttempts
		nextTask := pruning.Prune(current, back.RelevantFacts, back.RelevantActions)

		if !opts.ForwardPass {
			current = nextTask
			break
		}

		// S2: forward + prune.
		fwd := forward.Run(nextTask)
		nextTask = pruning.Prune(nextTask, fwd.Reachable, fwd.Applied)

		if !fwd.GoalReachable {
			info.Infeasible = true
			info.Log.Warnf("goal not reachable from initial state; task collapsed to infeasible", nil)
			result := infeasibleTask(task)
			finish(result, info)
			return result, *info, nil
		}

		// S3: loop check.
		changed := !nextTask.Equal(current)
		current = nextTask
		if !(opts.Loop && changed) {
			break
		}
	}

	info.TriviallyTrue = len(current.Goal) == 0
	finish(current, info)
	return current, *info, nil
}

func finish(task *sastask.Task, info *Info) {
	info.VariablesAfter = len(task.Variables())
	info.FactsAfter = task.Domains.NumFacts()
	info.OperatorsAfter = len(task.AllOperators())
}

// infeasibleTask collapses task to the canonical trivially-false shape:
// domains preserved, no actions or axioms, and a goal naming a value
// that never holds in init and that nothing can ever write to, so the
// task is unsolvable by construction without introducing a new value.
func infeasibleTask(original *sastask.Task) *sastask.Task {
	return &sastask.Task{
		Domains: original.Domains,
		Init:    original.Init,
		Goal:    []sastask.Fact{{Var: unreachableVar(original), Val: unreachableVal(original)}},
		Metric:  original.Metric,
	}
}

// unreachableVar/unreachableVal pick a (variable, value) pair that never
// appears in init, so the canonical goal can never be satisfied (spec's
// non-goal: scoping never introduces new values). The variable is the
// first one with at least two values; when no variable has two values,
// the pair falls back to the first variable's init value.
func unreachableVar(t *sastask.Task) sastask.VarID {
	vars := t.Variables()
	for _, v := range vars {
		if t.Domains.DomainSize(v) > 1 {
			return v
		}
	}
	if len(vars) == 0 {
		return 0
	}
	return vars[0]
}

func unreachableVal(t *sastask.Task) uint {
	if len(t.Variables()) == 0 {
		return 0
	}
	v := unreachableVar(t)
	initVal := uint(0)
	for _, f := range t.Init {
		if f.Var == v {
			initVal = f.Val
		}
	}
	size := t.Domains.DomainSize(v)
	for x := uint(0); x < size; x++ {
		if x != initVal {
			return x
		}
	}
	return initVal
}
