// The scopesas command scopes a SAS+ planning task down to the
// variables, facts, and operators relevant to its goal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sasscope/sasscope/driver"
)

var (
	errCodec   = errors.New("scopesas: codec or invariant error")
	errWriteIO = errors.New("scopesas: error writing output")
	errTimeout = errors.New("scopesas: timed out")
)

func main() {
	os.Exit(Run(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]))
}

// Run builds and executes the scopesas command against args, writing to
// stdout/stderr, and returns the process exit code. It takes no package
// state, so it is directly callable from tests with buffers in place of
// os.Stdout/os.Stderr.
func Run(stdin io.Reader, stdout, stderr io.Writer, args []string) int {
	var (
		disableMerging     bool
		disableCausalLinks bool
		variablesOnly      bool
		disableForwardPass bool
		disableLoop        bool
		write              bool
		format             string
		timeout            time.Duration
		configPath         string
	)

	var runErr error

	cmd := &cobra.Command{
		Use:           "scopesas <file>",
		Short:         "Scope a SAS+ task to the variables, facts, and operators relevant to its goal",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			opts := driver.DefaultOptions()
			opts.CausalLinks = !disableCausalLinks
			opts.Merging = !disableMerging
			opts.FactBased = !variablesOnly
			opts.ForwardPass = !disableForwardPass
			opts.Loop = !disableLoop
			opts.WriteOutputFile = write

			if configPath != "" {
				var err error
				opts, err = loadConfig(configPath, opts)
				if err != nil {
					return fmt.Errorf("%w: %v", errCodec, err)
				}
				if cmd.Flags().Changed("disable-causal-links") {
					opts.CausalLinks = !disableCausalLinks
				}
				if cmd.Flags().Changed("disable-merging") {
					opts.Merging = !disableMerging
				}
				if cmd.Flags().Changed("variables-only") {
					opts.FactBased = !variablesOnly
				}
				if cmd.Flags().Changed("disable-forward-pass") {
					opts.ForwardPass = !disableForwardPass
				}
				if cmd.Flags().Changed("disable-loop") {
					opts.Loop = !disableLoop
				}
				opts.WriteOutputFile = write
			}

			if format != "plain" && format != "json" {
				return fmt.Errorf("%w: invalid -format %q, want plain or json", errCodec, format)
			}

			ctx := context.Background()
			var cancel context.CancelFunc
			if timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			info, err := driver.ScopeFile(ctx, cmdArgs[0], opts)
			if err != nil {
				return classifyScopeError(err)
			}

			info.Log.Flush(summaryLogger(stderr))

			timedOut := ctx.Err() == context.DeadlineExceeded
			printSummary(stdout, format, info, timedOut)
			if timedOut {
				runErr = errTimeout
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(stdin)
	cmd.SetArgs(args)

	flags := cmd.Flags()
	flags.BoolVar(&disableMerging, "disable-merging", false, "disable action merging in the backward pass")
	flags.BoolVar(&disableCausalLinks, "disable-causal-links", false, "disable the causal-link filter in the backward pass")
	flags.BoolVar(&variablesOnly, "variables-only", false, "disable fact-based relevance, coarsen to whole variables")
	flags.BoolVar(&disableForwardPass, "disable-forward-pass", false, "skip the forward reachability pass")
	flags.BoolVar(&disableLoop, "disable-loop", false, "run the backward/forward passes once instead of to a fixed point")
	flags.BoolVarP(&write, "write", "w", false, "write the pruned task next to the input with a _scoped suffix")
	flags.StringVar(&format, "format", "plain", "summary output format: plain or json")
	flags.DurationVar(&timeout, "timeout", 0, "wrap the outer loop in a deadline; 0 disables it")
	flags.StringVar(&configPath, "config", "", "YAML file of driver options, overridden by any flag explicitly set")

	if err := cmd.Execute(); err != nil {
		return exitCodeFor(err)
	}
	if runErr != nil {
		return exitCodeFor(runErr)
	}
	return 0
}

func classifyScopeError(err error) error {
	if strings.Contains(err.Error(), "driver: writing") {
		return fmt.Errorf("%w: %v", errWriteIO, err)
	}
	return fmt.Errorf("%w: %v", errCodec, err)
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, errTimeout):
		return 3
	case errors.Is(err, errWriteIO):
		return 2
	default:
		return 1
	}
}

func summaryLogger(stderr io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.Out = stderr
	return logger
}

// summary is the JSON shape of the -format json summary; the plain
// format renders the same counters as lines of text.
type summary struct {
	VariablesBefore int  `json:"variables_before"`
	VariablesAfter  int  `json:"variables_after"`
	FactsBefore     int  `json:"facts_before"`
	FactsAfter      int  `json:"facts_after"`
	OperatorsBefore int  `json:"operators_before"`
	OperatorsAfter  int  `json:"operators_after"`
	Iterations      int  `json:"iterations"`
	MergeAttempts   int  `json:"merge_attempts"`
	Infeasible      bool `json:"infeasible"`
	TriviallyTrue   bool `json:"trivially_true"`
	TimedOut        bool `json:"timed_out"`
}

func printSummary(stdout io.Writer, format string, info driver.Info, timedOut bool) {
	s := summary{
		VariablesBefore: info.VariablesBefore,
		VariablesAfter:  info.VariablesAfter,
		FactsBefore:     info.FactsBefore,
		FactsAfter:      info.FactsAfter,
		OperatorsBefore: info.OperatorsBefore,
		OperatorsAfter:  info.OperatorsAfter,
		Iterations:      info.Iterations,
		MergeAttempts:   info.MergeAttempts,
		Infeasible:      info.Infeasible,
		TriviallyTrue:   info.TriviallyTrue,
		TimedOut:        timedOut,
	}

	if format == "json" {
		b, _ := json.MarshalIndent(s, "", "  ")
		fmt.Fprintf(stdout, "%s\n", b)
		return
	}

	fmt.Fprintf(stdout, "variables: %d -> %d\n", s.VariablesBefore, s.VariablesAfter)
	fmt.Fprintf(stdout, "facts:     %d -> %d\n", s.FactsBefore, s.FactsAfter)
	fmt.Fprintf(stdout, "operators: %d -> %d\n", s.OperatorsBefore, s.OperatorsAfter)
	fmt.Fprintf(stdout, "iterations: %d, merge attempts: %d\n", s.Iterations, s.MergeAttempts)
	if s.Infeasible {
		fmt.Fprintln(stdout, "goal unreachable: task scoped to a canonical infeasible task")
	}
	if s.TriviallyTrue {
		fmt.Fprintln(stdout, "goal trivially satisfied in the initial state")
	}
	if s.TimedOut {
		fmt.Fprintln(stdout, "timed out: reporting the most recently completed pruning step")
	}
}
