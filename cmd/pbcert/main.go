// Command pbcert builds one of the bundled example problems, runs it
// through the solver, and optionally writes the OPB model and cutting-planes
// proof files an external checker can verify.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/gitrdm/pbcert/internal/problems"
	"github.com/gitrdm/pbcert/pkg/gcs"
)

const (
	exitOK          = 0
	exitUsageError  = 1
	exitSolverError = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("pbcert", pflag.ContinueOnError)
	problem := flags.String("problem", "", fmt.Sprintf("problem to solve: one of %s", strings.Join(problems.Names(), ", ")))
	opbPath := flags.String("opb", "", "write the OPB model file to this path")
	proofPath := flags.String("proof", "", "write the cutting-planes proof to this path (only when --opb is also given)")
	friendlyNames := flags.Bool("friendly-names", false, "recorded in the proof options; proof atoms are still named xN")
	fullEncoding := flags.Bool("full-encoding", false, "recorded in the proof options; each variable still gets one encoding")
	timeout := flags.Duration("timeout", 0, "abort the search after this long (0 disables the timeout)")
	verbose := flags.Bool("verbose", false, "log solve start/finish, branching, backtracks, and solutions at debug level")

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsageError
	}
	if *problem == "" {
		fmt.Fprintf(os.Stderr, "pbcert: --problem is required (one of %s)\n", strings.Join(problems.Names(), ", "))
		return exitUsageError
	}

	var opbFile, proofFile *os.File
	var err error
	if *opbPath != "" {
		if opbFile, err = os.Create(*opbPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUsageError
		}
		defer opbFile.Close()
	}
	if *proofPath != "" {
		if proofFile, err = os.Create(*proofPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUsageError
		}
		defer proofFile.Close()
	}

	opts := gcs.ProofOptions{
		OPBPath: *opbPath, ProofPath: *proofPath,
		FriendlyNames: *friendlyNames, FullEncoding: *fullEncoding,
	}
	m, err := problems.Build(*problem, opts, opbFile, proofFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pbcert:", err)
		return exitUsageError
	}
	if opbFile != nil {
		if err := m.WriteModel(opbFile); err != nil {
			fmt.Fprintln(os.Stderr, "pbcert:", err)
			return exitSolverError
		}
	}

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	}

	cfg := gcs.SolverConfig{Proof: opts, Logger: logger}
	if *timeout > 0 {
		ctx, cancel := gcs.WithTimeout(context.Background(), *timeout)
		defer cancel()
		cfg.Context = ctx
	}

	solutions := 0
	cfg.Callbacks.Solution = func(s *gcs.Solution) bool {
		solutions++
		fmt.Printf("solution %d:", solutions)
		for i, v := range s.Values() {
			fmt.Printf(" %s=%d", s.NameOf(i), v)
		}
		fmt.Println()
		return true
	}

	solver := gcs.NewSolver(m, cfg)
	result, err := solver.Solve()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pbcert:", err)
		return exitSolverError
	}

	switch result.Outcome {
	case gcs.Unsatisfiable:
		fmt.Println("UNSAT")
	case gcs.Interrupted:
		fmt.Println("INTERRUPTED")
	default:
		fmt.Printf("%d solution(s), %d recursions, %d propagations\n",
			result.Stats.Solutions, result.Stats.Recursions, result.Stats.Propagations)
	}
	return exitOK
}
