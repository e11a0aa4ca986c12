package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/GJDuck/gosat/internal/parsers"
	"github.com/GJDuck/gosat/internal/sat"
)

var flagSeed = flag.Int64(
	"seed",
	0,
	"seed for the decision random source",
)

var flagActivity = flag.Bool(
	"activity",
	false,
	"use activity-based decisions instead of random ones",
)

var flagPhaseSaving = flag.Bool(
	"phases",
	false,
	"save variable phases across backjumps (activity decisions only)",
)

var flagGzipped = flag.Bool(
	"gzip",
	false,
	"treat the instance file as gzip compressed",
)

var flagVerbose = flag.Bool(
	"v",
	false,
	"print search progress",
)

var flagCPUProfile = flag.Bool(
	"cpuprof",
	false,
	"save pprof CPU profile in cpuprof",
)

var flagMemProfile = flag.Bool(
	"memprof",
	false,
	"save pprof memory profile in memprof",
)

type config struct {
	instanceFile string
	options      sat.Options
	gzipped      bool
	memProfile   bool
	cpuProfile   bool
}

func parseConfig() (*config, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}

	options := sat.DefaultOptions
	options.Seed = *flagSeed
	options.PhaseSaving = *flagPhaseSaving
	options.Verbose = *flagVerbose
	if *flagActivity {
		options.Decision = sat.DecideActivity
	}

	return &config{
		instanceFile: flag.Arg(0),
		options:      options,
		gzipped:      *flagGzipped,
		memProfile:   *flagMemProfile,
		cpuProfile:   *flagCPUProfile,
	}, nil
}

func run(cfg *config) error {
	s := sat.NewSolver(cfg.options)
	if err := parsers.LoadDIMACS(cfg.instanceFile, cfg.gzipped, s); err != nil {
		return fmt.Errorf("could not parse instance: %s", err)
	}

	fmt.Printf("c variables:  %d\n", s.NumVariables())
	fmt.Printf("c clauses:    %d\n", s.NumConstraints())

	t := time.Now()
	status := s.Solve()
	elapsed := time.Since(t)

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c decisions:  %d\n", s.TotalDecisions)
	fmt.Printf("c conflicts:  %d (%.2f /sec)\n", s.TotalConflicts, float64(s.TotalConflicts)/elapsed.Seconds())
	fmt.Printf("c learnts:    %d\n", s.NumLearnts())

	switch status {
	case sat.True:
		fmt.Println("s SATISFIABLE")
		fmt.Println(modelLine(s.Models[len(s.Models)-1]))
	case sat.False:
		fmt.Println("s UNSATISFIABLE")
	}

	return nil
}

// modelLine formats a model as a DIMACS solution line.
func modelLine(model []bool) string {
	sb := strings.Builder{}
	sb.WriteString("v")
	for i, b := range model {
		if b {
			fmt.Fprintf(&sb, " %d", i+1)
		} else {
			fmt.Fprintf(&sb, " %d", -(i + 1))
		}
	}
	sb.WriteString(" 0")
	return sb.String()
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
