package main

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kr/pretty"

	"github.com/GJDuck/gosat/internal/parsers"
	"github.com/GJDuck/gosat/internal/sat"
)

// This test suite evaluates the correctness of the solver by verifying that
// it finds the exact set of models of each instance under testdataDir.
//
// Each test case is made of two files:
//
//   - An instance file containing a valid DIMACS CNF instance with the
//     ".cnf" file extension.
//   - A models file containing the (possibly empty) set of the instance's
//     models, one 0-terminated model per line over the same literals as the
//     instance file, named after the instance file with the ".cnf.models"
//     extension.
var testdataDir = "testdata"

type testCase struct {
	instanceName string
	instanceFile string
	modelsFile   string
}

// listTestCases returns the list of test cases contained in the file tree
// rooted in the given directory.
func listTestCases(dir string) ([]testCase, error) {
	testCases := []testCase{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".cnf") {
			return nil // not an instance file
		}
		testCases = append(testCases, testCase{
			instanceName: d.Name(),
			instanceFile: path,
			modelsFile:   path + ".models",
		})
		return nil
	})

	return testCases, err
}

// toString returns a binary string representation of the given model. For
// example, model [true, false, false] results in string "100".
func toString(model []bool) string {
	s := make([]byte, 0, len(model))
	for _, b := range model {
		if b {
			s = append(s, '1')
		} else {
			s = append(s, '0')
		}
	}
	return string(s)
}

// toSet converts a slice of models into a set of models represented as
// binary strings (see toString).
func toSet(s [][]bool) map[string]struct{} {
	set := map[string]struct{}{}
	for _, m := range s {
		set[toString(m)] = struct{}{}
	}
	return set
}

// solveAll returns an unordered list of all the instance's models.
func solveAll(s *sat.Solver) [][]bool {
	maxModels := 1 << s.NumVariables()
	for len(s.Models) <= maxModels && s.Solve() == sat.True {
		// Add a new clause to forbid the last model found. Note that the
		// literals must be flipped: !(a ^ b ^ c) corresponds to
		// (!a v !b v !c).
		model := s.Models[len(s.Models)-1]
		blocking := make([]sat.Literal, len(model))
		for i, b := range model {
			if b {
				blocking[i] = sat.Literal(-(i + 1))
			} else {
				blocking[i] = sat.Literal(i + 1)
			}
		}
		s.AddClause(blocking)
	}
	return s.Models
}

// TestSolveAll verifies that the solver finds all the models of a set of
// instances, for both decision policies. Test cases are evaluated in
// parallel.
func TestSolveAll(t *testing.T) {
	testCases, err := listTestCases(testdataDir)
	if err != nil {
		t.Fatalf("Error listing test cases: %s", err)
	}
	if len(testCases) == 0 {
		t.Fatal("no test cases found")
	}

	for _, ops := range []sat.Options{
		{Decision: sat.DecideRandom},
		{Decision: sat.DecideActivity, ActivityDecay: 0.95, PhaseSaving: true},
	} {
		ops := ops
		policy := "random"
		if ops.Decision == sat.DecideActivity {
			policy = "activity"
		}
		for i := 0; i < len(testCases); i++ {
			tc := testCases[i]
			t.Run(policy+"/"+tc.instanceName, func(t *testing.T) {
				t.Parallel()

				want, err := parsers.ReadModels(tc.modelsFile)
				if err != nil {
					t.Fatalf("Model parsing error: %s", err)
				}
				s := sat.NewSolver(ops)
				if err := parsers.LoadDIMACS(tc.instanceFile, false, s); err != nil {
					t.Fatalf("Instance parsing error: %s", err)
				}

				got := solveAll(s)

				if len(got) != len(want) {
					t.Errorf("Incorrect number of models: got %d, want %d", len(got), len(want))
				}
				if !cmp.Equal(toSet(got), toSet(want)) {
					t.Errorf("Model mismatch: %s", pretty.Diff(toSet(want), toSet(got)))
				}
			})
		}
	}
}
