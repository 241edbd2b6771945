package equation

import (
	"errors"
	"testing"
)

func TestSolve(t *testing.T) {
	tests := []struct {
		name      string
		a, b, c   int
		wantD     int
		wantRoots []float64
		wantText  string
	}{
		{"negative discriminant", 1, 0, 1, -4, nil, NoRoots},
		{"double root", 1, 2, 1, 0, []float64{-1}, "-1"},
		{"two roots sorted", 2, -5, 3, 1, []float64{1, 1.5}, "1, 1.5"},
		{"negative leading", -1, 0, 4, 16, []float64{-2, 2}, "-2, 2"},
		{"irrational roots rounded", 1, 1, -1, 5, []float64{-1.62, 0.62}, "-1.62, 0.62"},
		{"zero root is not negative zero", 3, 0, 0, 0, []float64{0}, "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sol, err := Solve(tc.a, tc.b, tc.c)
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if sol.Discriminant != tc.wantD {
				t.Errorf("discriminant = %d, want %d", sol.Discriminant, tc.wantD)
			}
			if sol.RootCount() != len(tc.wantRoots) {
				t.Fatalf("roots = %v, want %v", sol.Roots, tc.wantRoots)
			}
			for i := range tc.wantRoots {
				if sol.Roots[i] != tc.wantRoots[i] {
					t.Errorf("root[%d] = %v, want %v", i, sol.Roots[i], tc.wantRoots[i])
				}
			}
			if got := sol.Canonical(); got != tc.wantText {
				t.Errorf("Canonical() = %q, want %q", got, tc.wantText)
			}
		})
	}
}

func TestSolveRejectsZeroLeading(t *testing.T) {
	_, err := Solve(0, 2, 1)
	if !errors.Is(err, ErrNotQuadratic) {
		t.Fatalf("err = %v, want ErrNotQuadratic", err)
	}
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.125, 1.13},
		{-1.125, -1.13},
		{2.5, 2.5},
		{0.994, 0.99},
		{-0.001, 0},
		{1.005, 1.01},
		{-1.005, -1.01},
		{2.675, 2.68},
		{0.995, 1},
		{3, 3},
	}
	for _, tc := range tests {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSolveRoundsDecimalBoundary(t *testing.T) {
	// D = 0 and the single root is 1.005, stored in binary as 1.00499...
	sol, err := Solve(40000, -80400, 40401)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got := sol.Canonical(); got != "1.01" {
		t.Errorf("Canonical() = %q, want %q", got, "1.01")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		a, b, c int
		want    string
	}{
		{2, -5, 3, "2x² - 5x + 3 = 0"},
		{1, 0, -4, "x² - 4 = 0"},
		{-1, 1, 0, "-x² + x = 0"},
	}
	for _, tc := range tests {
		if got := Format(tc.a, tc.b, tc.c); got != tc.want {
			t.Errorf("Format(%d,%d,%d) = %q, want %q", tc.a, tc.b, tc.c, got, tc.want)
		}
	}
}
