package perm

import (
	"math"
	"slices"
	"testing"
)

func TestSeq(t *testing.T) {
	if got := Seq(4); !slices.Equal(got, []int{0, 1, 2, 3}) {
		t.Errorf("Seq(4) = %v", got)
	}
	if got := Seq(-1); len(got) != 0 {
		t.Errorf("Seq(-1) = %v, want empty", got)
	}
}

func TestBinomial(t *testing.T) {
	tests := []struct {
		n, k, want int
	}{
		{5, 2, 10},
		{5, 0, 1},
		{5, 5, 1},
		{6, 3, 20},
		{3, 4, 0},
		{3, -1, 0},
		{52, 5, 2598960},
		{1000, 500, math.MaxInt},
	}
	for _, tt := range tests {
		if got := Binomial(tt.n, tt.k); got != tt.want {
			t.Errorf("Binomial(%d,%d) = %d, want %d", tt.n, tt.k, got, tt.want)
		}
	}
}

func TestCombinationsLexicographic(t *testing.T) {
	got := Collect(4, 2)
	want := [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	if len(got) != len(want) {
		t.Fatalf("Collect(4,2) = %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("combination %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCombinationsCount(t *testing.T) {
	for n := 0; n <= 7; n++ {
		for k := 0; k <= n; k++ {
			count := 0
			for range Combinations(n, k) {
				count++
			}
			if count != Binomial(n, k) {
				t.Errorf("Combinations(%d,%d) yielded %d, want %d", n, k, count, Binomial(n, k))
			}
		}
	}
}

func TestCombinationsEdgeCases(t *testing.T) {
	if got := Collect(3, 0); len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("Collect(3,0) = %v, want [[]]", got)
	}
	if got := Collect(2, 3); got != nil {
		t.Errorf("Collect(2,3) = %v, want nil", got)
	}
}

func TestCombinationsEarlyStop(t *testing.T) {
	count := 0
	for range Combinations(10, 3) {
		count++
		if count == 5 {
			break
		}
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}
}
