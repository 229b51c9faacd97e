package perm_test

import (
	"fmt"

	"github.com/matzehuels/medianshift/pkg/perm"
)

func ExampleCombinations() {
	for c := range perm.Combinations(4, 2) {
		fmt.Println(c)
	}
	// Output:
	// [0 1]
	// [0 2]
	// [0 3]
	// [1 2]
	// [1 3]
	// [2 3]
}

func ExampleBinomial() {
	fmt.Println("8 choose 3 =", perm.Binomial(8, 3))
	// Output:
	// 8 choose 3 = 56
}
