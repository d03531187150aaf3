//go:build !race

package share

func passwordHashCost() int {
	return 14
}
