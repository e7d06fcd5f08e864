// Package stat implements the numeric stat blocks shared by players and enemies
// and the field-wise algebra used to derive actual stats from base stats.
package stat

// Block is a fixed-schema stat record that supports field-wise addition and
// multiplication. Both operations return a new value and never mutate the receiver.
type Block[S any] interface {
	Add(o S) S
	Mul(o S) S
}

// ceil clamps v to at most 1. Used for resistance components.
func ceil(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
