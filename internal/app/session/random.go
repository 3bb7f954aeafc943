package session

import "math/rand/v2"

// randomPicker picks roulette slices with the global math/rand/v2 source.
type randomPicker struct{}

func (randomPicker) IntN(n int) int { return rand.IntN(n) }
