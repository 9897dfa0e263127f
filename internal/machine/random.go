package machine

import "math/rand/v2"

// RandomSource provides the random bytes used by the RND instruction.
type RandomSource interface {
	RandomByte() byte
}

// RandomFunc adapts a function to the RandomSource interface.
type RandomFunc func() byte

// RandomByte returns the result of calling f.
func (f RandomFunc) RandomByte() byte {
	return f()
}

type defaultRandom struct{}

func (defaultRandom) RandomByte() byte {
	return byte(rand.Uint32())
}
