// Package murmur implements the incremental form of 32-bit MurmurHash 3 used
// for every composite hash key in the runtime: prediction contexts, semantic
// contexts, lexer-action executors. Callers thread a running hash through
// Update once per word and seal it with Finish.
package murmur

// DefaultSeed is the seed used by Initialize when the caller has no opinion.
const DefaultSeed = 0

// Initialize begins a new running hash with the given seed.
func Initialize(seed int32) int32 {
	return seed
}

// Update mixes one 32-bit word into the running hash.
func Update(hash int32, value int32) int32 {
	const (
		c1 = int32(-862048943)  // 0xCC9E2D51
		c2 = int32(0x1B873593)
		r1 = 15
		r2 = 13
		m  = 5
		n  = int32(-430675100) // 0xE6546B64
	)

	k := value
	k *= c1
	k = (k << r1) | int32(uint32(k)>>(32-r1))
	k *= c2

	hash ^= k
	hash = (hash << r2) | int32(uint32(hash)>>(32-r2))
	hash = hash*m + n

	return hash
}

// Finish seals the running hash after numberOfWords calls to Update and
// returns the final value.
func Finish(hash int32, numberOfWords int) int32 {
	hash ^= int32(numberOfWords * 4)
	hash ^= int32(uint32(hash) >> 16)
	hash *= int32(-2048144789) // 0x85EBCA6B
	hash ^= int32(uint32(hash) >> 13)
	hash *= int32(-1028477387) // 0xC2B2AE35
	hash ^= int32(uint32(hash) >> 15)
	return hash
}
