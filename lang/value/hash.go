package value

// FNV-1a 32-bit constants, per the public domain algorithm. Every interned
// string's hash is computed once at creation and cached on the object so
// that hashing never happens again during a lookup.
const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619
)

// HashString computes the FNV-1a 32-bit hash of s.
func HashString(s string) uint32 {
	h := fnvOffsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
