package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Digest is the hex sha256 of the canonical JSON encoding. Map keys are
// emitted sorted, so equal states always hash equally.
func (s *State) Digest() string {
	b, err := json.Marshal(s)
	if err != nil {
		// Every field is a plain value type; Marshal cannot fail here.
		panic(err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
