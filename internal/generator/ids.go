package generator

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// idSpace derives object IDs from stable keys. The scope is the project's
// path relative to the graph root, so another project can compute the ID
// of a target it references.
type idSpace struct {
	scope string
}

// id returns a 24-character hexadecimal object ID, the width Xcode uses.
func (s idSpace) id(isa string, parts ...string) string {
	h := sha1.New()
	h.Write([]byte(s.scope))
	h.Write([]byte{0})
	h.Write([]byte(isa))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))[:24])
}
