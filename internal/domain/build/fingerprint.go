package build

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint identifies one load of the topic source. Reloads whose
// LoadHash matches the previous one can be skipped.
type Fingerprint struct {
	SourceHash string
	RulesHash  string
	LoadHash   string
}

func (f *Fingerprint) ComputeLoadHash() {
	h := sha256.New()
	h.Write([]byte(f.SourceHash))
	h.Write([]byte{0})
	h.Write([]byte(f.RulesHash))
	f.LoadHash = hex.EncodeToString(h.Sum(nil))
}

func (f Fingerprint) Same(other Fingerprint) bool {
	return f.LoadHash != "" && f.LoadHash == other.LoadHash
}

func HashBytes(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
