package translation

import (
	"errors"
	"strings"
)

// BridgeLanguage is the only intermediate language tried for two-hop routes.
const BridgeLanguage = "en"

var (
	// ErrUnsupportedPair means neither a direct model nor a bridge route exists.
	ErrUnsupportedPair = errors.New("language pair is not supported")
	// ErrEmptyRegistry means startup produced no models at all.
	ErrEmptyRegistry = errors.New("models directory is empty")
	// ErrMissingModelFiles means a pair directory lacks a required file and the
	// store was told to reject such pairs.
	ErrMissingModelFiles = errors.New("model files are missing")
)

// PairKey identifies an ordered language pair as the concatenation of the
// source and target codes, e.g. "enfr".
type PairKey string

func NewPairKey(source, target string) PairKey {
	return PairKey(source + target)
}

func (k PairKey) String() string {
	return string(k)
}

// Languages splits an even-length key into equal halves. Keys that cannot be
// split that way report ok=false.
func (k PairKey) Languages() (source, target string, ok bool) {
	raw := strings.TrimSpace(string(k))
	if raw == "" || len(raw)%2 != 0 {
		return "", "", false
	}
	half := len(raw) / 2
	return raw[:half], raw[half:], true
}
