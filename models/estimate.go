package models

import "github.com/fxamacker/cbor/v2"

// Estimate is the decision value a message carries. Concrete estimate types
// are supplied by the application (a boolean flag, an integer, a block
// reference) and must behave as immutable values.
type Estimate interface {
	// EstimateBytes returns the canonical byte encoding of the estimate.
	// The encoding must be deterministic and injective, since it feeds the
	// message content hash that every validator computes independently.
	EstimateBytes() ([]byte, error)

	// Equal reports value equality with another estimate.
	Equal(other Estimate) bool
}

// canonicalMode encodes with the CBOR canonical options, so the same value
// always produces the same bytes regardless of map ordering.
var canonicalMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	canonicalMode = em
}

// MarshalCanonical encodes a value with the canonical CBOR mode. Estimate
// implementations use it to build their EstimateBytes.
func MarshalCanonical(v interface{}) ([]byte, error) {
	return canonicalMode.Marshal(v)
}
