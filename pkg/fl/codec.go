package fl

import (
	"github.com/fxamacker/cbor/v2"
)

// Marshal encodes a weight snapshot to CBOR for publication to remote
// consumers (checkpoint events, model registry pushes).
func Marshal(th Theta) ([]byte, error) {
	return cbor.Marshal(th)
}

// Unmarshal decodes a CBOR weight snapshot.
func Unmarshal(data []byte) (Theta, error) {
	var th Theta
	if err := cbor.Unmarshal(data, &th); err != nil {
		return nil, err
	}

	return th, nil
}
