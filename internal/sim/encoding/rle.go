package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"gridadventure/internal/sim/adventure"
)

// EncodeKinds encodes a row-major layer of kinds into base64(varint pairs).
// The pairs are (kind, run_len) repeated.
func EncodeKinds(layer []adventure.Kind) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	for i := 0; i < len(layer); {
		k := layer[i]
		run := 1
		for j := i + 1; j < len(layer) && layer[j] == k; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(k))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeKinds reverses EncodeKinds. want is the expected number of cells;
// a layer of any other length is rejected.
func DecodeKinds(b64 string, want int) ([]adventure.Kind, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	maxKind := uint64(len(adventure.Kinds()))
	out := make([]adventure.Kind, 0, want)
	for i := 0; i < len(raw); {
		k, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if k > maxKind {
			return nil, fmt.Errorf("unknown kind %d", k)
		}
		if run == 0 || uint64(len(out))+run > uint64(want) {
			return nil, fmt.Errorf("run of %d overflows %d cells", run, want)
		}
		for r := uint64(0); r < run; r++ {
			out = append(out, adventure.Kind(k))
		}
	}
	if len(out) != want {
		return nil, fmt.Errorf("decoded %d cells, want %d", len(out), want)
	}
	return out, nil
}
