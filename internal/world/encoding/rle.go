package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeRLE packs a row-major tile buffer into base64(varint pairs), each
// pair being (tile_id, run_len). Chunk tiles are highly repetitive, so this
// keeps persisted world documents small without a binary format.
func EncodeRLE(tiles []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(tiles) {
		t := tiles[i]
		run := 1
		for j := i + 1; j < len(tiles) && tiles[j] == t; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(t))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// maxDecodedTiles bounds a decode so a corrupt run length cannot demand an
// arbitrary allocation. Far above the largest configurable chunk (256x256).
const maxDecodedTiles = 1 << 20

func DecodeRLE(b64 string) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint16
	for i := 0; i < len(raw); {
		t, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if t > 0xFFFF {
			return nil, fmt.Errorf("tile id too large: %d", t)
		}
		if run == 0 || run > maxDecodedTiles || len(out)+int(run) > maxDecodedTiles {
			return nil, fmt.Errorf("bad run length %d at %d", run, i)
		}
		for k := 0; k < int(run); k++ {
			out = append(out, uint16(t))
		}
	}
	return out, nil
}
