package erasure

import (
	"fmt"
	"sync"

	"github.com/klauspost/reedsolomon"
)

// MaxShards is the largest data+parity layout reedsolomon can build, using its
// GF(2^16) backend above 256 shards. Beyond it New fails with ErrMaxShardNum,
// whose message still names the GF(2^8) limit of 256.
const MaxShards = 65536

// Codec is a Reed-Solomon codec sized for a k+m layout. It is only used to
// confirm a layout is representable; nothing is encoded through it.
type Codec struct {
	rs           reedsolomon.Encoder
	dataShards   int
	parityShards int
}

// NewCodec creates a Reed-Solomon codec for dataShards+parityShards.
func NewCodec(dataShards, parityShards int) (*Codec, error) {
	rs, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("create reed-solomon codec %d+%d: %w", dataShards, parityShards, err)
	}
	return &Codec{
		rs:           rs,
		dataShards:   dataShards,
		parityShards: parityShards,
	}, nil
}

// TotalShards returns the shard count reported by the codec itself.
func (c *Codec) TotalShards() int {
	if ext, ok := c.rs.(reedsolomon.Extensions); ok {
		return ext.TotalShards()
	}
	return c.dataShards + c.parityShards
}

type layout struct {
	data, parity int
}

// supported caches Supported results by layout. Keys are bounded by MaxShards.
var supported sync.Map

// Supported reports whether a codec can be built for dataShards+parityShards.
// Building a 256-shard GF(2^8) matrix takes tens of milliseconds, so each
// layout is built at most once and only the outcome is kept.
func Supported(dataShards, parityShards int) error {
	if dataShards+parityShards > MaxShards {
		return fmt.Errorf("create reed-solomon codec %d+%d: %w", dataShards, parityShards, reedsolomon.ErrMaxShardNum)
	}
	key := layout{dataShards, parityShards}
	if v, ok := supported.Load(key); ok {
		err, _ := v.(error)
		return err
	}

	c, err := NewCodec(dataShards, parityShards)
	if err == nil && c.TotalShards() != dataShards+parityShards {
		err = fmt.Errorf("codec %d+%d reports %d shards", dataShards, parityShards, c.TotalShards())
	}
	supported.Store(key, err)
	return err
}
