package sizing

import (
	"fmt"

	"github.com/eniz1806/ecsizer/internal/erasure"
)

// DataShardRatio is the fraction of drives that carry data shards.
// The remainder carries parity (MinIO-style k+m with k = 3/4 of the drives).
const DataShardRatio = 0.75

// ClusterConfig describes the physical layout of the cluster.
type ClusterConfig struct {
	NodeCount     int `json:"nodes" yaml:"nodes"`
	DrivesPerNode int `json:"drives_per_node" yaml:"drives_per_node"`
}

// TotalDrives returns nodes × drives per node.
func (c ClusterConfig) TotalDrives() int {
	return c.NodeCount * c.DrivesPerNode
}

// ErasureScheme is a k+m shard layout spanning every drive in the cluster.
type ErasureScheme struct {
	DataShards   int `json:"data_shards"`
	ParityShards int `json:"parity_shards"`
}

// DeriveScheme splits the cluster's drives into data and parity shards.
// Data shards are truncated, never rounded, so a single drive yields 0+1.
func DeriveScheme(c ClusterConfig) ErasureScheme {
	total := c.TotalDrives()
	data := int(DataShardRatio * float64(total))
	return ErasureScheme{
		DataShards:   data,
		ParityShards: total - data,
	}
}

// TotalShards returns data + parity.
func (s ErasureScheme) TotalShards() int {
	return s.DataShards + s.ParityShards
}

// Multiplier is the storage amplification of the scheme (total / data).
// Returns 0 when the scheme has no data shards.
func (s ErasureScheme) Multiplier() float64 {
	if s.DataShards == 0 {
		return 0
	}
	return float64(s.TotalShards()) / float64(s.DataShards)
}

// String formats the scheme as "<data>+<parity>".
func (s ErasureScheme) String() string {
	return fmt.Sprintf("%d+%d", s.DataShards, s.ParityShards)
}

// FailureTolerance is the number of drives that may fail before data is lost.
// Each shard lives on its own drive, so this is the parity count.
func (s ErasureScheme) FailureTolerance() int {
	return s.ParityShards
}

// Check reports whether a Reed-Solomon codec can be built for the scheme.
// No data is encoded. The result is informational: schemes the codec cannot
// represent are still sized.
func (s ErasureScheme) Check() error {
	if s.DataShards == 0 {
		return ErrInvalidConfiguration
	}
	if err := erasure.Supported(s.DataShards, s.ParityShards); err != nil {
		return fmt.Errorf("scheme %s: %w", s, err)
	}
	return nil
}
