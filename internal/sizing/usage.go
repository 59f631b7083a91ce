package sizing

import "errors"

var (
	// ErrInvalidConfiguration is returned when the cluster is too small to
	// hold a single data shard under the fixed 75/25 split.
	ErrInvalidConfiguration = errors.New("invalid configuration: cluster too small for erasure coding")

	// ErrInvalidInput wraps every rejected form value.
	ErrInvalidInput = errors.New("invalid input")
)

// UsageResult is the output of Compute. The zero value is the sentinel for
// an invalid (degenerate) cluster and must not be read as a zero-size file.
type UsageResult struct {
	StorageUsedMB float64 `json:"storage_used_mb"`
	DataShards    int     `json:"data_shards"`
	ParityShards  int     `json:"parity_shards"`
}

// Valid reports whether r is a real result rather than the sentinel.
func (r UsageResult) Valid() bool {
	return r.DataShards > 0
}

// Scheme returns the shard layout carried by r.
func (r UsageResult) Scheme() ErasureScheme {
	return ErasureScheme{DataShards: r.DataShards, ParityShards: r.ParityShards}
}

// Compute returns the erasure-coded footprint of a file of fileSizeMB on a
// cluster of nodeCount × drivesPerNode drives. It returns the zero
// UsageResult when the cluster cannot carry a data shard.
func Compute(fileSizeMB float64, nodeCount, drivesPerNode int) UsageResult {
	scheme := DeriveScheme(ClusterConfig{NodeCount: nodeCount, DrivesPerNode: drivesPerNode})
	if scheme.DataShards == 0 {
		return UsageResult{}
	}
	return UsageResult{
		StorageUsedMB: fileSizeMB * scheme.Multiplier(),
		DataShards:    scheme.DataShards,
		ParityShards:  scheme.ParityShards,
	}
}
