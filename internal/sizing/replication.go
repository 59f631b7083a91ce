package sizing

import "fmt"

const (
	MinReplicationFactor     = 2
	MaxReplicationFactor     = 5
	DefaultReplicationFactor = 2
)

// ReplicationConfig controls how many full copies of the erasure-coded data
// are kept. Factor is ignored while Enabled is false.
type ReplicationConfig struct {
	Enabled bool `json:"enabled"`
	Factor  int  `json:"factor,omitempty"`
}

// EffectiveFactor is the multiplier applied to storage: 1 when disabled.
func (r ReplicationConfig) EffectiveFactor() int {
	if !r.Enabled {
		return 1
	}
	return r.Factor
}

// Validate checks the factor range when replication is enabled.
func (r ReplicationConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.Factor < MinReplicationFactor || r.Factor > MaxReplicationFactor {
		return fmt.Errorf("%w: replication factor must be between %d and %d, got %d",
			ErrInvalidInput, MinReplicationFactor, MaxReplicationFactor, r.Factor)
	}
	return nil
}

// Apply scales storageMB by the effective factor.
func (r ReplicationConfig) Apply(storageMB float64) float64 {
	return storageMB * float64(r.EffectiveFactor())
}
