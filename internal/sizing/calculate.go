package sizing

import (
	"fmt"
	"log/slog"
	"math"
)

// Form limits and defaults.
const (
	MinFileSizeMB    = 0.1
	MinNodes         = 1
	MinDrivesPerNode = 1

	DefaultFileSizeMB    = 1.0
	DefaultNodes         = 4
	DefaultDrivesPerNode = 4
)

// Request is one filled-in calculator form.
type Request struct {
	FileSizeMB  float64           `json:"file_size_mb"`
	Cluster     ClusterConfig     `json:"cluster"`
	Replication ReplicationConfig `json:"replication"`
}

// DefaultRequest returns the form as it first appears.
func DefaultRequest() Request {
	return Request{
		FileSizeMB: DefaultFileSizeMB,
		Cluster: ClusterConfig{
			NodeCount:     DefaultNodes,
			DrivesPerNode: DefaultDrivesPerNode,
		},
		Replication: ReplicationConfig{Factor: DefaultReplicationFactor},
	}
}

// Validate rejects values the form would never submit.
func (r Request) Validate() error {
	if math.IsNaN(r.FileSizeMB) || math.IsInf(r.FileSizeMB, 0) {
		return fmt.Errorf("%w: file size must be a finite number, got %g", ErrInvalidInput, r.FileSizeMB)
	}
	if r.FileSizeMB < MinFileSizeMB {
		return fmt.Errorf("%w: file size must be at least %.1f MB, got %g", ErrInvalidInput, MinFileSizeMB, r.FileSizeMB)
	}
	if r.Cluster.NodeCount < MinNodes {
		return fmt.Errorf("%w: number of nodes must be at least %d, got %d", ErrInvalidInput, MinNodes, r.Cluster.NodeCount)
	}
	if r.Cluster.DrivesPerNode < MinDrivesPerNode {
		return fmt.Errorf("%w: drives per node must be at least %d, got %d", ErrInvalidInput, MinDrivesPerNode, r.Cluster.DrivesPerNode)
	}
	return r.Replication.Validate()
}

// Report is everything the output display shows for a valid configuration.
type Report struct {
	FileSizeMB          float64 `json:"file_size_mb"`
	TotalDrives         int     `json:"total_drives"`
	DataShards          int     `json:"data_shards"`
	ParityShards        int     `json:"parity_shards"`
	Scheme              string  `json:"scheme"`
	Multiplier          float64 `json:"multiplier"`
	StorageUsedMB       float64 `json:"storage_used_mb"`
	ShardSizeMB         float64 `json:"shard_size_mb"`
	FailureTolerance    int     `json:"failure_tolerance"`
	CodecSupported      bool    `json:"codec_supported"`
	ReplicationEnabled  bool    `json:"replication_enabled"`
	ReplicationFactor   int     `json:"replication_factor"`
	ReplicatedStorageMB float64 `json:"replicated_storage_mb,omitempty"`
}

// TotalStorageMB is the figure to provision: replicated when enabled.
func (r Report) TotalStorageMB() float64 {
	if r.ReplicationEnabled {
		return r.ReplicatedStorageMB
	}
	return r.StorageUsedMB
}

// Calculate validates req, runs Compute and applies replication.
// A degenerate cluster yields ErrInvalidConfiguration.
func Calculate(req Request) (Report, error) {
	if err := req.Validate(); err != nil {
		return Report{}, err
	}

	usage := Compute(req.FileSizeMB, req.Cluster.NodeCount, req.Cluster.DrivesPerNode)
	if !usage.Valid() {
		slog.Info("sizing: invalid configuration",
			"nodes", req.Cluster.NodeCount, "drives_per_node", req.Cluster.DrivesPerNode)
		return Report{}, ErrInvalidConfiguration
	}

	scheme := usage.Scheme()
	codecErr := scheme.Check()
	if codecErr != nil {
		slog.Debug("sizing: scheme not representable by codec", "scheme", scheme.String(), "error", codecErr)
	}

	total := req.Cluster.TotalDrives()
	rep := Report{
		FileSizeMB:         req.FileSizeMB,
		TotalDrives:        total,
		DataShards:         usage.DataShards,
		ParityShards:       usage.ParityShards,
		Scheme:             scheme.String(),
		Multiplier:         scheme.Multiplier(),
		StorageUsedMB:      usage.StorageUsedMB,
		ShardSizeMB:        usage.StorageUsedMB / float64(total),
		FailureTolerance:   scheme.FailureTolerance(),
		CodecSupported:     codecErr == nil,
		ReplicationEnabled: req.Replication.Enabled,
		ReplicationFactor:  req.Replication.EffectiveFactor(),
	}
	if req.Replication.Enabled {
		rep.ReplicatedStorageMB = req.Replication.Apply(usage.StorageUsedMB)
	}

	slog.Debug("sizing: calculated",
		"scheme", rep.Scheme, "file_size_mb", req.FileSizeMB,
		"storage_used_mb", rep.StorageUsedMB, "replication_factor", rep.ReplicationFactor)
	return rep, nil
}
