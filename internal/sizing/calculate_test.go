package sizing

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestCalculate_Default(t *testing.T) {
	rep, err := Calculate(DefaultRequest())
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if rep.TotalDrives != 16 {
		t.Errorf("total drives: got %d, want 16", rep.TotalDrives)
	}
	if rep.Scheme != "12+4" {
		t.Errorf("scheme: got %q, want 12+4", rep.Scheme)
	}
	if rep.ReplicationEnabled {
		t.Error("replication should be disabled by default")
	}
	if rep.ReplicationFactor != 1 {
		t.Errorf("effective factor: got %d, want 1", rep.ReplicationFactor)
	}
	if rep.ReplicatedStorageMB != 0 {
		t.Errorf("replicated storage should be unset, got %v", rep.ReplicatedStorageMB)
	}
	if !almostEqual(rep.TotalStorageMB(), rep.StorageUsedMB) {
		t.Errorf("total storage: got %v, want %v", rep.TotalStorageMB(), rep.StorageUsedMB)
	}
	if !almostEqual(rep.ShardSizeMB*float64(rep.TotalDrives), rep.StorageUsedMB) {
		t.Errorf("shard size %v × %d != %v", rep.ShardSizeMB, rep.TotalDrives, rep.StorageUsedMB)
	}
}

func TestCalculate_Replication(t *testing.T) {
	req := Request{
		FileSizeMB:  50,
		Cluster:     ClusterConfig{NodeCount: 1, DrivesPerNode: 2},
		Replication: ReplicationConfig{Enabled: true, Factor: 3},
	}
	rep, err := Calculate(req)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if rep.StorageUsedMB != 100 {
		t.Errorf("storage used: got %v, want 100", rep.StorageUsedMB)
	}
	if rep.ReplicatedStorageMB != 300 {
		t.Errorf("replicated storage: got %v, want 300", rep.ReplicatedStorageMB)
	}
	if rep.TotalStorageMB() != 300 {
		t.Errorf("total storage: got %v, want 300", rep.TotalStorageMB())
	}

	req.Replication.Enabled = false
	rep, err = Calculate(req)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if rep.TotalStorageMB() != 100 {
		t.Errorf("disabled replication: got %v, want 100", rep.TotalStorageMB())
	}
}

func TestCalculate_InvalidConfiguration(t *testing.T) {
	req := DefaultRequest()
	req.Cluster = ClusterConfig{NodeCount: 1, DrivesPerNode: 1}
	_, err := Calculate(req)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if msg := ErrorMessage(err); msg != InvalidConfigurationMessage {
		t.Errorf("message: got %q", msg)
	}
}

func TestCalculate_BeyondCodecLimit(t *testing.T) {
	req := DefaultRequest()
	req.FileSizeMB = 100
	req.Cluster = ClusterConfig{NodeCount: 300, DrivesPerNode: 300}
	rep, err := Calculate(req)
	if err != nil {
		t.Fatalf("large clusters are still sized, got %v", err)
	}
	if rep.Scheme != "67500+22500" {
		t.Errorf("scheme: got %q, want 67500+22500", rep.Scheme)
	}
	want := Compute(100, 300, 300)
	if rep.StorageUsedMB != want.StorageUsedMB {
		t.Errorf("storage used: got %v, want %v", rep.StorageUsedMB, want.StorageUsedMB)
	}
	if rep.CodecSupported {
		t.Error("90000 shards should be reported as unsupported by the codec")
	}
	if rep.FailureTolerance != 22500 {
		t.Errorf("failure tolerance: got %d, want 22500", rep.FailureTolerance)
	}
}

func TestCalculate_CodecSupported(t *testing.T) {
	tests := []struct {
		nodes, drives int
		tolerance     int
	}{
		{1, 2, 1},
		{4, 4, 4},
		{16, 16, 64},
		{20, 20, 100},
	}
	for _, tt := range tests {
		req := DefaultRequest()
		req.Cluster = ClusterConfig{NodeCount: tt.nodes, DrivesPerNode: tt.drives}
		rep, err := Calculate(req)
		if err != nil {
			t.Fatalf("%dx%d: %v", tt.nodes, tt.drives, err)
		}
		if !rep.CodecSupported {
			t.Errorf("%dx%d: expected codec support", tt.nodes, tt.drives)
		}
		if rep.FailureTolerance != tt.tolerance {
			t.Errorf("%dx%d: failure tolerance got %d, want %d", tt.nodes, tt.drives, rep.FailureTolerance, tt.tolerance)
		}
	}
}

func TestCalculate_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"zero file size", func(r *Request) { r.FileSizeMB = 0 }},
		{"file size below minimum", func(r *Request) { r.FileSizeMB = 0.05 }},
		{"negative file size", func(r *Request) { r.FileSizeMB = -1 }},
		{"NaN file size", func(r *Request) { r.FileSizeMB = math.NaN() }},
		{"infinite file size", func(r *Request) { r.FileSizeMB = math.Inf(1) }},
		{"negative infinite file size", func(r *Request) { r.FileSizeMB = math.Inf(-1) }},
		{"zero nodes", func(r *Request) { r.Cluster.NodeCount = 0 }},
		{"zero drives", func(r *Request) { r.Cluster.DrivesPerNode = 0 }},
		{"factor too low", func(r *Request) { r.Replication = ReplicationConfig{Enabled: true, Factor: 1} }},
		{"factor too high", func(r *Request) { r.Replication = ReplicationConfig{Enabled: true, Factor: 6} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := DefaultRequest()
			tt.mutate(&req)
			_, err := Calculate(req)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestReplicationConfig(t *testing.T) {
	off := ReplicationConfig{Factor: 4}
	if off.EffectiveFactor() != 1 {
		t.Errorf("disabled factor: got %d, want 1", off.EffectiveFactor())
	}
	if err := off.Validate(); err != nil {
		t.Errorf("disabled replication should not validate factor: %v", err)
	}
	if off.Apply(100) != 100 {
		t.Errorf("disabled apply: got %v, want 100", off.Apply(100))
	}

	for f := MinReplicationFactor; f <= MaxReplicationFactor; f++ {
		on := ReplicationConfig{Enabled: true, Factor: f}
		if err := on.Validate(); err != nil {
			t.Errorf("factor %d: %v", f, err)
		}
		if got := on.Apply(100); got != float64(100*f) {
			t.Errorf("factor %d apply: got %v", f, got)
		}
	}
}

func TestRender(t *testing.T) {
	rep, err := Calculate(Request{
		FileSizeMB:  100,
		Cluster:     ClusterConfig{NodeCount: 4, DrivesPerNode: 4},
		Replication: ReplicationConfig{Enabled: true, Factor: 2},
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, rep); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Total Drives: 16",
		"12 data + 4 parity (12+4)",
		"Storage Used (without replication): 133.33 MB",
		"Storage Used (with replication factor 2): 266.67 MB",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_ReplicationDisabled(t *testing.T) {
	rep, err := Calculate(DefaultRequest())
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	var buf bytes.Buffer
	Render(&buf, rep)
	if !strings.Contains(buf.String(), "Replication is disabled") {
		t.Errorf("expected disabled notice, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "1.33 MB") {
		t.Errorf("expected 1.33 MB, got:\n%s", buf.String())
	}
}
