package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/eniz1806/ecsizer/internal/sizing"
)

// Query parameter names for GET /api/v1/usage.
const (
	paramFileSize          = "file_size_mb"
	paramNodes             = "nodes"
	paramDrivesPerNode     = "drives_per_node"
	paramReplication       = "replication"
	paramReplicationFactor = "replication_factor"
)

type limitsResponse struct {
	MinFileSizeMB        float64 `json:"minFileSizeMB"`
	FileSizeStepMB       float64 `json:"fileSizeStepMB"`
	MinNodes             int     `json:"minNodes"`
	MinDrivesPerNode     int     `json:"minDrivesPerNode"`
	MinReplicationFactor int     `json:"minReplicationFactor"`
	MaxReplicationFactor int     `json:"maxReplicationFactor"`
	DataShardRatio       float64 `json:"dataShardRatio"`
}

type defaultsResponse struct {
	Defaults sizing.Request `json:"defaults"`
	Limits   limitsResponse `json:"limits"`
}

func (h *APIHandler) handleDefaults(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, defaultsResponse{
		Defaults: h.defaults.Request(),
		Limits: limitsResponse{
			MinFileSizeMB:        sizing.MinFileSizeMB,
			FileSizeStepMB:       0.1,
			MinNodes:             sizing.MinNodes,
			MinDrivesPerNode:     sizing.MinDrivesPerNode,
			MinReplicationFactor: sizing.MinReplicationFactor,
			MaxReplicationFactor: sizing.MaxReplicationFactor,
			DataShardRatio:       sizing.DataShardRatio,
		},
	})
}

// handleUsageQuery computes usage from query parameters. Results depend only
// on the inputs, so the response carries an ETag derived from them.
func (h *APIHandler) handleUsageQuery(w http.ResponseWriter, r *http.Request) {
	req, err := parseUsageQuery(r.URL.Query(), h.defaults.Request())
	if err != nil {
		h.metrics.RecordInputError()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, ok := h.calculate(w, req)
	if !ok {
		return
	}

	etag := requestETag(req)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if r.Header.Get("If-None-Match") == etag {
		h.metrics.RecordNotModified()
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *APIHandler) handleUsageJSON(w http.ResponseWriter, r *http.Request) {
	req := h.defaults.Request()
	if err := readJSON(r, &req); err != nil {
		h.metrics.RecordInputError()
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rep, ok := h.calculate(w, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// parseUsageQuery overlays query parameters on base. Absent parameters keep
// the base value.
func parseUsageQuery(q url.Values, base sizing.Request) (sizing.Request, error) {
	req := base
	if v := q.Get(paramFileSize); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("%w: %s must be a number", sizing.ErrInvalidInput, paramFileSize)
		}
		req.FileSizeMB = f
	}
	if v := q.Get(paramNodes); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: %s must be an integer", sizing.ErrInvalidInput, paramNodes)
		}
		req.Cluster.NodeCount = n
	}
	if v := q.Get(paramDrivesPerNode); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: %s must be an integer", sizing.ErrInvalidInput, paramDrivesPerNode)
		}
		req.Cluster.DrivesPerNode = n
	}
	if v := q.Get(paramReplication); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("%w: %s must be true or false", sizing.ErrInvalidInput, paramReplication)
		}
		req.Replication.Enabled = b
	}
	if v := q.Get(paramReplicationFactor); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: %s must be an integer", sizing.ErrInvalidInput, paramReplicationFactor)
		}
		req.Replication.Factor = n
	}
	return req, nil
}

// requestETag hashes the inputs that affect the result. The factor only
// counts when replication is on.
func requestETag(req sizing.Request) string {
	key := fmt.Sprintf("%s|%d|%d|%d",
		strconv.FormatFloat(req.FileSizeMB, 'g', -1, 64),
		req.Cluster.NodeCount, req.Cluster.DrivesPerNode,
		req.Replication.EffectiveFactor())
	if req.Replication.Enabled {
		key += "|r"
	}
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64String(key))
}
