package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eniz1806/ecsizer/internal/sizing"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// usageURL builds the GET /api/v1/usage URL for req.
func usageURL(base string, req sizing.Request) string {
	q := url.Values{}
	q.Set("file_size_mb", strconv.FormatFloat(req.FileSizeMB, 'g', -1, 64))
	q.Set("nodes", strconv.Itoa(req.Cluster.NodeCount))
	q.Set("drives_per_node", strconv.Itoa(req.Cluster.DrivesPerNode))
	q.Set("replication", strconv.FormatBool(req.Replication.Enabled))
	q.Set("replication_factor", strconv.Itoa(req.Replication.Factor))
	return strings.TrimRight(base, "/") + "/api/v1/usage?" + q.Encode()
}

func runQuery(args []string, stdout, stderr io.Writer) int {
	cf, err := parseCalcFlags("query", args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	resp, err := httpClient.Get(usageURL(endpoint, cf.req))
	if err != nil {
		fmt.Fprintf(stderr, "Error: request failed: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			fmt.Fprintf(stderr, "Error: HTTP %d\n", resp.StatusCode)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %s\n", e.Error)
		return 1
	}

	var rep sizing.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		fmt.Fprintf(stderr, "Error: decode response: %v\n", err)
		return 1
	}
	return printReport(stdout, stderr, rep, cf.json)
}
