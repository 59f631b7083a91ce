package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/eniz1806/ecsizer/internal/sizing"
)

type calcFlags struct {
	req  sizing.Request
	json bool
}

// parseCalcFlags reads the calculator form from args.
func parseCalcFlags(name string, args []string, stderr io.Writer) (calcFlags, error) {
	var cf calcFlags
	cf.req = sizing.DefaultRequest()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Float64Var(&cf.req.FileSizeMB, "file-size", cf.req.FileSizeMB, "file size in MB")
	fs.IntVar(&cf.req.Cluster.NodeCount, "nodes", cf.req.Cluster.NodeCount, "number of nodes")
	fs.IntVar(&cf.req.Cluster.DrivesPerNode, "drives", cf.req.Cluster.DrivesPerNode, "drives per node")
	fs.BoolVar(&cf.req.Replication.Enabled, "replication", false, "enable replication")
	fs.IntVar(&cf.req.Replication.Factor, "replication-factor", cf.req.Replication.Factor, "replication factor (2-5)")
	fs.BoolVar(&cf.json, "json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return cf, err
	}
	if fs.NArg() > 0 {
		return cf, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return cf, nil
}

func runCalc(args []string, stdout, stderr io.Writer) int {
	cf, err := parseCalcFlags("calc", args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	rep, err := sizing.Calculate(cf.req)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", sizing.ErrorMessage(err))
		return 1
	}
	return printReport(stdout, stderr, rep, cf.json)
}

func printReport(stdout, stderr io.Writer, rep sizing.Report, asJSON bool) int {
	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	if err := sizing.Render(stdout, rep); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
