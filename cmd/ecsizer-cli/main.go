package main

import (
	"fmt"
	"os"
)

var version = "dev"

var endpoint string

func init() {
	endpoint = envOrDefault("ECSIZER_ENDPOINT", "http://localhost:9090")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Parse global flags before subcommand
	args := os.Args[1:]
	for len(args) > 0 && len(args[0]) > 0 && args[0][0] == '-' {
		switch args[0] {
		case "--endpoint":
			if len(args) < 2 {
				fatal("--endpoint requires a value")
			}
			endpoint = args[1]
			args = args[2:]
		case "--version", "-v":
			fmt.Printf("ecsizer-cli %s\n", version)
			os.Exit(0)
		case "--help", "-h":
			printUsage()
			os.Exit(0)
		default:
			fatal("unknown flag: " + args[0])
		}
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "calc":
		os.Exit(runCalc(cmdArgs, os.Stdout, os.Stderr))
	case "query":
		os.Exit(runQuery(cmdArgs, os.Stdout, os.Stderr))
	case "version":
		fmt.Printf("ecsizer-cli %s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: ecsizer-cli [flags] <command> [args]

Global Flags:
  --endpoint <url>     ecsizer endpoint for query (default: $ECSIZER_ENDPOINT or http://localhost:9090)
  --version, -v        Show version

Commands:
  calc                 Compute erasure-coded storage usage locally
  query                Compute storage usage on a running ecsizer server
  version              Show version
  help                 Show this help

Calculator Flags (calc, query):
  --file-size <MB>            File size in MB (min 0.1, default 1.0)
  --nodes <n>                 Number of nodes (min 1, default 4)
  --drives <n>                Drives per node (min 1, default 4)
  --replication               Enable replication
  --replication-factor <n>    Replication factor, 2-5 (default 2)
  --json                      Print the result as JSON`)
}

func fatal(msg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	os.Exit(1)
}
