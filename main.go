package main

import (
	"fmt"
	"os"

	"github.com/jdebolt/fable-export/internal/cli"
)

// Version information - set at build time via ldflags
var Version = "dev"

func main() {
	// No arguments means a full export
	if len(os.Args) < 2 {
		runExport(nil)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "export":
		runExport(args)

	case "convert":
		cmd := cli.NewConvertCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "auth":
		cmd := cli.NewAuthCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("fable-export v%s\n", Version)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runExport(args []string) {
	cmd := cli.NewExportCommand()
	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  export   Fetch your Fable library and write all export files (default)\n")
	fmt.Fprintf(os.Stderr, "  convert  Rebuild export files from previously saved raw payloads\n")
	fmt.Fprintf(os.Stderr, "  auth     Store Fable credentials in the encrypted local database\n")
	fmt.Fprintf(os.Stderr, "  version  Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
