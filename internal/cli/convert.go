package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/jdebolt/fable-export/internal/config"
	"github.com/jdebolt/fable-export/internal/entrypoint"
)

// ConvertCommand reruns the reconciliation and export core against the
// raw pages saved by a previous export run. No network access.
type ConvertCommand struct {
	RunDir    string
	OutputDir string
}

func NewConvertCommand() *ConvertCommand {
	return &ConvertCommand{}
}

func (cmd *ConvertCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)

	fs.StringVar(&cmd.RunDir, "run-dir", "", "Raw-data run directory from a previous export (required)")
	fs.StringVar(&cmd.OutputDir, "output", config.DefaultOutputDir, "Output directory for export files")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s convert -run-dir <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Rebuild the catalog and all export files from previously saved raw API\n")
		fmt.Fprintf(os.Stderr, "payloads, without contacting Fable.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s convert -run-dir raw_data/2f1c...-e2a1 -output ./outputs\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.RunDir == "" {
		return fmt.Errorf("required flag -run-dir not provided")
	}
	return nil
}

func (cmd *ConvertCommand) Run() error {
	if _, err := os.Stat(cmd.RunDir); os.IsNotExist(err) {
		return fmt.Errorf("run directory not found: %s", cmd.RunDir)
	}
	return entrypoint.Convert(cmd.RunDir, cmd.OutputDir)
}
