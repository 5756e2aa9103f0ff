package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func main() {
	args := os.Args[1:]

	// Bare flags run the server, so `voxlore -p 8750` keeps working
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command := args[0]
		rest := args[1:]
		switch command {
		case "serve":
			runServe(rest)
		case "ingest":
			runIngest(rest)
		case "index":
			runIndex(rest)
		case "version":
			runVersion()
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
			printUsage()
			os.Exit(2)
		}
		return
	}

	runServe(args)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: voxlore [command] [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  serve    Start the HTTP server (default)")
	fmt.Fprintln(os.Stderr, "  ingest   Import a creator profile export into the corpus")
	fmt.Fprintln(os.Stderr, "  index    Build the embedding index")
	fmt.Fprintln(os.Stderr, "  version  Print version information")
}

// loadConfig resolves configuration with the standard priority:
// defaults -> config files -> environment -> CLI flags.
func loadConfig(files configPaths, port int, host string) (*common.Config, arbor.ILogger) {
	// Auto-discover config file if not specified
	if len(files) == 0 {
		if _, err := os.Stat("voxlore.toml"); err == nil {
			files = append(files, "voxlore.toml")
		} else if _, err := os.Stat("deployments/local/voxlore.toml"); err == nil {
			files = append(files, "deployments/local/voxlore.toml")
		}
	}

	config, err := common.LoadFromFiles(files...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", files).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, port, host)

	logger := common.SetupLogger(config)

	logger.Info().
		Strs("config_files", files).
		Str("profile", config.Corpus.Profile).
		Msg("Application configuration loaded")

	return config, logger
}
