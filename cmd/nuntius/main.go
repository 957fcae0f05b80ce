package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/app"
	"github.com/ternarybob/nuntius/internal/common"
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

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	tickerList   = flag.String("tickers", "", "Comma-separated tickers (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: nuntius [flags] [command]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  collect   Fetch news, update the archive, score sentiment (default)\n")
	fmt.Fprintf(os.Stderr, "  export    Render the archive as an Excel workbook\n")
	fmt.Fprintf(os.Stderr, "  version   Print version information\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	// A .version file beside the binary overrides the compiled-in version
	common.LoadVersionFromFile()

	// Handle version flag
	if *showVersion || *showVersionV {
		fmt.Printf("Nuntius version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	command := "collect"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}
	if command == "version" {
		fmt.Printf("Nuntius version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Local .env carries NEWSAPI_KEY during development; missing file is fine
	_ = godotenv.Load()

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	var err error

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("nuntius.toml"); err == nil {
			configFiles = append(configFiles, "nuntius.toml")
		} else if _, err := os.Stat("deployments/local/nuntius.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/nuntius.toml")
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	// Apply command-line flag overrides (highest priority)
	common.ApplyFlagOverrides(config, *tickerList)

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())
	common.InstallCrashHandler("")

	logger.Info().
		Strs("config_files", configFiles).
		Strs("tickers", config.Tickers).
		Str("command", command).
		Msg("Configuration loaded")

	// Crash protection: write a crash report before exiting
	defer func() {
		if r := recover(); r != nil {
			path := common.WriteCrashFile(r, string(debug.Stack()))
			logger.Fatal().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("crash_file", path).
				Msg("Unrecovered panic")
		}
	}()

	if err := run(command); err != nil {
		logger.Fatal().Err(err).Str("command", command).Msg("Command failed")
		os.Exit(1)
	}
}

func run(command string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch command {
	case "collect":
		if err := config.ValidateForCollect(); err != nil {
			return err
		}
	case "export":
		// Export works from the archive alone; no API key needed
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	switch command {
	case "collect":
		return application.Collect(ctx)
	case "export":
		return application.Export(ctx)
	}
	return nil
}
