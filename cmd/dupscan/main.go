package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/smolin/dupscan/internal/config"
	"github.com/smolin/dupscan/internal/engine"
	"github.com/smolin/dupscan/internal/report"
	"github.com/smolin/dupscan/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[38;5;220m"
	colorGray   = "\033[38;5;245m"
)

var (
	logger  *zap.Logger
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dupscan",
		Short: "Dupscan - Duplicate file and directory finder",
		Long: `Content-addressed duplicate detector. Finds files with identical bytes
and directories with identical content, using layered hashing so large
trees are scanned without reading most of their data twice.`,
		Version: engine.Version,
		Run: func(cmd *cobra.Command, args []string) {
			printBanner()
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dupscan v%s\n", engine.Version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printBanner prints the startup banner
func printBanner() {
	fmt.Println()
	fmt.Printf("%s", colorCyan)
	fmt.Println("████▄  ██  ██ █████▄ ▄████▄ ▄████▄ ▄████▄ ███  ██")
	fmt.Println("██  ██ ██  ██ ██  ██ ▀▄▄▄   ██     ██▄▄██ ██ ▀▄██")
	fmt.Println("████▀  ▀████▀ █████▀ ▀████▀ ▀████▀ ██  ██ ██   ██")
	fmt.Printf("%s", colorReset)
	fmt.Println()
	fmt.Printf("%sDuplicate Finder v%s%s\n", colorGray, engine.Version, colorReset)
	fmt.Println()
}

// initLogger builds the process logger. Verbose mode gets the console
// development encoder; otherwise only errors are emitted as JSON.
func initLogger() error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.Config{
			Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
			Encoding:         "json",
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
		logger, err = cfg.Build()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
	}
	return err
}

// scanCmd creates the scan command
func scanCmd() *cobra.Command {
	var (
		mode         string
		dirs         bool
		policy       string
		workers      int
		bufferSize   int
		maxSize      string
		extensions   []string
		allFiles     bool
		exclude      []string
		reportFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory tree for duplicate files and directories",
		Long: `Recursively scan a directory, group byte-identical files, and optionally
group directories whose content matches under the chosen equality policy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if err := validateFlags(mode, policy, reportFormat); err != nil {
				fmt.Printf("\n  %s✗ Invalid parameter:%s %s\n\n", colorRed, colorReset, err.Error())
				return err
			}

			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := config.LoadConfig()
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return err
			}

			// Override config with CLI flags
			if mode != "" {
				cfg.Mode = mode
			}
			if policy != "" {
				cfg.Policy = policy
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if bufferSize > 0 {
				cfg.BufferSize = bufferSize
			}
			if maxSize != "" {
				cfg.MaxSize = maxSize
			}
			if len(extensions) > 0 {
				cfg.Extensions = extensions
			}
			if allFiles {
				cfg.AllFiles = true
			}
			if len(exclude) > 0 {
				cfg.Exclude = exclude
			}
			if reportFormat != "" {
				cfg.ReportFormat = reportFormat
			}
			if outputFile != "" {
				cfg.OutputFile = outputFile
			}
			if dirs {
				// Directory digests need every file hashed.
				cfg.EnableDirs()
			}

			printScanHeader(path, cfg)

			eng := engine.New(cfg, logger)

			lastPhase := ""
			eng.SetProgressCallback(func(phase string, current, total int, message string) {
				if lastPhase == phase {
					fmt.Print("\033[1A\033[K")
				}
				lastPhase = phase

				switch phase {
				case "collect":
					fmt.Printf("  %sCollecting:%s %d files\n", colorGray, colorReset, current)
				case "fingerprint", "hash":
					if total > 0 {
						label := "Signatures"
						if phase == "hash" {
							label = "Hashing   "
						}
						pct := float64(current) / float64(total) * 100
						barWidth := 30
						filled := int(float64(barWidth) * float64(current) / float64(total))
						bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
						fmt.Printf("  %s%s:%s [%s%s%s] %s%.1f%%%s (%d/%d)\n",
							colorGray, label, colorReset, colorCyan, bar, colorReset,
							colorCyan, pct, colorReset, current, total)
					}
				case "verify":
					fmt.Printf("  %sVerifying:%s  %s\n", colorGray, colorReset, message)
				case "dirs":
					fmt.Printf("  %sDirs:%s       %s\n", colorGray, colorReset, message)
				}
			})

			result, err := eng.Scan(cmd.Context(), path)
			if err != nil {
				logger.Error("Scan failed", zap.Error(err))
				return err
			}

			generator, err := report.NewGenerator(cfg, logger)
			if err != nil {
				return err
			}
			reportPath, err := generator.Generate(result)
			if err != nil {
				logger.Error("Report generation failed", zap.Error(err))
				return err
			}
			if reportPath != "" {
				fmt.Printf("  %sReport:%s    %s%s%s\n", colorGray, colorReset, colorCyan, reportPath, colorReset)
				fmt.Println()
			}

			if !result.Exhaustive() {
				fmt.Printf("  %s⚠ %d files could not be read; the result is not exhaustive%s\n\n",
					colorYellow, len(result.Errors), colorReset)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Scan mode: fast, full (default: fast)")
	cmd.Flags().BoolVar(&dirs, "dirs", false, "Also detect duplicate directories (implies --mode=full)")
	cmd.Flags().StringVar(&policy, "policy", "", "Directory equality: multiset, structural (default: multiset)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of hashing goroutines (default: CPU cores)")
	cmd.Flags().IntVar(&bufferSize, "buffer-size", 0, "Read buffer size in bytes (default: 1 MiB)")
	cmd.Flags().StringVar(&maxSize, "max-size", "", "Skip files larger than this, e.g. 500M (default: no limit)")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "Candidate extensions (comma-separated, default: media files)")
	cmd.Flags().BoolVar(&allFiles, "all-files", false, "Treat every regular file as a candidate")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Directory names to exclude (comma-separated)")
	cmd.Flags().StringVarP(&reportFormat, "report", "r", "", "Report format: text, json, csv, html (default: console output)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")

	return cmd
}

// serveCmd creates the serve command
func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI",
		Long:  `Serve a browser interface for running scans and viewing duplicate reports.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := config.LoadConfig()
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			printBanner()
			fmt.Printf("  %sListening:%s http://%s\n\n", colorGray, colorReset, cfg.Listen)

			return web.NewServer(cfg, logger).Start()
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default: 127.0.0.1:8080)")

	return cmd
}

// validateFlags validates CLI flag values
func validateFlags(mode, policy, reportFormat string) error {
	if mode != "" && !contains([]string{"fast", "full"}, mode) {
		return fmt.Errorf("--mode must be one of: fast, full (got: %s)", mode)
	}

	if policy != "" && !contains([]string{"multiset", "structural"}, policy) {
		return fmt.Errorf("--policy must be one of: multiset, structural (got: %s)", policy)
	}

	if reportFormat != "" && !contains([]string{"text", "txt", "json", "csv", "html"}, reportFormat) {
		return fmt.Errorf("--report must be one of: text, json, csv, html (got: %s)", reportFormat)
	}

	return nil
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// printScanHeader prints the scan parameters
func printScanHeader(path string, cfg *config.Config) {
	printBanner()
	fmt.Printf("  %sScanning:%s  %s\n", colorGray, colorReset, path)
	fmt.Printf("  %sMode:%s      %s\n", colorGray, colorReset, cfg.Mode)
	if cfg.Dirs {
		fmt.Printf("  %sPolicy:%s    %s\n", colorGray, colorReset, cfg.Policy)
	}
	fmt.Println()
}
