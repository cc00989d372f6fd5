package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/perfkit/devicebench/bridge"
	"github.com/perfkit/devicebench/config"
	"github.com/perfkit/devicebench/harness"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	bridgeKind string
	artifact   string
	remoteDir  string
	size       int
	check      bool
	debug      bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "devicebench",
	Short: "Run MatrixMultiplication on an attached device",
	Long: `Stages the prebuilt MatrixMultiplication binary on the first attached
device and runs it. With --debug, each workload test mode 1 through 11 is run
under simpleperf with the full hardware counter set. Workload output is
streamed raw; it is never parsed.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
		slog.SetDefault(logger)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("bridge") {
			cfg.Bridge.Kind = bridgeKind
		}
		if cmd.Flags().Changed("artifact") {
			cfg.Artifact = artifact
		}
		if cmd.Flags().Changed("remote-dir") {
			cfg.RemoteDir = remoteDir
		}
		if cmd.Flags().Changed("size") {
			cfg.Size = size
		}
		if check {
			cfg.Check = true
		}
		if debug {
			cfg.Debug = true
		}
		if cfg.Size <= 0 {
			return fmt.Errorf("--size must be a positive integer, got %d", cfg.Size)
		}

		b, err := bridge.New(bridge.Kind(cfg.Bridge.Kind), cfg.Bridge.Options, os.Stdout)
		if err != nil {
			return err
		}

		h := harness.New(b, &harness.Config{
			Size:       cfg.Size,
			Check:      cfg.Check,
			DebugSweep: cfg.Debug,
			Artifact:   cfg.Artifact,
			RemoteDir:  cfg.RemoteDir,
		})
		err = h.Run()
		if errors.Is(err, harness.ErrNoDevices) {
			fmt.Fprintln(os.Stderr, "No device found")
			os.Exit(1)
		}
		return err
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "Config file (default is ./devicebench.yaml).")
	rootCmd.Flags().StringVar(&bridgeKind, "bridge", "adb", fmt.Sprintf("The device bridge transport. Must be one of: %s.", bridge.Explain()))
	rootCmd.Flags().StringVar(&artifact, "artifact", harness.DefaultArtifact, "Path to the prebuilt workload binary.")
	rootCmd.Flags().StringVar(&remoteDir, "remote-dir", harness.DefaultRemoteDir, "Directory on the device the workload is staged into.")
	rootCmd.Flags().IntVar(&size, "size", harness.DefaultSize, "Size of data.")
	rootCmd.Flags().BoolVar(&check, "check", false, "Check the workload result on the device.")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Debug mode: sweep test modes 1-11 under simpleperf.")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging.")
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
