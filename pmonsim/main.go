// pmonsim runs the power monitor display on the host: samples come from a
// synthetic profile or a Modbus TCP power meter, and the 128x64 OLED is
// drawn in the terminal.
package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/harveysanders/pmon/pmonsim/config"
	"github.com/harveysanders/pmon/pmonsim/source"
	"github.com/harveysanders/pmon/pmonsim/tui"
)

var (
	flagProfile  string
	flagSource   string
	flagEndpoint string
	flagTickMs   int
	flagVerbose  bool
	flagLogFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pmonsim",
		Short: "pmonsim - power monitor display simulator",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulated power monitor in the terminal",
		Long: `Run drives the power monitor display firmware against an in-memory
framebuffer and shows it in the terminal.

Samples come from the synthetic profile in the YAML file given with --profile,
or from a Modbus TCP power meter with --source modbus --endpoint host:502.`,
		Args: cobra.NoArgs,
		RunE: run,
	}
	runCmd.Flags().StringVar(&flagProfile, "profile", "", "YAML simulation profile")
	runCmd.Flags().StringVar(&flagSource, "source", "", "Sample source: synthetic or modbus (overrides the profile)")
	runCmd.Flags().StringVar(&flagEndpoint, "endpoint", "", "Modbus TCP endpoint host:port (overrides the profile)")
	runCmd.Flags().IntVar(&flagTickMs, "tick", 0, "Control loop period in milliseconds (overrides the profile)")
	runCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug messages")
	runCmd.Flags().StringVar(&flagLogFile, "log", "pmonsim.log", "Log file, the terminal is used by the display")

	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := &config.Config{}
	if flagProfile != "" {
		var err error
		cfg, err = config.Load(flagProfile)
		if err != nil {
			return err
		}
	}
	if flagSource != "" {
		cfg.Sim.Source = flagSource
	}
	if flagEndpoint != "" {
		cfg.Sim.Modbus.Endpoint = flagEndpoint
	}
	if flagTickMs != 0 {
		cfg.Sim.TickMs = flagTickMs
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	config.Normalize(cfg)

	logFile, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))
	logger.Info("pmonsim:start",
		slog.String("source", cfg.Sim.Source),
		slog.Int("tick_ms", cfg.Sim.TickMs),
	)

	src, err := source.Build(cfg.Sim)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		tui.New(cfg.Sim, src, logger),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}
