// mapper locates WiFi access points from wardriving captures: pcapng files with radiotap
// headers plus NMEA logs recorded alongside them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/benmeehan/apmapper/internal/constants"
	"github.com/benmeehan/apmapper/internal/enrichment"
	"github.com/benmeehan/apmapper/internal/metrics_collectors"
	"github.com/benmeehan/apmapper/internal/services"
	"github.com/benmeehan/apmapper/internal/utils"
	"github.com/benmeehan/apmapper/pkg/file"
	"github.com/benmeehan/apmapper/pkg/mqtt"
	"github.com/benmeehan/apmapper/pkg/s3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configFile   string
	directory    string
	filter       bool
	kml          bool
	kmlOutput    string
	csv          bool
	csvOutput    string
	wigleOutput  string
	sqliteOutput string
	metricsOut   string
	noHashcat    bool
	logLevel     string
	workers      int
)

var rootCmd = &cobra.Command{
	Use:   "mapper",
	Short: "Locate WiFi access points from pcapng captures and NMEA tracks",
	Long: `mapper reads every *.pcapng, *.nmea and *.22000 file of a directory, matches the
beacons and data frames of each access point with the GPS position at capture time and
estimates where the access point is.

Examples:
  mapper -d captures/ -c
  mapper -d captures/ --kml-output map.kml -f
  mapper --config configs/config.yaml --sqlite-output runs.db --no-hashcat`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configFile, "config", "", "configuration file (default "+constants.DefaultConfigFile+" when present)")
	flags.StringVarP(&directory, "directory", "d", "", "directory holding the capture, NMEA and hash files")
	flags.BoolVarP(&filter, "filter", "f", false, "also export accessible networks only, to *_filtered files")
	flags.BoolVarP(&kml, "kml", "k", false, "export KML to "+constants.DefaultKMLOutput)
	flags.StringVar(&kmlOutput, "kml-output", "", "export KML to this file")
	flags.BoolVarP(&csv, "csv", "c", false, "export CSV to "+constants.DefaultCSVOutput)
	flags.StringVar(&csvOutput, "csv-output", "", "export CSV to this file")
	flags.StringVar(&wigleOutput, "wigle-output", "", "export WiGLE CSV to this file")
	flags.StringVar(&sqliteOutput, "sqlite-output", "", "store the run in this SQLite database")
	flags.StringVar(&metricsOut, "metrics-output", "", "write run metrics in Prometheus text format to this file")
	flags.BoolVar(&noHashcat, "no-hashcat", false, "do not look up cracked passwords with hashcat")
	flags.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.IntVar(&workers, "workers", 0, "capture files decoded in parallel (default number of CPUs)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	fileClient := file.NewFileService()

	config, err := loadConfig(fileClient)
	if err != nil {
		return err
	}
	applyFlags(cmd, config)
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := services.NewSinkRegistry(logger)
	sinks.RegisterSinks(config, services.SinkClients{
		Files:   fileClient,
		MQTT:    mqtt.NewMqttService(fileClient),
		Storage: s3.NewObjectStorage(),
	})

	mapper := services.NewMapperService(
		config,
		fileClient,
		enrichment.NewExecRunner(),
		sinks,
		metrics_collectors.NewRunRegistry(exportDirectory(config), logger),
		logger,
	)

	if _, err := mapper.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Mapping run failed")
		return err
	}
	return nil
}

// exportDirectory is the directory of the first configured export, "." when none is set.
func exportDirectory(config *utils.Config) string {
	for _, path := range []string{config.Output.CSV, config.Output.KML, config.Output.Wigle, config.Output.SQLite, config.Output.Metrics} {
		if path != "" {
			return filepath.Dir(path)
		}
	}
	return "."
}

// loadConfig reads the explicit --config file, or the default file when it exists, and
// then applies .env and APMAPPER_* overrides.
func loadConfig(fileClient file.FileOperations) (*utils.Config, error) {
	config := utils.DefaultConfig()
	path := configFile
	if path == "" {
		exists, err := fileClient.IsFileExists(constants.DefaultConfigFile)
		if err != nil {
			return nil, err
		}
		if exists {
			path = constants.DefaultConfigFile
		}
	}

	if path != "" {
		loaded, err := utils.LoadConfig(path, fileClient)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if err := utils.LoadEnv(config, ".env"); err != nil {
		return nil, err
	}
	return config, nil
}

// applyFlags overrides config with the flags given on the command line.
func applyFlags(cmd *cobra.Command, config *utils.Config) {
	flags := cmd.Flags()
	if flags.Changed("directory") {
		config.Input.Directory = directory
	}
	if flags.Changed("workers") {
		config.Input.DecodeWorkers = workers
	}
	if flags.Changed("log-level") {
		config.LogLevel = logLevel
	}
	if noHashcat {
		config.Enrichment.HashcatEnabled = false
	}
	if filter {
		config.Output.Filter = true
	}

	switch {
	case csvOutput != "":
		config.Output.CSV = csvOutput
	case csv && config.Output.CSV == "":
		config.Output.CSV = constants.DefaultCSVOutput
	}
	switch {
	case kmlOutput != "":
		config.Output.KML = kmlOutput
	case kml && config.Output.KML == "":
		config.Output.KML = constants.DefaultKMLOutput
	}
	if wigleOutput != "" {
		config.Output.Wigle = wigleOutput
	}
	if sqliteOutput != "" {
		config.Output.SQLite = sqliteOutput
	}
	if metricsOut != "" {
		config.Output.Metrics = metricsOut
	}
}
