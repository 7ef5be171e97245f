package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/JameDevOfficial/WebUntisTest/internal/config"
	"github.com/JameDevOfficial/WebUntisTest/internal/timetable"
	"github.com/JameDevOfficial/WebUntisTest/internal/untis"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "untiscal",
		Short: "WebUntis timetable to iCalendar converter",
		Long:  "Fetches a school timetable from WebUntis and converts it into subscribable iCalendar files",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Credentials may live in a .env next to the config
			_ = godotenv.Load()

			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	rootCmd.AddCommand(convertCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func convertCmd() *cobra.Command {
	var outputPath string
	var previousFile string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Fetch the configured weeks and write the calendar files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if outputPath != "" {
				cfg.Output.Path = outputPath
			}
			if previousFile != "" {
				cfg.Merge.PreviousFile = previousFile
			}

			client := untis.NewClient(cfg.Untis.BaseURL, cfg.Untis.School, logger)
			if err := client.Authenticate(cfg.Untis.Username, cfg.Untis.Password); err != nil {
				return err
			}
			defer client.Logout()

			logger.Info("Starting conversion",
				zap.Strings("dates", cfg.Untis.Dates),
				zap.Int("element_id", cfg.Untis.ElementID),
				zap.String("output", cfg.Output.Path))

			runner := timetable.NewRunner(cfg, client, logger)
			if err := runner.Run(); err != nil {
				if errors.Is(err, timetable.ErrEmptyResult) {
					logger.Info("Nothing to convert, exiting cleanly")
					return nil
				}
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Override the configured output path")
	cmd.Flags().StringVar(&previousFile, "previous", "", "Merge an existing calendar file into this run")

	return cmd
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
