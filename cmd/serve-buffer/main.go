package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/always-cache/serve-buffer/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	configFilenameFlag string
	portFlag           int
	dbFilenameFlag     string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "YAML config file with serving options and initial resources")
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on")
	flag.StringVar(&dbFilenameFlag, "db", "memory", "Resource DB file name (use 'memory' for in-memory db)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	var config Config
	if configFilenameFlag != "" {
		var err error
		if config, err = getConfig(configFilenameFlag); err != nil {
			log.Fatal().Err(err).Msg("Could not read config")
		}
	}

	// set up sqlite memory provider
	dbFilename := dbFilenameFlag
	if dbFilename == "memory" {
		dbFilename = "file::memory:?cache=shared"
	}
	db := store.NewSQLiteStore(dbFilename)
	defer db.Close()

	srv, err := newServer(ServerConfig{
		Store:     db,
		Namespace: config.namespace(),
		Options:   config.Defaults.options(),
		Rules:     config.Rules,
		Logger:    log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load resources")
	}
	if err := srv.seed(config.Resources); err != nil {
		log.Fatal().Err(err).Msg("Could not seed resources")
	}

	log.Info().Msgf("Serving %d resources on port %v", srv.resourceCount(), portFlag)
	err = http.ListenAndServe(fmt.Sprintf(":%d", portFlag), srv)

	if err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
