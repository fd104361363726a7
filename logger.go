package btclibwallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/hashforge/btclibwallet/indexer"
	"github.com/hashforge/btclibwallet/walletdata"
	"github.com/jrick/logrotate/rotator"
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// Loggers per subsystem. A single backend logger is created and all subsystem
// loggers created from it will write to the backend. When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
//
// Until InitLogRotator is called, output goes to stdout only.
var (
	// backendLog is the logging backend used to create all subsystem
	// loggers.
	backendLog = slog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs. It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	log     = backendLog.Logger("BTLW")
	syncLog = backendLog.Logger("SYNC")
	idxrLog = backendLog.Logger("IDXR")
	wdatLog = backendLog.Logger("WDAT")
)

// Initialize package-global logger variables.
func init() {
	indexer.UseLogger(idxrLog)
	walletdata.UseLogger(wdatLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]slog.Logger{
	"BTLW": log,
	"SYNC": syncLog,
	"IDXR": idxrLog,
	"WDAT": wdatLog,
}

// InitLogRotator initializes the logging rotater to write logs to logFile
// and create roll files in the same directory. Loggers write only to stdout
// until it is called. Close the rotator with CloseLogRotator on shutdown.
func InitLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		return fmt.Errorf("failed to create log directory: %v", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %v", err)
	}

	logRotator = r
	return nil
}

// CloseLogRotator flushes and closes the log file rotator, if initialized.
func CloseLogRotator() {
	if logRotator != nil {
		logRotator.Close()
		logRotator = nil
	}
}

// UseLogger sets the subsystem logs to use the provided loggers.
func UseLogger(logger slog.Logger) {
	log = logger
	syncLog = logger
	indexer.UseLogger(logger)
	walletdata.UseLogger(logger)
}

// RegisterLogger should be called before logRotator is initialized.
func RegisterLogger(tag string) (slog.Logger, error) {
	if logRotator != nil {
		return nil, errors.New(ErrLogRotatorAlreadyInitialized)
	}

	logger := backendLog.Logger(tag)
	subsystemLoggers[tag] = logger
	return logger, nil
}

// setLogLevel sets the logging level for provided subsystem. Subsystems not
// in subsystemLoggers are ignored.
func setLogLevel(subsystemID string, logLevel string) {
	// Ignore invalid subsystems.
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := slog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.
func setLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, logLevel)
	}
}

// SetLogLevels sets the logging level of all subsystems to the provided
// level. Valid levels are trace, debug, info, warn, error and critical.
func SetLogLevels(logLevel string) error {
	_, ok := slog.LevelFromString(logLevel)
	if !ok {
		return errors.New(ErrInvalid)
	}
	setLogLevels(logLevel)
	return nil
}
