package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
)

// LoggerNames lists the named loggers used by tStore
var LoggerNames = []string{"store", "snapshot", "rpc", "transport/rpc", "rest"}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// tStoreLogger implements the ILogger interface with custom formatting
type tStoreLogger struct {
	name   string
	level  logger.LogLevel
	logger *log.Logger
}

func (l *tStoreLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *tStoreLogger) Debugf(format string, args ...interface{}) {
	if l.level >= logger.DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *tStoreLogger) Infof(format string, args ...interface{}) {
	if l.level >= logger.INFO {
		l.log("INFO", format, args...)
	}
}

func (l *tStoreLogger) Warningf(format string, args ...interface{}) {
	if l.level >= logger.WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *tStoreLogger) Errorf(format string, args ...interface{}) {
	if l.level >= logger.ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *tStoreLogger) Panicf(format string, args ...interface{}) {
	l.log("PANIC", format, args...)
	panic(fmt.Sprintf(format, args...))
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *tStoreLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-13s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// logOutput is the destination of all loggers created by CreateLogger
var logOutput io.Writer = os.Stdout

// CreateLogger implements dragonboats logger.Factory
func CreateLogger(pkgName string) logger.ILogger {
	return &tStoreLogger{
		name:   pkgName,
		level:  logger.INFO,
		logger: log.New(logOutput, "", log.Ldate|log.Ltime),
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logger.DEBUG, nil
	case "info", "":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers installs the custom format for all loggers and sets their level
func InitLoggers(level string) error {
	return InitLoggersTo(os.Stdout, level)
}

// InitLoggersTo is like InitLoggers but writes to w
func InitLoggersTo(w io.Writer, level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	logOutput = w
	logger.SetLoggerFactory(CreateLogger)

	for _, name := range LoggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
