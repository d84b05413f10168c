package core

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var once sync.Once

type logger struct {
	*log.Logger
	file io.Closer
}

var singleton *logger

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "Anima 🦴 ",
				CallerOffset:    1,
			})
			l.SetLevel(log.InfoLevel)
			singleton = &logger{Logger: l}
		})
	return singleton
}

// ConfigureLogging applies cfg to the process-wide logger. When cfg.File is
// set the output goes to a rotating file instead of stderr.
func ConfigureLogging(cfg LoggingConfig) error {
	lvl, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	l := getLogger()
	l.SetLevel(lvl)
	if cfg.Prefix != "" {
		l.SetPrefix(cfg.Prefix)
	}

	var out io.Writer = os.Stderr
	var file io.Closer
	if cfg.File != "" {
		w := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		out, file = w, w
	}
	l.SetOutput(out)
	if l.file != nil {
		l.file.Close()
	}
	l.file = file
	return nil
}

// SetLogOutput redirects the logger to w. Mostly useful in tests.
func SetLogOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

// CloseLogging flushes and closes the log file, if any, and goes back to stderr.
func CloseLogging() error {
	l := getLogger()
	l.SetOutput(os.Stderr)
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
