package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AppName names the logger and the fallback log file
const AppName = "scrollbook"

// Prepare returns the program logger and a function releasing its file. The
// terminal belongs to the reader view, so only a file log is ever written.
// Level "none" yields a no-op logger unless debug forces the debug level.
func (conf *LoggingConfig) Prepare(debug bool) (*zap.Logger, func() error, error) {
	level := conf.Level
	if debug {
		level = LevelDebug
	}

	var atom zap.AtomicLevel
	switch level {
	case LevelDebug:
		atom = zap.NewAtomicLevelAt(zap.DebugLevel)
	case LevelNormal:
		atom = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		return zap.NewNop(), func() error { return nil }, nil
	}

	flags := os.O_CREATE | os.O_WRONLY
	if conf.Mode == ModeAppend {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	dest := conf.Destination
	if dest == "" {
		dest = filepath.Join(os.TempDir(), AppName+".log")
	}

	var (
		redirected bool
		f          *os.File
		err        error
	)
	if f, err = os.OpenFile(dest, flags, 0644); err != nil {
		if f, err = os.CreateTemp("", AppName+".*.log"); err != nil {
			return nil, nil, fmt.Errorf("unable to access file log destination (%s): %w", dest, err)
		}
		redirected = true
	}

	ec := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(f), atom)
	log := zap.New(core, zap.AddCaller()).Named(AppName)
	if redirected {
		log.Warn("Log file was redirected to new location", zap.String("location", f.Name()))
	}

	release := func() error {
		return multierr.Combine(log.Sync(), f.Close())
	}
	return log, release, nil
}
