package providers

import (
	"io"
	"os"
	"path/filepath"
	"pvd/internal/structures"

	"github.com/rs/zerolog"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
	TypeMonitor
)

// Logger is the logging facade used across the daemon. Every call is tagged
// with a TypeEnum so access, application and monitoring records land in
// separate files.
type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

type LogProvider struct {
	app     zerolog.Logger
	access  zerolog.Logger
	monitor zerolog.Logger
	files   []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, err
	}

	lp := &LogProvider{}
	mode := os.FileMode(conf.Logger.Mode)

	open := func(name string) (io.Writer, error) {
		f, err := os.OpenFile(filepath.Join(conf.Logger.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
		if err != nil {
			return nil, err
		}
		lp.files = append(lp.files, f)
		if conf.Debug {
			return io.MultiWriter(f, os.Stderr), nil
		}
		return f, nil
	}

	appW, err := open("app.log")
	if err != nil {
		return nil, err
	}
	accessW, err := open("access.log")
	if err != nil {
		lp.Close()
		return nil, err
	}
	monitorW, err := open("monitor.log")
	if err != nil {
		lp.Close()
		return nil, err
	}

	lp.app = zerolog.New(appW).Level(level).With().Timestamp().Logger()
	lp.access = zerolog.New(accessW).Level(level).With().Timestamp().Logger()
	lp.monitor = zerolog.New(monitorW).Level(level).With().Timestamp().Logger()

	return lp, nil
}

func (lp *LogProvider) logger(t TypeEnum) *zerolog.Logger {
	switch t {
	case TypeGet, TypePost:
		return &lp.access
	case TypeMonitor:
		return &lp.monitor
	default:
		return &lp.app
	}
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Error().Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Warn().Msgf(format, args...)
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Debug().Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Info().Msgf(format, args...)
}

func (lp *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Fatal().Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	for _, f := range lp.files {
		_ = f.Close()
	}
	lp.files = nil
}
