package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

// Options - параметры логгера
type Options struct {
	Level string
	// File - путь к файлу лога; пустое значение - только stdout
	File   string
	MaxAge time.Duration
}

func New(logLevel string) *logrus.Logger {
	log, _ := NewWithOptions(Options{Level: logLevel})
	return log
}

// NewWithOptions создает JSON-логгер. При заданном файле вывод дублируется
// в ежедневно ротируемый файл.
func NewWithOptions(opts Options) (*logrus.Logger, error) {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{})

	log.SetOutput(os.Stdout)

	// Уровень логирования
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel // Уровень по умолчанию, если передан некорректный
	}
	log.SetLevel(level)

	if opts.File == "" {
		return log, nil
	}

	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	writer, err := rotatelogs.New(
		opts.File+".%Y%m%d",
		rotatelogs.WithLinkName(opts.File),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return log, fmt.Errorf("failed to open rotating log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, writer))
	return log, nil
}
