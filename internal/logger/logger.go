package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger é o logger global da aplicação
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init configura o logger a partir de LOG_LEVEL e LOG_FORMAT
func Init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	if os.Getenv("LOG_FORMAT") == "json" {
		Logger = zerolog.New(os.Stdout).With().
			Timestamp().
			Logger().
			Level(logLevel)
		return
	}

	Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
		Timestamp().
		Logger().
		Level(logLevel)
}

// Component devolve um logger com o nome do componente
func Component(name string) *zerolog.Logger {
	l := Logger.With().Str("component", name).Logger()
	return &l
}
