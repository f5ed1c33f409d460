/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process, writing to stderr so command
// output on stdout stays machine-readable.
func Setup(environment, format string) zerolog.Logger {
	return SetupWithWriter(environment, format, os.Stderr)
}

// SetupWithWriter configures zerolog against an explicit writer.
func SetupWithWriter(environment, format string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if environment == "development" {
		level = zerolog.DebugLevel
	}

	writer := out
	if format != "json" {
		// Console writer for human-readable output
		writer = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(writer).With().Timestamp().Logger().Level(level)
	log.Logger = logger
	return logger
}
