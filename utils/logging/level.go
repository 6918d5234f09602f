// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Level int8

const (
	Off Level = iota
	Fatal
	Error
	Warn
	Info
	Debug
	Trace
)

const (
	offStr   = "OFF"
	fatalStr = "FATAL"
	errorStr = "ERROR"
	warnStr  = "WARN"
	infoStr  = "INFO"
	debugStr = "DEBUG"
	traceStr = "TRACE"
)

// ToLevel is the inverse of Level.String()
func ToLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case offStr:
		return Off, nil
	case fatalStr:
		return Fatal, nil
	case errorStr:
		return Error, nil
	case warnStr:
		return Warn, nil
	case infoStr:
		return Info, nil
	case debugStr:
		return Debug, nil
	case traceStr:
		return Trace, nil
	default:
		return Off, fmt.Errorf("unknown log level: %q", s)
	}
}

func (l Level) String() string {
	switch l {
	case Fatal:
		return fatalStr
	case Error:
		return errorStr
	case Warn:
		return warnStr
	case Info:
		return infoStr
	case Debug:
		return debugStr
	case Trace:
		return traceStr
	default:
		return offStr
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case Fatal:
		return zapcore.FatalLevel
	case Error:
		return zapcore.ErrorLevel
	case Warn:
		return zapcore.WarnLevel
	case Info:
		return zapcore.InfoLevel
	default:
		// Trace and Off have no zap equivalent; log.log gates on the
		// configured Level before zap ever sees the entry.
		return zapcore.DebugLevel
	}
}
