package model

import (
	"errors"
	"strings"
)

// LogLevel of a message forwarded from the browser console.
type LogLevel uint8

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
)

// UnmarshalText accepts both the level names and the console method names
// ("log", "warn") so the frontend can post `console.*` calls as is.
func (l *LogLevel) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "debug":
		*l = DEBUG
	case "info", "log":
		*l = INFO
	case "warning", "warn":
		*l = WARNING
	case "error":
		*l = ERROR
	default:
		return errors.New("invalid log level")
	}
	return nil
}

func (l LogLevel) MarshalText() ([]byte, error) {
	s := l.String()
	if s == "" {
		return nil, errors.New("invalid log level")
	}
	return []byte(s), nil
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARNING:
		return "warning"
	case ERROR:
		return "error"
	}
	return ""
}

type LogMessage struct {
	Level   LogLevel `json:"level"`
	Message string   `json:"message"`
	Logger  string   `json:"logger"`
}
