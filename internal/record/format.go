package record

import (
	"errors"
	"fmt"
	"strings"
)

// LogFormat selects one of the supported access-log line grammars.
type LogFormat int

const (
	Squid LogFormat = iota
	Common
	Combined
	Referrer
	UserAgent
	UnknownFormat
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown log format")

var formatNames = [...]string{"squid", "common", "combined", "referrer", "useragent"}

// Formats lists every supported format in declaration order.
func Formats() []LogFormat {
	return []LogFormat{Squid, Common, Combined, Referrer, UserAgent}
}

func (f LogFormat) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// Title is the capitalized name used in exported documents.
func (f LogFormat) Title() string {
	switch f {
	case Squid:
		return "Squid"
	case Common:
		return "Common"
	case Combined:
		return "Combined"
	case Referrer:
		return "Referrer"
	case UserAgent:
		return "UserAgent"
	}
	return "None"
}

// HasURL reports whether lines of this format carry a request URL.
func (f LogFormat) HasURL() bool {
	return f == Squid || f == Common || f == Combined || f == Referrer
}

// HasStatus reports whether lines of this format carry an HTTP status.
func (f LogFormat) HasStatus() bool {
	return f == Squid || f == Common || f == Combined
}

// KeyFromLocalTime reports whether the record key timestamp is derived from
// the bracketed local time rather than a numeric epoch column.
func (f LogFormat) KeyFromLocalTime() bool {
	return f == Common || f == Combined || f == UserAgent
}

// ParseFormat maps a case-insensitive format name to a LogFormat.
func ParseFormat(name string) (LogFormat, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range formatNames {
		if s == n {
			return LogFormat(i), nil
		}
	}
	return UnknownFormat, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}
