package logger

import (
	"fmt"
	"strings"
)

// Level is a log severity, ordered from most to least verbose.
type Level int

const (
	DEBUG Level = iota
	NOTICE
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = [...]string{
	DEBUG:  "DEBUG",
	NOTICE: "NOTICE",
	INFO:   "INFO",
	WARN:   "WARN",
	ERROR:  "ERROR",
	FATAL:  "FATAL",
}

// levelAliases maps every accepted spelling of a level name (lowercase) to
// its Level, including the "warning" long form accepted alongside "warn".
var levelAliases = map[string]Level{
	"debug":   DEBUG,
	"notice":  NOTICE,
	"info":    INFO,
	"warn":    WARN,
	"warning": WARN,
	"error":   ERROR,
	"fatal":   FATAL,
}

// LevelFromString parses a level name, case-insensitively.
func LevelFromString(s string) (Level, error) {
	if lvl, ok := levelAliases[strings.ToLower(s)]; ok {
		return lvl, nil
	}
	return -1, fmt.Errorf("invalid log level: %s, valid levels are: %v", s, levelNames[:])
}

func (l Level) String() string {
	if int(l) < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}
