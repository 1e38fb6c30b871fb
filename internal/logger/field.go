package logger

import "fmt"

// Field is a single structured key/value pair attached to a log line.
type Field interface {
	Key() string
	String() string
}

// Fields is an ordered collection of Field values.
type Fields []Field

func (f *Fields) Add(fields ...Field) {
	*f = append(*f, fields...)
}

type genericField struct {
	key    string
	value  any
	format string
}

func (f genericField) Key() string    { return f.key }
func (f genericField) String() string { return fmt.Sprintf(f.format, f.value) }

func StringField(key, value string) Field {
	return genericField{key: key, value: value, format: "%s"}
}

func IntField(key string, value int) Field {
	return genericField{key: key, value: value, format: "%d"}
}

func Float64Field(key string, value float64) Field {
	return genericField{key: key, value: value, format: "%.2f"}
}

func BoolField(key string, value bool) Field {
	return genericField{key: key, value: value, format: "%t"}
}
