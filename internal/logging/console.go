package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

// consoleLogger is the default logger: colored, line-oriented, no buffering.
type consoleLogger struct{}

// NewConsole constructs the default console logger.
func NewConsole() Provider {
	return &consoleLogger{}
}

func (p *consoleLogger) Debug(msg string, fields ...string) {
	output(msg, withFields(fields...), color.FgCyan)
}

func (p *consoleLogger) Info(msg string, fields ...string) {
	output(msg, withFields(fields...), color.FgGreen)
}

func (p *consoleLogger) Warn(msg string, fields ...string) {
	output(msg, withFields(fields...), color.FgYellow)
}

func (p *consoleLogger) Error(msg string, err error, fields ...string) {
	fields = append(fields, FieldError, err.Error())
	output(msg, withFields(fields...), color.FgRed)
}

func (p *consoleLogger) Fatal(msg string, err error, fields ...string) {
	fields = append(fields, FieldError, err.Error())
	output(msg, withFields(fields...), color.FgRed)
	os.Exit(1)
}

// Flush is a no-op: the console writer has no buffer to drain.
func (p *consoleLogger) Flush() {
}

func withFields(fields ...string) map[string]string {
	n := len(fields)
	result := make(map[string]string, n/2)
	for i := 0; i < n; i += 2 {
		if i+1 >= n {
			break
		}
		result[fields[i]] = fields[i+1]
	}
	return result
}

func output(msg string, fields map[string]string, c color.Attribute) {
	line := fmt.Sprintf("%s   %s", time.Now().Local().Format(time.StampMilli), msg)
	for k, v := range fields {
		line = fmt.Sprintf("%s\n          %s: %s", line, k, v)
	}
	color.New(c).Println(line) // nolint: errcheck
}
