package app

import (
	"bytes"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type logFormatter struct{}

func (f *logFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}
	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	fmt.Fprintf(b, "[%s] [%s] %s", timestamp, entry.Level, entry.Message)
	for key, value := range entry.Data {
		fmt.Fprintf(b, " %s=%v", key, value)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// SetupLogging routes logs to a rotated file. Logs must never hit stdout:
// the terminal belongs to the TUI.
func SetupLogging(logFile string) {
	log.SetFormatter(&logFormatter{})
	if logFile == "" {
		logFile = filepath.Join(DefaultStateDir(), "chat-cli.log")
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	})
}
