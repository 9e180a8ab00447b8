// Package jsonlog writes single-line JSON records through a stdlib logger.
package jsonlog

import (
	"encoding/json"
	"log"
	"time"
)

// Print writes payload as one JSON line. A missing "ts" is stamped with the
// current UTC time.
func Print(logger *log.Logger, payload map[string]any) {
	if logger == nil {
		return
	}
	if _, ok := payload["ts"]; !ok {
		payload["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		logger.Printf(`{"level":"error","msg":"log_marshal_failed","error":%q}`, err.Error())
		return
	}
	logger.Print(string(b))
}

func Info(logger *log.Logger, msg string, fields map[string]any) {
	Print(logger, with(fields, "info", msg))
}

func Error(logger *log.Logger, msg string, fields map[string]any) {
	Print(logger, with(fields, "error", msg))
}

func with(fields map[string]any, level, msg string) map[string]any {
	payload := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		payload[k] = v
	}
	payload["level"] = level
	payload["msg"] = msg
	return payload
}
