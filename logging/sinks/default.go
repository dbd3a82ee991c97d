package sinks

import (
	"fmt"
	"io"
	"os"

	"playlink/client/logging"
)

// NewDefaultRouter builds a router from the config's enabled sinks: console
// frames to w and newline-delimited JSON to the configured file path.
func NewDefaultRouter(cfg logging.Config, w io.Writer) (*logging.Router, error) {
	if w == nil {
		w = os.Stderr
	}
	var named []logging.NamedSink
	if cfg.HasSink("console") {
		named = append(named, logging.NamedSink{
			Name: "console",
			Sink: NewConsoleSink(w, cfg.Console),
		})
	}
	if cfg.HasSink("json") && cfg.JSON.FilePath != "" {
		file, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open json log file: %w", err)
		}
		named = append(named, logging.NamedSink{
			Name: "json",
			Sink: NewJSON(file, cfg.JSON.FlushInterval),
		})
	}
	return logging.NewRouter(nil, cfg, named)
}
