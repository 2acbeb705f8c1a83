package apm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fd1az/mempool-block/internal/logger"
)

func TestNewTraceProvider(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"none", Config{Exporter: NoneExporter}, false},
		{"empty means none", Config{}, false},
		{"stdout", Config{Exporter: StdoutExporter, ServiceName: "mempool-block"}, false},
		{"zipkin", Config{Exporter: ZipkinExporter, Endpoint: "http://localhost:9411/api/v2/spans"}, false},
		{"unknown", Config{Exporter: "jaeger"}, true},
		{"bad headers", Config{Exporter: OTLPHTTPExporter, Headers: "nokey"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, err := NewTraceProvider(context.Background(), log, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if stopErr := tp.Stop(); stopErr != nil {
					t.Errorf("Stop: %v", stopErr)
				}
			}
		})
	}
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	var buf bytes.Buffer

	tp, err := NewTraceProvider(context.Background(), log, Config{Exporter: StdoutExporter, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	_, span := NewTracer("feed").Start(context.Background(), "mempool.fetch")
	NoticeError(span, errors.New("boom"))
	span.End()

	if err := tp.Stop(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("mempool.fetch")) {
		t.Errorf("span not exported: %s", buf.String())
	}
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders("x-honeycomb-team=abc, x-dataset=blocks")
	if err != nil {
		t.Fatal(err)
	}
	if h["x-honeycomb-team"] != "abc" || h["x-dataset"] != "blocks" {
		t.Errorf("headers = %v", h)
	}
}
