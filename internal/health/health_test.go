package health

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fd1az/mempool-block/internal/logger"
)

func TestServer_Endpoints(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	s := NewServer(0, "v1.2.3", log)

	var feedUp atomic.Bool
	feedUp.Store(true)
	s.RegisterCheck("mempool_feed", func(ctx context.Context) (bool, string) {
		if feedUp.Load() {
			return true, "connected"
		}
		return false, "reconnecting"
	})

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	if code, _ := get("/live"); code != http.StatusOK {
		t.Errorf("/live = %d", code)
	}

	code, body := get("/health")
	if code != http.StatusOK {
		t.Fatalf("/health = %d", code)
	}
	var status Status
	if err := json.Unmarshal([]byte(body), &status); err != nil {
		t.Fatal(err)
	}
	if status.Version != "v1.2.3" || !status.Checks["mempool_feed"].Healthy {
		t.Errorf("status = %+v", status)
	}

	feedUp.Store(false)

	if code, _ := get("/health"); code != http.StatusServiceUnavailable {
		t.Errorf("/health degraded = %d", code)
	}
	code, body = get("/ready")
	if code != http.StatusServiceUnavailable || !strings.Contains(body, "mempool_feed") {
		t.Errorf("/ready = %d %q", code, body)
	}
}
