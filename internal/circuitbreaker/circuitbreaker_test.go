package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/mempool-block/internal/apperror"
)

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig("mempool-http")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Hour

	var transitions []gobreaker.State
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		transitions = append(transitions, to)
	}

	cb := New[int](cfg)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: expected underlying error, got %v", i, err)
		}
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	calls := 0
	_, err := cb.Execute(func() (int, error) { calls++; return 1, nil })
	if apperror.GetCode(err) != apperror.CodeCircuitOpen {
		t.Errorf("code = %v, want %v", apperror.GetCode(err), apperror.CodeCircuitOpen)
	}
	if !apperror.IsTransient(err) {
		t.Error("open breaker rejection should be transient")
	}
	if calls != 0 {
		t.Error("open breaker must not run fn")
	}
	if len(transitions) != 1 || transitions[0] != gobreaker.StateOpen {
		t.Errorf("transitions = %v", transitions)
	}
}

func TestCircuitBreaker_PassesResults(t *testing.T) {
	cb := New[string](DefaultConfig("ok"))

	got, err := cb.Execute(func() (string, error) { return "blocks", nil })
	if err != nil || got != "blocks" {
		t.Fatalf("Execute = %q, %v", got, err)
	}
	if cb.Name() != "ok" {
		t.Errorf("name = %q", cb.Name())
	}
}
