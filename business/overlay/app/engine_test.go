package app

import (
	"context"
	"errors"
	"testing"

	"github.com/fd1az/mempool-block/internal/apperror"
)

func TestCachedLoader(t *testing.T) {
	calls := 0
	fail := true
	l := NewCachedLoader(func(context.Context) error {
		calls++
		if fail {
			return errors.New("boom")
		}
		return nil
	})

	err := l.Load(context.Background())
	if apperror.GetCode(err) != apperror.CodeEngineLoadFailed {
		t.Fatalf("code = %v", apperror.GetCode(err))
	}
	if l.Loaded() {
		t.Fatal("failed load must not be cached")
	}

	fail = false
	for range 3 {
		if err := l.Load(context.Background()); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("calls = %d, success should be cached", calls)
	}
}

func TestCachedLoader_Nil(t *testing.T) {
	if err := NewCachedLoader(nil).Load(context.Background()); err != nil {
		t.Fatal(err)
	}
}
