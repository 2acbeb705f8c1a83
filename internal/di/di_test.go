package di

import "testing"

type feed struct{ name string }

func TestContainer_LazySingleton(t *testing.T) {
	c := NewContainer()
	tok := NewToken[*feed]("mempool.feed")

	calls := 0
	RegisterToken(c, tok, func(sr ServiceRegistry) *feed {
		calls++
		return &feed{name: sr.Get("name").(string)}
	})
	c.Register("name", "mempool.space")

	if calls != 0 {
		t.Fatalf("factory ran before first Get")
	}

	a := GetToken(c, tok)
	b := GetToken(c, tok)

	if a != b {
		t.Error("expected the same instance on every Get")
	}
	if calls != 1 {
		t.Errorf("factory calls = %d, want 1", calls)
	}
	if a.name != "mempool.space" {
		t.Errorf("name = %q", a.name)
	}
}

func TestContainer_MissingServicePanics(t *testing.T) {
	c := NewContainer()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unregistered service")
		}
	}()
	c.Get("nope")
}

func TestContainer_Has(t *testing.T) {
	c := NewContainer()
	c.Register("config", 1)

	if !c.Has("config") {
		t.Error("Has(config) = false")
	}
	if c.Has("logger") {
		t.Error("Has(logger) = true")
	}
}
