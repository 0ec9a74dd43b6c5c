package logging

import "testing"

func TestInit(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		if err := Init(env, ""); err != nil {
			t.Fatalf("Init(%q) returned error: %v", env, err)
		}
		if GetLogger() == nil {
			t.Fatalf("expected global logger after Init(%q)", env)
		}
	}
}

func TestInit_Level(t *testing.T) {
	if err := Init("development", "warn"); err != nil {
		t.Fatalf("Init with level: %v", err)
	}
	if GetLogger().Desugar().Core().Enabled(-1) {
		t.Fatal("debug should be disabled at warn level")
	}
	if err := Init("development", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestHelpersDoNotPanicWithNop(t *testing.T) {
	UseNop()
	Info("info", "k", "v")
	Debug("debug")
	Warn("warn", "k", 1)
	Error("error", "err", "boom")
	WithRequest("req-1", "user-1", "admin", "/x").Infow("scoped")
}
