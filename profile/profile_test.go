package profile

import "testing"

func TestConfig_StartWithoutMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"nil", nil},
		{"empty", WithPath(t.TempDir())(nil)},
		{"unknown", WithMode("nonexistent")(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.cfg.Start()
			if _, ok := p.(ignore); !ok {
				t.Errorf("Start() = %T, want no-op", p)
			}

			p.Stop()
		})
	}
}

func TestConfig_OptionsCompose(t *testing.T) {
	cfg := WithQuiet(true)(WithPath("/tmp/p")(WithMode("cpu")(nil)))

	mode, path, quiet := cfg()
	if mode != "cpu" || path != "/tmp/p" || !quiet {
		t.Errorf("cfg() = %q, %q, %v", mode, path, quiet)
	}
}
