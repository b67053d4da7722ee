package cli

import "testing"

func TestLogConfig_Scan(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantLevel  logLevel
		wantFormat logFormat
		wantPretty bool
		wantCaller bool
	}{
		{
			name:       "separate values",
			args:       []string{"render", "--log-level", "debug", "--log-format", "text"},
			wantLevel:  "debug",
			wantFormat: "text",
			wantPretty: true,
		},
		{
			name:       "assigned values",
			args:       []string{"--log-level=warn", "--log-format=json"},
			wantLevel:  "warn",
			wantFormat: "json",
			wantPretty: true,
		},
		{
			name:       "negated booleans",
			args:       []string{"--no-log-pretty", "--log-caller"},
			wantPretty: false,
			wantCaller: true,
		},
		{
			name:       "assigned booleans",
			args:       []string{"--log-pretty=false", "--no-log-caller=false"},
			wantPretty: false,
			wantCaller: true,
		},
		{
			name:       "value looks like flag",
			args:       []string{"--log-level", "--log-caller"},
			wantPretty: true,
			wantCaller: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Pretty: true}
			f.scan(tt.args)

			if f.Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", f.Level, tt.wantLevel)
			}

			if f.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", f.Format, tt.wantFormat)
			}

			if f.Pretty != tt.wantPretty {
				t.Errorf("Pretty = %v, want %v", f.Pretty, tt.wantPretty)
			}

			if f.Caller != tt.wantCaller {
				t.Errorf("Caller = %v, want %v", f.Caller, tt.wantCaller)
			}
		})
	}
}
