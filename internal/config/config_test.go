package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns the reference layout.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Threshold is 1550", func(t *testing.T) {
		t.Parallel()
		if cfg.Threshold != 1550 {
			t.Errorf("expected Threshold to be 1550, got %v", cfg.Threshold)
		}
	})

	t.Run("default Tolerance is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.Tolerance != 2 {
			t.Errorf("expected Tolerance to be 2, got %v", cfg.Tolerance)
		}
	})

	t.Run("default Padding is 24 and Gap is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.Padding != 24 || cfg.Gap != 4 {
			t.Errorf("expected Padding 24 and Gap 4, got %v and %v", cfg.Padding, cfg.Gap)
		}
	})

	t.Run("default timing is 10ms settle and 100ms debounce", func(t *testing.T) {
		t.Parallel()
		if cfg.SettleDelay != 10*time.Millisecond || cfg.Debounce != 100*time.Millisecond {
			t.Errorf("expected 10ms and 100ms, got %v and %v", cfg.SettleDelay, cfg.Debounce)
		}
	})

	t.Run("default MaxCycles is 1000", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxCycles != 1000 {
			t.Errorf("expected MaxCycles to be 1000, got %d", cfg.MaxCycles)
		}
	})

	t.Run("default Hideable is page 2", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Hideable) != 1 || cfg.Hideable[0] != 2 {
			t.Errorf("expected Hideable to be [2], got %v", cfg.Hideable)
		}
	})

	t.Run("default DBDir is the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() || !cfg.SaveToDB {
			t.Errorf("expected DBDir %q with saving enabled, got %q (%v)", XDGDataDir(), cfg.DBDir, cfg.SaveToDB)
		}
	})

	t.Run("Limits mirrors the layout", func(t *testing.T) {
		t.Parallel()
		limits := cfg.Limits()
		if limits.Threshold != 1550 || limits.Tolerance != 2 || limits.VirtualPadding != 24 {
			t.Errorf("unexpected limits %+v", limits)
		}
		if err := limits.Validate(); err != nil {
			t.Errorf("default limits are invalid: %v", err)
		}
	})
}

// TestConfigValidate tests the validation rules.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Document = "book.html"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid configuration", modify: func(*Config) {}, wantErr: nil},
		{name: "no document", modify: func(c *Config) { c.Document = "" }, wantErr: ErrNoDocument},
		{name: "zero threshold", modify: func(c *Config) { c.Threshold = 0 }, wantErr: ErrInvalidThreshold},
		{name: "negative tolerance", modify: func(c *Config) { c.Tolerance = -1 }, wantErr: ErrInvalidTolerance},
		{name: "tolerance not below threshold", modify: func(c *Config) { c.Threshold = 2 }, wantErr: ErrInvalidTolerance},
		{name: "negative padding", modify: func(c *Config) { c.Padding = -1 }, wantErr: ErrInvalidPadding},
		{name: "negative spacing", modify: func(c *Config) { c.Spacing = -4 }, wantErr: ErrInvalidPadding},
		{name: "negative settle delay", modify: func(c *Config) { c.SettleDelay = -time.Millisecond }, wantErr: ErrInvalidSettleDelay},
		{name: "zero settle delay is allowed", modify: func(c *Config) { c.SettleDelay = 0 }, wantErr: nil},
		{name: "zero debounce", modify: func(c *Config) { c.Debounce = 0 }, wantErr: ErrInvalidDebounce},
		{name: "zero max cycles", modify: func(c *Config) { c.MaxCycles = 0 }, wantErr: ErrInvalidMaxCycles},
		{name: "invalid hideable page", modify: func(c *Config) { c.Hideable = []int{0} }, wantErr: ErrInvalidPage},
		{name: "invalid hidden page", modify: func(c *Config) { c.Hidden = []int{-2} }, wantErr: ErrInvalidPage},
		{name: "both report formats", modify: func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, wantErr: ErrConflictingReportFormats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestFileGetLayout tests merging document sections over the defaults.
func TestFileGetLayout(t *testing.T) {
	t.Parallel()

	tolerance := 5.0
	settle := 20 * time.Millisecond
	f := &File{
		Defaults: Layout{Threshold: 1000, Settle: &settle, Hideable: []int{2}},
		Documents: map[string]Layout{
			"book.html": {Tolerance: &tolerance, Hideable: []int{3, 4}, MaxCycles: 50},
		},
	}

	t.Run("unknown document gets the defaults", func(t *testing.T) {
		t.Parallel()
		l := f.GetLayout("other.html")
		if l.Threshold != 1000 || l.Tolerance != nil || l.Hideable[0] != 2 {
			t.Errorf("unexpected layout %+v", l)
		}
	})

	t.Run("document section overrides the defaults", func(t *testing.T) {
		t.Parallel()
		l := f.GetLayout("book.html")
		if l.Threshold != 1000 {
			t.Errorf("expected inherited threshold 1000, got %v", l.Threshold)
		}
		if l.Tolerance == nil || *l.Tolerance != 5 {
			t.Errorf("expected tolerance 5, got %v", l.Tolerance)
		}
		if l.Settle == nil || *l.Settle != settle {
			t.Errorf("expected inherited settle delay, got %v", l.Settle)
		}
		if len(l.Hideable) != 2 || l.MaxCycles != 50 {
			t.Errorf("unexpected layout %+v", l)
		}
	})
}

// TestApplyLayout verifies only set fields override the configuration.
func TestApplyLayout(t *testing.T) {
	t.Parallel()

	zero := 0.0
	settle := time.Duration(0)
	cfg := NewConfig()
	cfg.ApplyLayout(Layout{
		Threshold:  1200,
		Tolerance:  &zero,
		Settle:     &settle,
		Sequential: true,
		Hidden:     []int{2},
	})

	if cfg.Threshold != 1200 || cfg.Tolerance != 0 || cfg.SettleDelay != 0 {
		t.Errorf("explicit values not applied: %+v", cfg)
	}
	if cfg.Padding != DefaultPadding || cfg.Debounce != DefaultDebounce || cfg.MaxCycles != DefaultMaxCycles {
		t.Errorf("absent values should keep defaults: %+v", cfg)
	}
	if !cfg.Sequential || len(cfg.Hidden) != 1 || cfg.Hidden[0] != 2 {
		t.Errorf("page settings not applied: %+v", cfg)
	}
}

// TestLoadConfigFile tests loading the YAML configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads layout and documents", func(t *testing.T) {
		t.Parallel()

		content := strings.Join([]string{
			"defaults:",
			"  threshold: 1400",
			"  tolerance: 3",
			"  settle: 15ms",
			"  debounce: 250ms",
			"  hideable: [2, 3]",
			"documents:",
			"  book.html:",
			"    hidden: [3]",
			"",
		}, "\n")
		path := filepath.Join(t.TempDir(), ".pageflow")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}
		l := f.GetLayout("book.html")
		if l.Threshold != 1400 || *l.Tolerance != 3 {
			t.Errorf("unexpected limits %+v", l)
		}
		if *l.Settle != 15*time.Millisecond || l.Debounce != 250*time.Millisecond {
			t.Errorf("unexpected timing %v / %v", *l.Settle, l.Debounce)
		}
		if len(l.Hideable) != 2 || len(l.Hidden) != 1 || l.Hidden[0] != 3 {
			t.Errorf("unexpected pages %+v", l)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".pageflow")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}
		if f.Documents == nil {
			t.Error("expected Documents to be initialized")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".pageflow")
		if err := os.WriteFile(path, []byte("defaults: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("misspelled key", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".pageflow")
		if err := os.WriteFile(path, []byte("defaults:\n  treshold: 1400\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfigFile(path)
		if err == nil || !strings.Contains(err.Error(), "treshold") {
			t.Errorf("expected an unknown key error, got %v", err)
		}
	})
}

// TestFindConfigFile tests config file resolution.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("defaults: {}"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("explicit path does not exist", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})

	t.Run("explicit path is a directory", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(t.TempDir()); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})

	t.Run("search order includes the XDG config file", func(t *testing.T) {
		t.Parallel()

		paths := SearchPaths()
		want := filepath.Join(XDGConfigDir(), XDGConfigFile)
		if !slices.Contains(paths, want) {
			t.Errorf("SearchPaths() = %v, want it to contain %q", paths, want)
		}
	})
}

// TestXDGDirs verifies the XDG directories end with the application name.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for _, dir := range []string{XDGDataDir(), XDGConfigDir()} {
		if filepath.Base(dir) != AppName {
			t.Errorf("%q should end with %q", dir, AppName)
		}
	}
}
