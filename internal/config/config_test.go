package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/plate-capture/internal/capture"
	"github.com/ironsheep/plate-capture/internal/plate"
	"github.com/ironsheep/plate-capture/internal/session"
)

// chdirTemp runs the test from an empty directory so no stray .env is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	if cfg.StoreDir != "image_data" || cfg.HTTPAddr != ":8080" || cfg.OCRLanguage != "eng" {
		t.Errorf("unexpected string defaults: %+v", cfg)
	}
	if cfg.Capture() != capture.DefaultConfig() {
		t.Errorf("Capture: got %+v, want %+v", cfg.Capture(), capture.DefaultConfig())
	}
	if cfg.Plate() != plate.DefaultConfig() {
		t.Errorf("Plate: got %+v, want %+v", cfg.Plate(), plate.DefaultConfig())
	}
	if cfg.Session() != session.DefaultConfig() {
		t.Errorf("Session: got %+v, want %+v", cfg.Session(), session.DefaultConfig())
	}
	if cfg.Debug() {
		t.Error("debug should be off by default")
	}
}

func TestLoad_Environment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PLATE_CAPTURE_STORE_DIR", "/var/lib/plates")
	t.Setenv("PLATE_MIN_SCORE", "0.65")
	t.Setenv("NO_PLATE_FRAMES", "20")
	t.Setenv("COOLDOWN_FRAMES", " 0 ")
	t.Setenv("FRAME_STRIDE", "1")
	t.Setenv("TWO_LINE_THRESHOLD", "0.3")
	t.Setenv("PLATE_CAPTURE_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := capture.Config{MinScore: 0.65, NoPlateFrames: 20, CooldownFrames: 0}
	if cfg.Capture() != want {
		t.Errorf("Capture: got %+v, want %+v", cfg.Capture(), want)
	}
	if cfg.StoreDir != "/var/lib/plates" || cfg.FrameStride != 1 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Plate().Layout.TwoLineThreshold != 0.3 {
		t.Errorf("TwoLineThreshold: got %v", cfg.Plate().Layout.TwoLineThreshold)
	}
	if !cfg.Debug() {
		t.Error("log level should be case-insensitive")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	content := "FRAME_STRIDE=3\nOCR_LANGUAGE=vie\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv sets variables for the process; restore them afterwards.
	t.Setenv("FRAME_STRIDE", "")
	t.Setenv("OCR_LANGUAGE", "")
	os.Unsetenv("FRAME_STRIDE")
	os.Unsetenv("OCR_LANGUAGE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FrameStride != 3 || cfg.OCRLanguage != "vie" {
		t.Errorf("values from .env not applied: stride %d, language %q", cfg.FrameStride, cfg.OCRLanguage)
	}
}

func TestLoad_ParseError(t *testing.T) {
	chdirTemp(t)
	t.Setenv("NO_PLATE_FRAMES", "twelve")

	_, err := Load()
	if err == nil {
		t.Fatal("Load should fail on a non-numeric value")
	}
	if !strings.Contains(err.Error(), "NO_PLATE_FRAMES") {
		t.Errorf("error should name the key: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreDir:         "image_data",
			MinScore:         0.8,
			NoPlateFrames:    12,
			CooldownFrames:   40,
			FrameStride:      2,
			PlateConfidence:  0.25,
			CharConfidence:   0.3,
			ExpandMargin:     0.08,
			TwoLineThreshold: 0.25,
			OCRLanguage:      "eng",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty store dir", func(c *Config) { c.StoreDir = "" }, "PLATE_CAPTURE_STORE_DIR"},
		{"score above one", func(c *Config) { c.MinScore = 1.5 }, "PLATE_MIN_SCORE"},
		{"zero no-plate frames", func(c *Config) { c.NoPlateFrames = 0 }, "NO_PLATE_FRAMES"},
		{"negative cooldown", func(c *Config) { c.CooldownFrames = -1 }, "COOLDOWN_FRAMES"},
		{"zero stride", func(c *Config) { c.FrameStride = 0 }, "FRAME_STRIDE"},
		{"negative plate conf", func(c *Config) { c.PlateConfidence = -0.1 }, "PLATE_DET_CONF"},
		{"char conf above one", func(c *Config) { c.CharConfidence = 2 }, "CHAR_DET_CONF"},
		{"negative margin", func(c *Config) { c.ExpandMargin = -0.5 }, "EXPAND_MARGIN"},
		{"threshold at one", func(c *Config) { c.TwoLineThreshold = 1 }, "TWO_LINE_THRESHOLD"},
		{"empty language", func(c *Config) { c.OCRLanguage = "" }, "OCR_LANGUAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}
