// Package config loads plate-capture settings from the environment.
//
// A .env file in the working directory is read first when present; variables
// already set in the environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ironsheep/plate-capture/internal/capture"
	"github.com/ironsheep/plate-capture/internal/plate"
	"github.com/ironsheep/plate-capture/internal/session"
)

// Config holds every tunable of the service.
type Config struct {
	StoreDir string
	HTTPAddr string
	LogLevel string

	MinScore       float64
	NoPlateFrames  int
	CooldownFrames int
	FrameStride    int

	PlateConfidence  float64
	CharConfidence   float64
	ExpandMargin     float64
	TwoLineThreshold float64

	OCRLanguage    string
	TessdataPrefix string

	// ReplayPath, when set, replaces the live detectors with recorded
	// model output.
	ReplayPath string
}

// Load reads .env (if any) and the environment. Unparsable numbers are
// reported as errors; unset keys take their defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: failed to load .env: %v", err)
	}

	var p parser
	cfg := &Config{
		StoreDir: getEnv("PLATE_CAPTURE_STORE_DIR", "image_data"),
		HTTPAddr: getEnv("PLATE_CAPTURE_HTTP_ADDR", ":8080"),
		LogLevel: strings.ToLower(getEnv("PLATE_CAPTURE_LOG_LEVEL", "info")),

		MinScore:       p.getFloat("PLATE_MIN_SCORE", capture.DefaultMinScore),
		NoPlateFrames:  p.getInt("NO_PLATE_FRAMES", capture.DefaultNoPlateFrames),
		CooldownFrames: p.getInt("COOLDOWN_FRAMES", capture.DefaultCooldownFrames),
		FrameStride:    p.getInt("FRAME_STRIDE", session.DefaultFrameStride),

		PlateConfidence:  p.getFloat("PLATE_DET_CONF", plate.DefaultMinPlateConfidence),
		CharConfidence:   p.getFloat("CHAR_DET_CONF", plate.DefaultMinCharConfidence),
		ExpandMargin:     p.getFloat("EXPAND_MARGIN", plate.DefaultExpandMargin),
		TwoLineThreshold: p.getFloat("TWO_LINE_THRESHOLD", plate.DefaultTwoLineThreshold),

		OCRLanguage:    getEnv("OCR_LANGUAGE", "eng"),
		TessdataPrefix: getEnv("TESSDATA_PREFIX", ""),
		ReplayPath:     getEnv("PLATE_CAPTURE_REPLAY", ""),
	}
	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.StoreDir != "", "PLATE_CAPTURE_STORE_DIR must not be empty")
	check(unit(c.MinScore), "PLATE_MIN_SCORE must be in [0,1], got %v", c.MinScore)
	check(c.NoPlateFrames >= 1, "NO_PLATE_FRAMES must be at least 1, got %d", c.NoPlateFrames)
	check(c.CooldownFrames >= 0, "COOLDOWN_FRAMES must not be negative, got %d", c.CooldownFrames)
	check(c.FrameStride >= 1, "FRAME_STRIDE must be at least 1, got %d", c.FrameStride)
	check(unit(c.PlateConfidence), "PLATE_DET_CONF must be in [0,1], got %v", c.PlateConfidence)
	check(unit(c.CharConfidence), "CHAR_DET_CONF must be in [0,1], got %v", c.CharConfidence)
	check(c.ExpandMargin >= 0 && c.ExpandMargin <= 1, "EXPAND_MARGIN must be in [0,1], got %v", c.ExpandMargin)
	check(c.TwoLineThreshold > 0 && c.TwoLineThreshold < 1, "TWO_LINE_THRESHOLD must be in (0,1), got %v", c.TwoLineThreshold)
	check(c.OCRLanguage != "", "OCR_LANGUAGE must not be empty")

	return errors.Join(errs...)
}

// Capture returns the tracker settings.
func (c *Config) Capture() capture.Config {
	return capture.Config{
		MinScore:       c.MinScore,
		NoPlateFrames:  c.NoPlateFrames,
		CooldownFrames: c.CooldownFrames,
	}
}

// Session returns the session settings.
func (c *Config) Session() session.Config {
	return session.Config{
		FrameStride: c.FrameStride,
		Capture:     c.Capture(),
	}
}

// Plate returns the per-frame pipeline settings.
func (c *Config) Plate() plate.Config {
	return plate.Config{
		MinPlateConfidence: c.PlateConfidence,
		ExpandMargin:       c.ExpandMargin,
		Layout: plate.LayoutConfig{
			MinConfidence:    c.CharConfidence,
			TwoLineThreshold: c.TwoLineThreshold,
		},
	}
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// parser collects the first parse failure so Load can report it once.
type parser struct {
	err error
}

func (p *parser) getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) getFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("failed to parse %s=%q: %w", key, raw, err)
	}
}
