package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/plate-capture/internal/config"
	"github.com/ironsheep/plate-capture/internal/detection"
	"github.com/ironsheep/plate-capture/internal/httpapi"
	"github.com/ironsheep/plate-capture/internal/ocr"
	"github.com/ironsheep/plate-capture/internal/plate"
	"github.com/ironsheep/plate-capture/internal/server"
	"github.com/ironsheep/plate-capture/internal/session"
	"github.com/ironsheep/plate-capture/internal/source"
	"github.com/ironsheep/plate-capture/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	mode := "serve"
	var args []string
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("plate-capture %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		default:
			mode = os.Args[1]
			args = os.Args[2:]
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Debug() {
		log.Printf("Plate Capture v%s (built %s, commit %s), mode %s", Version, BuildTime, GitCommit, mode)
		log.Printf("Config: %+v", *cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	switch mode {
	case "serve":
		err = server.New(sess).Run(ctx)
	case "http":
		err = serveHTTP(ctx, cfg, sess)
	case "watch":
		if len(args) != 1 {
			log.Fatalf("Usage: plate-capture watch <dir|video|camera-index>")
		}
		err = watch(ctx, sess, args[0])
	default:
		log.Fatalf("Unknown mode %q (see --help)", mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server error: %v", err)
	}
}

func printHelp() {
	fmt.Println("plate-capture - license plate recognition and auto-capture")
	fmt.Println()
	fmt.Println("Usage: plate-capture [mode] [options]")
	fmt.Println()
	fmt.Println("Modes:")
	fmt.Println("  serve                  MCP server over stdin/stdout (default)")
	fmt.Println("  http                   HTTP API on PLATE_CAPTURE_HTTP_ADDR")
	fmt.Println("  watch <source>         Capture plates from a frame directory, video file or camera index")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from .env):")
	fmt.Println("  PLATE_CAPTURE_STORE_DIR=image_data    Directory of captured frames")
	fmt.Println("  PLATE_CAPTURE_HTTP_ADDR=:8080         HTTP listen address")
	fmt.Println("  PLATE_CAPTURE_REPLAY=<file>           Replay recorded detector output")
	fmt.Println("  PLATE_MIN_SCORE=0.8                   Lowest score that is captured")
	fmt.Println("  NO_PLATE_FRAMES=12                    Plate-less frames before a capture")
	fmt.Println("  COOLDOWN_FRAMES=40                    Frames ignored after a capture")
	fmt.Println("  FRAME_STRIDE=2                        Process every Nth frame")
	fmt.Println("  PLATE_DET_CONF=0.25                   Plate detector confidence floor")
	fmt.Println("  CHAR_DET_CONF=0.30                    Character confidence floor")
	fmt.Println("  EXPAND_MARGIN=0.08                    Box expansion per side")
	fmt.Println("  TWO_LINE_THRESHOLD=0.25               Vertical spread that splits rows")
	fmt.Println("  OCR_LANGUAGE=eng                      Tesseract language")
	fmt.Println("  PLATE_CAPTURE_LOG_LEVEL=debug         Enable debug logging")
}

// newSession wires the detectors, store and tracker.
func newSession(cfg *config.Config) (*session.Session, error) {
	var (
		plates plate.PlateDetector
		chars  plate.CharacterDetector
	)
	if cfg.ReplayPath != "" {
		replay, err := detection.LoadReplay(cfg.ReplayPath, ocr.DefaultCharset)
		if err != nil {
			return nil, err
		}
		log.Printf("Replaying %d recorded frames from %s", replay.Len(), cfg.ReplayPath)
		plates, chars = replay, replay
	} else {
		plates = detection.NewContourDetector(detection.DefaultContourConfig())
		tcfg := ocr.DefaultTesseractConfig()
		tcfg.Language = cfg.OCRLanguage
		tcfg.TessdataPrefix = cfg.TessdataPrefix
		chars = ocr.NewTesseractDetector(tcfg)
		if cfg.Debug() {
			log.Printf("Tesseract %s", ocr.Version())
		}
	}

	rec := plate.NewRecognizer(plates, chars, cfg.Plate())
	return session.New(rec, store.NewDirStore(cfg.StoreDir), cfg.Session()), nil
}

// serveHTTP runs the HTTP API until ctx is cancelled.
func serveHTTP(ctx context.Context, cfg *config.Config, sess *session.Session) error {
	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(sess),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("HTTP API listening on %s", cfg.HTTPAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	log.Printf("HTTP API stopped")
	return nil
}

// watch runs the capture loop over target and prints each capture event as
// a JSON line on stdout.
func watch(ctx context.Context, sess *session.Session, target string) error {
	src, err := source.Open(target)
	if err != nil {
		return err
	}
	defer src.Close()

	enc := json.NewEncoder(os.Stdout)
	return sess.Run(ctx, src, func(r *session.FrameResult) {
		if r.Event == nil {
			return
		}
		if err := enc.Encode(r.Event); err != nil {
			log.Printf("Failed to encode event: %v", err)
		}
	})
}
