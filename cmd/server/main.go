package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/propulsa/docview-backend/internal/api"
	"github.com/propulsa/docview-backend/internal/catalog"
	"github.com/propulsa/docview-backend/internal/cdn"
	"github.com/propulsa/docview-backend/internal/config"
	"github.com/propulsa/docview-backend/internal/notify"
	"github.com/propulsa/docview-backend/internal/preview"
	"github.com/propulsa/docview-backend/internal/retry"
	"github.com/propulsa/docview-backend/internal/upload"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "DocViewBackend.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Notification hub pushes render and upload status to clients
	hub := api.NewNotificationHub()
	sink := notify.Fanout(&notify.LogSink{Component: "DocView"}, hub)

	// URL canonicalization
	canon := cdn.New(cfg.Cdn.Domain)

	// Format routing rules
	formats, err := preview.LoadRegistry(cfg.Render.FormatRulesFile)
	if err != nil {
		fmt.Printf("Failed to load format rules: %v\n", err)
		os.Exit(1)
	}

	// Preview session manager
	previewMgr := preview.NewManager(preview.Options{
		Fetcher:   preview.NewFetcher(nil, canon),
		Decoder:   preview.NewPDFDecoder(cfg.Storage.TempDirectory),
		Fallback:  preview.NewFallbackViewer(cfg.Cdn.ViewerHost, canon),
		Formats:   formats,
		Sink:      sink,
		PageWidth: float64(cfg.Render.DefaultPageWidth),
		Boost:     cfg.Render.FullscreenBoost,
		MaxScale:  cfg.Render.MaxFullscreenScale,
	})

	// Start background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Render.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			previewMgr.CleanupOldSessions(time.Duration(cfg.Render.SessionTimeoutMinutes) * time.Minute)
		}
	}()

	// Catalog client and search handoff store
	catalogClient := catalog.NewClient(cfg.Upstream.CatalogBaseURL, nil)
	handoff, err := catalog.NewHandoff(cfg.Storage.DataDirectory)
	if err != nil {
		fmt.Printf("Failed to initialize handoff store: %v\n", err)
		os.Exit(1)
	}

	// Upload pipeline with bounded retries
	pipeline := upload.NewPipeline(
		nil,
		cfg.Upstream.IngestURL,
		retry.Policy{
			MaxAttempts: cfg.Upload.MaxAttempts,
			Delay:       time.Duration(cfg.Upload.RetryDelayMs) * time.Millisecond,
		},
		time.Duration(cfg.Upload.AttemptTimeoutSeconds)*time.Second,
		sink,
	)

	handlers := api.NewHandlers(&api.Dependencies{
		Catalog:    catalogClient,
		Handoff:    handoff,
		PreviewMgr: previewMgr,
		Pipeline:   pipeline,
		Hub:        hub,
		Version:    Version,
	})

	e := echo.New()
	api.SetupMiddleware(e)

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/api/health" ||
				strings.Contains(path, "/pages/") ||
				strings.Contains(path, "/fullscreen/")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, handlers)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Document Preview Backend                        ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  CDN:       %-46s║\n", cfg.Cdn.Domain)
	fmt.Printf("║  Catalog:   %-46s║\n", cfg.Upstream.CatalogBaseURL)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
