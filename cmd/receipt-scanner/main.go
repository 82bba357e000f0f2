package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-scanner/internal/analysis"
	"github.com/zombor/receipt-scanner/internal/extract"
	"github.com/zombor/receipt-scanner/internal/receipt"
	"github.com/zombor/receipt-scanner/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("receipt-scanner")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "receipt-scanner.db", "Database file path")
		storagePath = fs.StringLong("storage", "./scans", "Storage directory path")
		tessdata    = fs.StringLong("tessdata", "", "Tesseract tessdata directory (default: engine's own)")
		language    = fs.StringLong("lang", "eng", "Tesseract language")
		ocrWorkers  = fs.IntLong("ocr-workers", 0, "Concurrent recognitions (0 = number of CPUs)")
		ocrTimeout  = fs.DurationLong("ocr-timeout", 0, "Per-request recognition timeout (0 = none)")
		maxUpload   = fs.IntLong("max-upload", receipt.DefaultMaxUploadSize, "Maximum upload size in bytes")
		keywords    = fs.StringLong("keywords", "", "YAML file with extra category keywords")
		analyzerArg = fs.StringLong("analyzer", "none", "Document summarizer: 'none', 'gemini' or 'ollama'")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llama3.2", "Ollama model name")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_SCANNER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize category keywords
	var extra map[string][]string
	if *keywords != "" {
		slog.Info("Loading category keywords...", "path", *keywords)
		var err error
		extra, err = extract.LoadKeywords(*keywords)
		if err != nil {
			slog.Error("Failed to load category keywords", "error", err)
			os.Exit(1)
		}
	}
	classifier, err := extract.NewClassifier(extra)
	if err != nil {
		slog.Error("Failed to initialize classifier", "error", err)
		os.Exit(1)
	}

	// Initialize recognition pipeline
	slog.Info("Initializing Tesseract...", "version", scanning.TesseractVersion(), "lang", *language)
	engine := scanning.NewTesseract(*language, *tessdata)
	pipeline := scanning.NewPipeline(
		scanning.NewRecognizer(engine, *ocrWorkers),
		extract.NewExtractor(classifier, nil),
	)

	// Initialize database
	slog.Info("Initializing database...")
	db, err := receipt.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := receipt.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize analyzer based on type
	var analyzer analysis.Analyzer
	switch *analyzerArg {
	case "none", "":
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini analyzer...", "model", *geminiModel)
		gemini, err := analysis.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
		analyzer = gemini
	case "ollama":
		slog.Info("Initializing Ollama analyzer...", "url", *ollamaURL, "model", *ollamaModel)
		ollama, err := analysis.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
		analyzer = ollama
	default:
		slog.Error("Invalid analyzer type", "type", *analyzerArg, "valid", "none, gemini or ollama")
		os.Exit(1)
	}
	if analyzer != nil {
		defer analyzer.Close()
	}

	// Initialize service
	service := receipt.NewService(db, pipeline, store, analyzer)
	service.SetMaxUploadSize(*maxUpload)

	// Initialize server
	basicAuth := receipt.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := receipt.NewServer(service, basicAuth)
	server.SetOCRTimeout(*ocrTimeout)

	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", *port)
	if err := server.Start(ctx, addr); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
