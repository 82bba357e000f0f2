package receipt

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-scanner/internal/analysis"
	"github.com/zombor/receipt-scanner/internal/extract"
	"github.com/zombor/receipt-scanner/internal/scanning"
)

// DefaultMaxUploadSize is the largest image accepted for scanning
const DefaultMaxUploadSize = 10 << 20

var (
	// ErrInvalidInput is returned for requests that fail validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrFileTooLarge is returned when an upload exceeds the size limit
	ErrFileTooLarge = errors.New("file too large")
)

// IDGenerator generates unique IDs for scans and expenses
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// DocumentAnalysis is the text of an arbitrary document plus travel hints and
// an optional model-written summary
type DocumentAnalysis struct {
	*scanning.TextResult
	TravelInfo extract.TravelInfo `json:"travel_info"`
	Summary    string             `json:"summary,omitempty"`
}

// Service handles scan and expense operations
type Service struct {
	db            DB
	scanner       scanning.Scanner
	storage       Storage
	analyzer      analysis.Analyzer
	idGenerator   IDGenerator
	timeSource    TimeSource
	maxUploadSize int
}

// NewService creates a new Service with default ID generator and time source.
// analyzer may be nil, in which case documents are not summarized.
func NewService(db DB, scanner scanning.Scanner, storage Storage, analyzer analysis.Analyzer) *Service {
	return NewServiceWithDeps(db, scanner, storage, analyzer, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, analyzer analysis.Analyzer, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:            db,
		scanner:       scanner,
		storage:       storage,
		analyzer:      analyzer,
		idGenerator:   idGen,
		timeSource:    timeSrc,
		maxUploadSize: DefaultMaxUploadSize,
	}
}

// SetMaxUploadSize changes the upload size limit in bytes
func (s *Service) SetMaxUploadSize(n int) {
	if n > 0 {
		s.maxUploadSize = n
	}
}

// MaxUploadSize returns the upload size limit in bytes
func (s *Service) MaxUploadSize() int {
	return s.maxUploadSize
}

var (
	filenameDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	filenameSpaces     = regexp.MustCompile(`\s+`)
	extensionAllowed   = regexp.MustCompile(`^\.[a-zA-Z0-9]{1,5}$`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if !extensionAllowed.MatchString(ext) {
		ext = ""
	}

	base = filenameDisallowed.ReplaceAllString(base, "")
	base = strings.TrimSpace(filenameSpaces.ReplaceAllString(base, " "))

	// Truncate to reasonable length (50 chars for base, plus extension)
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}

	return base + strings.ToLower(ext)
}

func (s *Service) checkUpload(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if len(data) > s.maxUploadSize {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrFileTooLarge, len(data), s.maxUploadSize)
	}
	return nil
}

// ScanReceipt stores an uploaded receipt image, extracts its fields and saves
// the scan. The stored file is removed again if extraction or saving fails.
func (s *Service) ScanReceipt(ctx context.Context, filename string, data []byte, contentType string) (*Scan, error) {
	if err := s.checkUpload(data); err != nil {
		return nil, err
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	record, err := s.scanner.ExtractReceipt(ctx, data)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		// Clean up the saved file since scanning failed
		s.deleteFile(savedPath)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	scan := &Scan{
		ID:           id,
		OriginalName: filename,
		Filename:     savedPath,
		ContentType:  contentType,
		Record:       *record,
		CreatedAt:    now,
	}

	if err := s.db.SaveScan(scan); err != nil {
		s.deleteFile(savedPath)
		return nil, fmt.Errorf("saving scan to database: %w", err)
	}

	slog.Info("Scanned receipt",
		"id", id,
		"vendor", record.Vendor,
		"category", record.Category,
		"amount_found", record.Amount.Valid,
		"date_found", record.DetectedDate != "",
	)
	return scan, nil
}

func (s *Service) deleteFile(path string) {
	if err := s.storage.Delete(path); err != nil {
		slog.Warn("Failed to delete file", "filename", path, "error", err)
	}
}

// ExtractText recognizes the text of a document without storing it
func (s *Service) ExtractText(ctx context.Context, data []byte) (*scanning.TextResult, error) {
	if err := s.checkUpload(data); err != nil {
		return nil, err
	}
	result, err := s.scanner.ExtractText(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	return result, nil
}

// AnalyzeDocument recognizes a document's text, looks for travel details and,
// when an analyzer is configured, adds a short summary. A failed summary does
// not fail the analysis.
func (s *Service) AnalyzeDocument(ctx context.Context, data []byte) (*DocumentAnalysis, error) {
	text, err := s.ExtractText(ctx, data)
	if err != nil {
		return nil, err
	}

	result := &DocumentAnalysis{
		TextResult: text,
		TravelInfo: extract.Travel(text.RawText),
	}

	if s.analyzer != nil && text.Text != "" {
		summary, err := s.analyzer.Summarize(ctx, text.Text)
		if err != nil {
			slog.Warn("Failed to summarize document", "error", err)
		} else {
			result.Summary = summary
		}
	}
	return result, nil
}

// CreateExpense validates and saves an expense. If the input references a
// scan, blank fields are taken from the scan's extracted record.
func (s *Service) CreateExpense(input ExpenseInput) (*Expense, error) {
	now := s.timeSource.Now()
	source := SourceManual

	if input.ScanID != "" {
		scan, err := s.db.GetScan(input.ScanID)
		if err != nil {
			return nil, fmt.Errorf("getting scan: %w", err)
		}
		input = prefillFromScan(input, scan)
		source = SourceOCR
	}

	place := strings.TrimSpace(input.Place)
	if place == "" {
		return nil, fmt.Errorf("%w: place is required", ErrInvalidInput)
	}
	if !input.Amount.Valid || !input.Amount.Decimal.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" {
		category = extract.Miscellaneous
	}
	if !extract.IsCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, input.Category)
	}

	date := now
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
		}
		date = parsed
	}

	expense := &Expense{
		ID:        s.idGenerator.Generate(),
		Place:     place,
		Amount:    input.Amount.Decimal.Round(2),
		Category:  category,
		Date:      date,
		Notes:     strings.TrimSpace(input.Notes),
		Source:    source,
		ScanID:    input.ScanID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.SaveExpense(expense); err != nil {
		return nil, fmt.Errorf("saving expense: %w", err)
	}
	return expense, nil
}

func prefillFromScan(input ExpenseInput, scan *Scan) ExpenseInput {
	if strings.TrimSpace(input.Place) == "" {
		input.Place = scan.Record.Vendor
	}
	if !input.Amount.Valid {
		input.Amount = scan.Record.Amount
	}
	if input.Category == "" {
		input.Category = scan.Record.Category
	}
	if input.Date == "" {
		input.Date = scan.Record.DetectedDate
	}
	return input
}

// GetExpense retrieves an expense by ID
func (s *Service) GetExpense(id string) (*Expense, error) {
	expense, err := s.db.GetExpense(id)
	if err != nil {
		return nil, fmt.Errorf("getting expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns all expenses, most recent date first
func (s *Service) ListExpenses() ([]*Expense, error) {
	expenses, err := s.db.ListExpenses()
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	slices.SortStableFunc(expenses, func(a, b *Expense) int {
		return b.Date.Compare(a.Date)
	})
	return expenses, nil
}

// DeleteExpense removes an expense
func (s *Service) DeleteExpense(id string) error {
	if _, err := s.db.GetExpense(id); err != nil {
		return fmt.Errorf("getting expense for deletion: %w", err)
	}
	if err := s.db.DeleteExpense(id); err != nil {
		return fmt.Errorf("deleting expense from database: %w", err)
	}
	return nil
}

// ExpenseTotals sums expense amounts per category
func (s *Service) ExpenseTotals() (map[string]decimal.Decimal, error) {
	expenses, err := s.db.ListExpenses()
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	totals := make(map[string]decimal.Decimal, len(extract.Categories))
	for _, c := range extract.Categories {
		totals[c] = decimal.Zero
	}
	for _, e := range expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals, nil
}

// GetScan retrieves a scan by ID
func (s *Service) GetScan(id string) (*Scan, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, fmt.Errorf("getting scan: %w", err)
	}
	return scan, nil
}

// ListScans returns all scans, newest first
func (s *Service) ListScans() ([]*Scan, error) {
	scans, err := s.db.ListScans()
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	slices.SortStableFunc(scans, func(a, b *Scan) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return scans, nil
}

// DeleteScan removes a scan and its file
func (s *Service) DeleteScan(id string) error {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return fmt.Errorf("getting scan for deletion: %w", err)
	}

	// Log error but continue with database deletion
	s.deleteFile(scan.Filename)

	if err := s.db.DeleteScan(id); err != nil {
		return fmt.Errorf("deleting scan from database: %w", err)
	}
	return nil
}

// GetScanFile retrieves the stored image for a scan
func (s *Service) GetScanFile(id string) ([]byte, string, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting scan: %w", err)
	}

	data, err := s.storage.Get(scan.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting scan file: %w", err)
	}

	return data, scan.ContentType, nil
}
