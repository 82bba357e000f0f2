package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/receipt-scanner/internal/extract"
	"github.com/zombor/receipt-scanner/internal/scanning"
)

// multipart overhead allowed on top of the file size limit
const formOverhead = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// recognitionErrorResponse keeps the record fields present but empty so
// clients can treat success and failure bodies alike.
type recognitionErrorResponse struct {
	Error        string             `json:"error"`
	Kind         scanning.ErrorKind `json:"kind"`
	Amount       *string            `json:"amount"`
	DetectedDate *string            `json:"detected_date"`
	Category     *string            `json:"category"`
}

type scanResponse struct {
	ScanID string `json:"scan_id"`
	extract.ReceiptRecord
}

type upload struct {
	filename    string
	contentType string
	data        []byte
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error response with CORS headers set
func writeError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	writeJSON(w, code, errorResponse{Error: message})
}

// writeServiceError maps service errors onto HTTP status codes
func writeServiceError(w http.ResponseWriter, err error) {
	var re *scanning.RecognitionError
	switch {
	case errors.As(err, &re):
		code := http.StatusUnprocessableEntity
		if re.Kind == scanning.KindEngineUnavailable {
			code = http.StatusServiceUnavailable
		}
		setCORSHeaders(w)
		writeJSON(w, code, recognitionErrorResponse{Error: re.Message, Kind: re.Kind})
	case errors.Is(err, ErrFileTooLarge):
		writeError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, ErrInvalidInput):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		writeError(w, "Not found", http.StatusNotFound)
	default:
		slog.Error("Request failed", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// readUpload reads the "file" part of a multipart request
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	limit := int64(s.service.MaxUploadSize())
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)

	if err := r.ParseMultipartForm(limit + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, fmt.Sprintf("File is too large. Maximum size is %d MB.", limit>>20), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		slog.Error("Error parsing multipart form", "error", err)
		writeError(w, "Error parsing form", http.StatusBadRequest)
		return nil, false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		errorMsg := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		writeError(w, errorMsg, http.StatusBadRequest)
		return nil, false
	}
	defer f.Close()

	if header.Size > limit {
		writeError(w, fmt.Sprintf("File is too large. Maximum size is %d MB.", limit>>20), http.StatusRequestEntityTooLarge)
		return nil, false
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return nil, false
	}

	return &upload{
		filename:    header.Filename,
		contentType: uploadContentType(header.Header.Get("Content-Type"), header.Filename),
		data:        data,
	}, true
}

// uploadContentType prefers the declared type and falls back to the extension
func uploadContentType(declared, filename string) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScanReceipt stores and reads an uploaded receipt
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.recognitionContext(r)
	defer cancel()

	scan, err := s.service.ScanReceipt(ctx, up.filename, up.data, up.contentType)
	if err != nil {
		slog.Error("Error scanning receipt", "filename", up.filename, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, scanResponse{ScanID: scan.ID, ReceiptRecord: scan.Record})
}

// handleExtractText returns the recognized text of an uploaded document
func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.recognitionContext(r)
	defer cancel()

	result, err := s.service.ExtractText(ctx, up.data)
	if err != nil {
		slog.Error("Error extracting text", "filename", up.filename, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAnalyzeDocument returns text, travel details and a summary
func (s *Server) handleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.recognitionContext(r)
	defer cancel()

	result, err := s.service.AnalyzeDocument(ctx, up.data)
	if err != nil {
		slog.Error("Error analyzing document", "filename", up.filename, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListScans returns all scans
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	scans, err := s.service.ListScans()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scans)
}

// handleGetScan returns a single scan
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := s.service.GetScan(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

// handleGetScanFile returns the stored image for a scan
func (s *Server) handleGetScanFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetScanFile(r.PathValue("id"))
	if errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		writeError(w, "File not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteScan deletes a scan and its file
func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteScan(r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCreateExpense creates an expense, optionally from a scan
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var input ExpenseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	expense, err := s.service.CreateExpense(input)
	if err != nil {
		slog.Error("Error creating expense", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

// handleListExpenses returns all expenses
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.service.ListExpenses()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// handleGetExpense returns a single expense
func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.service.GetExpense(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// handleDeleteExpense deletes an expense
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteExpense(r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExpenseTotals returns expense sums per category
func (s *Server) handleExpenseTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.service.ExpenseTotals()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
