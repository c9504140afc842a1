package receipt

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/ventas-extractor/internal/extraction"
	"github.com/zombor/ventas-extractor/internal/spreadsheet"
)

// IDGenerator generates unique IDs for extractions
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

// Service runs uploads through the extraction engine and keeps the results
type Service struct {
	db          DB
	engine      *extraction.Engine
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, engine *extraction.Engine, storage Storage) *Service {
	return NewServiceWithDeps(db, engine, storage, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, engine *extraction.Engine, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	if engine == nil {
		engine = extraction.NewEngine(nil)
	}
	return &Service{
		db:          db,
		engine:      engine,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Extract stages an upload, extracts its record and stores the result.
// Extraction failures are kept on the result; only staging, decoding and
// storage failures are returned as errors.
func (s *Service) Extract(filename string, r io.Reader, contentType string) (*Extraction, error) {
	source := filepath.Base(filename)

	path, err := s.storage.Stage(filename, r)
	if err != nil {
		return nil, fmt.Errorf("staging upload: %w", err)
	}
	defer func() {
		if err := s.storage.Remove(path); err != nil {
			slog.Warn("Failed to remove staged upload", "path", path, "error", err)
		}
	}()

	data, err := s.storage.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	text, err := extraction.DecodeText(data, contentType, filename)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", source, err)
	}

	rec, procErr := s.engine.Process(text, source)
	if procErr != nil {
		slog.Error("Extraction failed", "filename", source, "error", procErr)
	}

	e := &Extraction{
		ID:        s.idGenerator.Generate(),
		Result:    extraction.NewResult(rec, procErr),
		CreatedAt: s.timeSource.Now(),
	}
	if err := s.db.SaveExtraction(e); err != nil {
		return nil, fmt.Errorf("saving extraction: %w", err)
	}

	return e, nil
}

// GetExtraction retrieves an extraction by ID
func (s *Service) GetExtraction(id string) (*Extraction, error) {
	e, err := s.db.GetExtraction(id)
	if err != nil {
		return nil, fmt.Errorf("getting extraction: %w", err)
	}
	return e, nil
}

// ListExtractions returns all extractions, newest first
func (s *Service) ListExtractions() ([]*Extraction, error) {
	extractions, err := s.db.ListExtractions()
	if err != nil {
		return nil, fmt.Errorf("listing extractions: %w", err)
	}
	return extractions, nil
}

// DeleteExtraction removes an extraction from the history
func (s *Service) DeleteExtraction(id string) error {
	if err := s.db.DeleteExtraction(id); err != nil {
		return fmt.Errorf("deleting extraction: %w", err)
	}
	return nil
}

// ExportXLSX renders every stored record as a workbook, oldest first
func (s *Service) ExportXLSX() ([]byte, error) {
	extractions, err := s.ListExtractions()
	if err != nil {
		return nil, err
	}

	records := make([]extraction.Record, len(extractions))
	for i, e := range extractions {
		records[len(extractions)-1-i] = e.Record
	}

	data, err := spreadsheet.Write(records)
	if err != nil {
		return nil, fmt.Errorf("exporting extractions: %w", err)
	}
	return data, nil
}
