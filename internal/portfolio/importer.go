package portfolio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"portfolio-advisor/internal/types"
)

var (
	ErrMissingColumn   = errors.New("missing required column in CSV")
	ErrSessionNotFound = errors.New("session not found")
)

// RequiredColumns must be present in the header of an uploaded holdings file.
var RequiredColumns = []string{"Ticker", "Quantity"}

var dateLayouts = []string{"2006-01-02", "01/02/2006", "2006/01/02"}

// csvRow is read as text so each cell can be reported with its own message.
type csvRow struct {
	Ticker        string `csv:"Ticker"`
	Quantity      string `csv:"Quantity"`
	PurchasePrice string `csv:"PurchasePrice"`
	PurchaseDate  string `csv:"PurchaseDate"`
}

// NewSessionID returns an opaque identifier for one upload batch.
func NewSessionID() string {
	return uuid.NewString()
}

// Import parses a holdings CSV. Rows that fail validation are reported in Errors and skipped.
// Row numbers count the header as line 1.
func Import(r io.Reader) (types.ImportResult, error) {
	var res types.ImportResult

	data, err := io.ReadAll(r)
	if err != nil {
		return res, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if err := checkHeader(data); err != nil {
		return res, err
	}

	var rows []*csvRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return res, fmt.Errorf("could not parse CSV file: %w", err)
	}

	validate := validator.New()
	for i, row := range rows {
		line := i + 2
		h, rowErr := row.holding(line)
		if rowErr == nil {
			if err := validate.Struct(h); err != nil {
				rowErr = &types.RowError{Row: line, Error: "Ticker cannot be empty and Quantity must be positive."}
			}
		}
		if rowErr != nil {
			res.Errors = append(res.Errors, *rowErr)
			continue
		}
		res.Holdings = append(res.Holdings, h)
	}
	return res, nil
}

func checkHeader(data []byte) error {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return fmt.Errorf("%w: %s", ErrMissingColumn, RequiredColumns[0])
	}
	if err != nil {
		return fmt.Errorf("could not parse CSV file: %w", err)
	}
	seen := make(map[string]bool, len(header))
	for _, col := range header {
		seen[strings.TrimSpace(col)] = true
	}
	for _, col := range RequiredColumns {
		if !seen[col] {
			return fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return nil
}

func (r *csvRow) holding(line int) (types.Holding, *types.RowError) {
	h := types.Holding{Ticker: strings.ToUpper(strings.TrimSpace(r.Ticker))}

	qty, err := parseQuantity(r.Quantity)
	if err != nil {
		return h, &types.RowError{Row: line, Field: "Quantity", Error: "Invalid format for Quantity."}
	}
	h.Quantity = qty

	if p := strings.TrimSpace(r.PurchasePrice); p != "" {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return h, &types.RowError{Row: line, Field: "PurchasePrice", Error: "Invalid format for PurchasePrice."}
		}
		if v < 0 {
			return h, &types.RowError{Row: line, Field: "PurchasePrice", Error: "PurchasePrice cannot be negative."}
		}
		h.PurchasePrice = &v
	}

	if d := strings.TrimSpace(r.PurchaseDate); d != "" {
		t, ok := parseDate(d)
		if !ok {
			return h, &types.RowError{Row: line, Field: "PurchaseDate", Error: "Invalid format for PurchaseDate. Use YYYY-MM-DD."}
		}
		h.PurchaseDate = &t
	}
	return h, nil
}

// parseQuantity accepts whole numbers, including ones written as "10.0".
func parseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return int(f), nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
