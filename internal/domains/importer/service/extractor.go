package service

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"coachhub-backend/internal/domains/importer"
)

// xlsxMagic is the ZIP container signature every XLSX workbook starts with.
var xlsxMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// headerPattern marks a row as the column-header row. Roster templates in
// the wild put a Date or Workout column in the header, so its presence is
// the strongest signal available.
var headerPattern = regexp.MustCompile(`(?i)date|workout`)

// headerScanLimit bounds how deep into a sheet the header search goes.
const headerScanLimit = 10

// TabularExtractor turns uploaded file bytes into raw sheets. It performs
// no validation beyond recognizing the container format; dropping empty or
// template sheets is a later stage's job.
type TabularExtractor struct{}

func NewTabularExtractor() *TabularExtractor {
	return &TabularExtractor{}
}

// Extract parses fileBytes into sheets. The file name is used only as a
// format hint. Unrecognizable input yields a ParseError.
func (e *TabularExtractor) Extract(fileBytes []byte, fileName string) (*importer.Extraction, error) {
	format, err := detectFormat(fileBytes, fileName)
	if err != nil {
		return nil, err
	}

	switch format {
	case importer.FormatXLSX:
		return e.extractXLSX(fileBytes)
	default:
		return e.extractCSV(fileBytes, fileName)
	}
}

// DetectHeader locates the column-header row within a sheet and collects
// the key/value rows above it. Defaults to row 0 when no row matches.
func (e *TabularExtractor) DetectHeader(sheet importer.RawSheet) importer.HeaderMetadata {
	meta := importer.HeaderMetadata{
		HeaderRowIndex:     0,
		PrecedingKeyValues: map[string]string{},
	}

	limit := len(sheet.Cells)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

scan:
	for i := 0; i < limit; i++ {
		for _, cell := range sheet.Cells[i] {
			if headerPattern.MatchString(cell) {
				meta.HeaderRowIndex = i
				break scan
			}
		}
	}

	// Rows above the header with at least two non-empty cells read as
	// label/value pairs ("Membership Type" / "Gold" and the like).
	for i := 0; i < meta.HeaderRowIndex; i++ {
		nonEmpty := make([]string, 0, 2)
		for _, cell := range sheet.Cells[i] {
			if v := strings.TrimSpace(cell); v != "" {
				nonEmpty = append(nonEmpty, v)
			}
		}
		if len(nonEmpty) >= 2 {
			meta.PrecedingKeyValues[strings.ToLower(nonEmpty[0])] = nonEmpty[1]
		}
	}

	return meta
}

func detectFormat(fileBytes []byte, fileName string) (importer.SourceFormat, error) {
	if bytes.HasPrefix(fileBytes, xlsxMagic) {
		return importer.FormatXLSX, nil
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		// Extension says workbook but the ZIP signature is missing.
		return "", importer.NewParseError("file does not look like a valid workbook", nil)
	case ".csv", ".txt", ".tsv":
		return importer.FormatCSV, nil
	}

	// No usable extension: accept the bytes as delimited text only when
	// they plausibly are text.
	if bytes.ContainsRune(fileBytes, 0x00) {
		return "", importer.NewParseError("unrecognized tabular format", nil)
	}
	return importer.FormatCSV, nil
}

func (e *TabularExtractor) extractCSV(fileBytes []byte, fileName string) (*importer.Extraction, error) {
	reader := csv.NewReader(bytes.NewReader(fileBytes))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var cells [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, importer.NewParseError("malformed delimited data", err)
		}
		cells = append(cells, row)
	}

	name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	if name == "" || name == "." {
		name = "Sheet1"
	}

	return &importer.Extraction{
		Format: importer.FormatCSV,
		Sheets: []importer.RawSheet{{Name: name, Cells: cells}},
	}, nil
}

func (e *TabularExtractor) extractXLSX(fileBytes []byte) (*importer.Extraction, error) {
	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	if err != nil {
		return nil, importer.NewParseError("could not open workbook", err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	sheets := make([]importer.RawSheet, 0, len(sheetNames))
	for _, name := range sheetNames {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, importer.NewParseError("could not read sheet "+name, err)
		}
		// Empty tabs stay in the output; later stages decide their fate.
		sheets = append(sheets, importer.RawSheet{Name: name, Cells: rows})
	}

	return &importer.Extraction{
		Format: importer.FormatXLSX,
		Sheets: sheets,
	}, nil
}
