// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

// Package importer parses uploaded camera inventory files into camera rows
// for the sync engine. Supported formats are CSV and XLSX, detected from
// the uploaded filename's extension.
//
// The first row of a file is the header. Header names are lower-cased with
// spaces replaced by underscores to form field keys, so "Field of View"
// maps to field_of_view. Rows carrying a g_sheet_row_id or external_row_id
// column keep that identity and upsert against previously synced cameras;
// rows without one insert new cameras.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/opticus-project/opticus/internal/models"
)

// ErrUnsupportedFormat indicates an upload whose extension is neither .csv
// nor .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parse reads an uploaded file and returns its camera rows. The format is
// chosen by the filename extension, case-insensitively.
func Parse(filename string, r io.Reader) ([]models.CameraRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func parseCSV(r io.Reader) ([]models.CameraRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows may omit trailing optional columns
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return models.CameraRowsFromTable(records), nil
}

func parseXLSX(r io.Reader) ([]models.CameraRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close() //nolint:errcheck

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	// Only the first sheet is read; inventory exports are single-sheet.
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return models.CameraRowsFromTable(records), nil
}
