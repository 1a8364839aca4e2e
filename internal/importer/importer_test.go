// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"Name,Latitude,Longitude,Status,Type,Direction,Field of View,Description",
		"Cam A,45.5,-122.6,Active,PTZ,180,110,intersection",
		"Cam B,45.6,-122.7", // short row
	}, "\n")

	rows, err := Parse("cameras.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.Name != "Cam A" || first.Latitude != "45.5" || first.CameraType != "PTZ" {
		t.Errorf("row[0] mapped wrong: %+v", first)
	}
	if first.FieldOfView != "110" {
		t.Errorf("row[0].FieldOfView = %q, want 110", first.FieldOfView)
	}
	if first.ExternalRowID != "" {
		t.Errorf("upload row without id column should have empty ExternalRowID, got %q", first.ExternalRowID)
	}

	second := rows[1]
	if second.Name != "Cam B" || second.Status != "" {
		t.Errorf("short row mapped wrong: %+v", second)
	}
}

func TestParseCSVKeepsRowIdentity(t *testing.T) {
	input := strings.Join([]string{
		"G Sheet Row ID,Name,Latitude,Longitude",
		"sheet1_2,Cam A,45.5,-122.6",
	}, "\n")

	rows, err := Parse("export.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].ExternalRowID != "sheet1_2" {
		t.Errorf("ExternalRowID = %q, want sheet1_2", rows[0].ExternalRowID)
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	rows, err := Parse("cameras.csv", strings.NewReader("Name,Latitude,Longitude\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := [][]interface{}{
		{"Name", "Latitude", "Longitude", "Status"},
		{"Cam A", "45.5", "-122.6", "Active"},
		{"Cam B", "45.6", "-122.7", "Inactive"},
	}
	for i, row := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	rows, err := Parse("cameras.xlsx", &buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Name != "Cam A" || rows[1].Status != "Inactive" {
		t.Errorf("xlsx rows mapped wrong: %+v", rows)
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	tests := []string{"cameras.json", "cameras.txt", "cameras", "cameras.xls"}
	for _, name := range tests {
		if _, err := Parse(name, strings.NewReader("")); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Parse(%q) err = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestParseExtensionCaseInsensitive(t *testing.T) {
	input := "Name,Latitude,Longitude\nCam A,45.5,-122.6"
	rows, err := Parse("CAMERAS.CSV", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
}

func TestParseMalformedCSV(t *testing.T) {
	// Unterminated quote is a parse error.
	if _, err := Parse("bad.csv", strings.NewReader("Name\n\"unterminated")); err == nil {
		t.Fatal("expected csv parse error")
	}
}
