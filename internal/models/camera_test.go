// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package models

import "testing"

func TestNormalizeHeader(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Name", "name"},
		{"Field of View", "field_of_view"},
		{"  G Sheet Row ID ", "g_sheet_row_id"},
		{"LATITUDE", "latitude"},
	}
	for _, tt := range tests {
		if got := NormalizeHeader(tt.in); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCameraRowsFromTable(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
		want    int
	}{
		{"nil table", nil, 0},
		{"header only", [][]string{{"Name", "Latitude"}}, 0},
		{"one data row", [][]string{{"Name", "Latitude"}, {"Cam", "45"}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := CameraRowsFromTable(tt.records)
			if len(rows) != tt.want {
				t.Errorf("got %d rows, want %d", len(rows), tt.want)
			}
		})
	}
}

func TestCameraRowsFromTableMapsFields(t *testing.T) {
	records := [][]string{
		{"G Sheet Row ID", "Name", "Status", "Type", "Field of View", "Latitude", "Longitude"},
		{"s_2", " Cam A ", "Active", "PTZ", "110", "45.5", "-122.6"},
		{"", "Cam B", "Inactive"}, // short row: trailing columns omitted
	}

	rows := CameraRowsFromTable(records)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.ExternalRowID != "s_2" || first.Name != "Cam A" || first.CameraType != "PTZ" || first.FieldOfView != "110" {
		t.Errorf("row[0] mapped wrong: %+v", first)
	}

	second := rows[1]
	if second.ExternalRowID != "" || second.Status != "Inactive" {
		t.Errorf("row[1] mapped wrong: %+v", second)
	}
	if second.Latitude != "" || second.Direction != "" {
		t.Errorf("short row should leave trailing fields empty: %+v", second)
	}
}
