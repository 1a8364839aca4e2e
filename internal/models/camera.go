// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package models

import (
	"strings"
	"time"
)

// Default field values applied to camera rows that omit them.
const (
	DefaultCameraStatus = "Active"
	DefaultCameraType   = "Fixed"
	DefaultDirection    = 0
	DefaultFieldOfView  = 90
)

// Camera is a persisted camera record with a WGS84 point location.
// ExternalRowID correlates the record with its originating row in an
// external source and is the natural key for upsert matching; cameras
// imported from direct file uploads may have none.
type Camera struct {
	ID            int64     `json:"id"`
	ExternalRowID string    `json:"external_row_id,omitempty"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	CameraType    string    `json:"camera_type"`
	Description   string    `json:"description,omitempty"`
	Direction     float64   `json:"direction"`
	FieldOfView   float64   `json:"field_of_view"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CameraRow is a loosely typed camera row from an external source
// (spreadsheet sync or file upload). All value fields are strings as
// delivered by the source; keys derive from header names lower-cased with
// spaces replaced by underscores. Validation and defaulting happen in the
// sync engine, keeping the untyped row shape decoupled from Camera.
type CameraRow struct {
	// ExternalRowID is the synthesized stable row identity
	// ("<sourceID>_<rowIndex>") for spreadsheet rows. Empty for uploads.
	ExternalRowID string

	Name        string
	Status      string
	CameraType  string
	Description string
	Direction   string
	FieldOfView string
	Latitude    string
	Longitude   string
}

// CameraRowFromFields builds a CameraRow from header-derived field keys.
// Unknown keys are ignored; missing keys leave fields empty. Both the
// g_sheet_row_id key (spreadsheet exports) and external_row_id are accepted
// as the row identity.
func CameraRowFromFields(fields map[string]string) CameraRow {
	externalRowID := fields["g_sheet_row_id"]
	if externalRowID == "" {
		externalRowID = fields["external_row_id"]
	}
	return CameraRow{
		ExternalRowID: externalRowID,
		Name:          fields["name"],
		Status:        fields["status"],
		CameraType:    fields["type"],
		Description:   fields["description"],
		Direction:     fields["direction"],
		FieldOfView:   fields["field_of_view"],
		Latitude:      fields["latitude"],
		Longitude:     fields["longitude"],
	}
}

// NormalizeHeader lower-cases a header cell and replaces spaces with
// underscores, so "Field of View" keys as "field_of_view".
func NormalizeHeader(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// CameraRowsFromTable maps a header row plus data rows to CameraRows. Every
// tabular source (spreadsheet values, CSV and XLSX uploads) goes through
// this one mapping so header handling cannot drift between them. Short rows
// are padded so trailing optional columns may be omitted; tables with no
// data rows yield nil, not an error.
func CameraRowsFromTable(records [][]string) []CameraRow {
	if len(records) < 2 {
		return nil
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = NormalizeHeader(name)
	}

	rows := make([]CameraRow, 0, len(records)-1)
	for _, record := range records[1:] {
		fields := make(map[string]string, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if i < len(record) {
				fields[key] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, CameraRowFromFields(fields))
	}
	return rows
}

// SyncSummary reports a reconcile batch outcome. Per-row failures are
// counted, never raised.
type SyncSummary struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}
