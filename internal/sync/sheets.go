// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/opticus-project/opticus/internal/config"
	"github.com/opticus-project/opticus/internal/models"
)

// firstDataRowIndex is the spreadsheet row number of the first data row.
// Row 1 is the header, so data starts at 2; synthesized row ids use this
// numbering so they line up with what users see in the spreadsheet UI.
const firstDataRowIndex = 2

// SheetsClient fetches camera rows from the Google Sheets v4 values API.
// It satisfies RowSource. A token-bucket limiter throttles outbound calls.
type SheetsClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	token      string
	readRange  string
}

// sheetsDefaultTimeout is applied when configuration leaves Timeout zero.
const sheetsDefaultTimeout = 30 * time.Second

// NewSheetsClient builds a Sheets row source from configuration.
func NewSheetsClient(cfg config.SheetsConfig) *SheetsClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = sheetsDefaultTimeout
	}
	return &SheetsClient{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.AccessToken,
		readRange:  cfg.Range,
	}
}

// valuesResponse is the subset of the Sheets values API response we read.
type valuesResponse struct {
	Values [][]string `json:"values"`
}

// Fetch reads the configured range of the given spreadsheet and maps each
// data row to a CameraRow. The first row is treated as the header; header
// names become field keys lower-cased with spaces replaced by underscores.
// Each data row gets a synthesized external row id "<spreadsheetID>_<row>".
func (c *SheetsClient) Fetch(ctx context.Context, spreadsheetID string) ([]models.CameraRow, error) {
	if c.token == "" {
		return nil, fmt.Errorf("sheets: no access token configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("sheets: rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.baseURL,
		url.PathEscape(spreadsheetID),
		url.PathEscape(c.readRange),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("sheets: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: fetch %s: %w", spreadsheetID, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()              //nolint:errcheck
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheets: fetch %s: unexpected status %d", spreadsheetID, resp.StatusCode)
	}

	var payload valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("sheets: decode response: %w", err)
	}

	return rowsFromValues(spreadsheetID, payload.Values), nil
}

// rowsFromValues converts a header row plus data rows into CameraRows.
// Row identity is positional: the synthesized ExternalRowID overrides any
// id column in the sheet, matching how the sheet itself numbers rows.
func rowsFromValues(spreadsheetID string, values [][]string) []models.CameraRow {
	rows := models.CameraRowsFromTable(values)
	for i := range rows {
		rows[i].ExternalRowID = fmt.Sprintf("%s_%d", spreadsheetID, firstDataRowIndex+i)
	}
	return rows
}
