// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

// Package query builds parameterized SQL WHERE clauses for the database
// package so filter composition stays in one place.
package query

import "strings"

// WhereBuilder accumulates conjunctive predicates with their bind arguments.
//
//	wb := query.NewWhereBuilder()
//	wb.AddStatus("Active").AddBBox(&bbox)
//	clause, args := wb.Build()
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder returns an empty builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// AddClause appends a raw predicate fragment with its bind arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddBBox appends a spatial containment predicate for the camera geometry.
// bbox is minLon, minLat, maxLon, maxLat; ST_Intersects keeps points on the
// rectangle boundary. A nil bbox is skipped.
func (wb *WhereBuilder) AddBBox(bbox *[4]float64) *WhereBuilder {
	if bbox == nil {
		return wb
	}
	return wb.AddClause("ST_Intersects(geom, ST_MakeEnvelope(?, ?, ?, ?))",
		bbox[0], bbox[1], bbox[2], bbox[3])
}

// AddStatus appends a status equality predicate. Empty is skipped.
func (wb *WhereBuilder) AddStatus(status string) *WhereBuilder {
	if status == "" {
		return wb
	}
	return wb.AddClause("status = ?", status)
}

// AddCameraType appends a camera type equality predicate. Empty is skipped.
func (wb *WhereBuilder) AddCameraType(cameraType string) *WhereBuilder {
	if cameraType == "" {
		return wb
	}
	return wb.AddClause("camera_type = ?", cameraType)
}

// Build joins the predicates with AND. Returns ("1=1", nil) when empty so
// callers can splice the result unconditionally.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix is Build with a leading "WHERE ".
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	clause, args := wb.Build()
	return "WHERE " + clause, args
}

// IsEmpty reports whether any predicate has been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
