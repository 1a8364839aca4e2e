// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package models

// FeatureCollection is an RFC 7946 GeoJSON feature collection. Each camera
// becomes one point feature with [longitude, latitude] coordinates.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string           `json:"type"`
	Geometry   PointGeometry    `json:"geometry"`
	Properties CameraProperties `json:"properties"`
}

// PointGeometry is a GeoJSON point. Coordinates are [longitude, latitude].
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// CameraProperties are the attributes attached to a camera feature.
type CameraProperties struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	CameraType  string  `json:"camera_type"`
	Description string  `json:"description"`
	Direction   float64 `json:"direction"`
	FieldOfView float64 `json:"field_of_view"`
}

// NewFeatureCollection builds a FeatureCollection from cameras. The features
// slice is always non-nil so an empty result serializes as [] rather than
// null.
func NewFeatureCollection(cameras []Camera) FeatureCollection {
	features := make([]Feature, 0, len(cameras))
	for _, cam := range cameras {
		features = append(features, Feature{
			Type: "Feature",
			Geometry: PointGeometry{
				Type:        "Point",
				Coordinates: [2]float64{cam.Longitude, cam.Latitude},
			},
			Properties: CameraProperties{
				ID:          cam.ID,
				Name:        cam.Name,
				Status:      cam.Status,
				CameraType:  cam.CameraType,
				Description: cam.Description,
				Direction:   cam.Direction,
				FieldOfView: cam.FieldOfView,
			},
		})
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
