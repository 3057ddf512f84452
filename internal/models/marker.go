package models

import "time"

// Marker represents a geotagged resource location with per-category scores
type Marker struct {
	ID        string  `json:"id" db:"id"`
	Dataset   string  `json:"dataset" db:"dataset"`
	Name      string  `json:"name" db:"name"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`

	// Contact details
	Address              string `json:"address" db:"address"`
	Website              string `json:"website" db:"website"`
	Phone                string `json:"phone" db:"phone"`
	WheelchairAccessible bool   `json:"wheelchairAccessible" db:"wheelchair_accessible"`

	// Opening information keyed by weekday
	IsLocationOpen map[string]bool   `json:"isLocationOpen" db:"is_location_open"`
	OpenHours      map[string]string `json:"openHours" db:"open_hours"`

	// Scores maps category -> subcategory -> value.
	// Categories maps category -> subcategory -> "counts for this marker".
	Scores     map[string]map[string]float64 `json:"scores" db:"scores"`
	Categories map[string]map[string]bool    `json:"categories" db:"categories"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// MarkerInput is the body accepted when creating or updating a marker.
// Pointer fields distinguish "absent" from the zero value.
type MarkerInput struct {
	Name                 *string                       `json:"name"`
	Latitude             *float64                      `json:"latitude"`
	Longitude            *float64                      `json:"longitude"`
	Address              *string                       `json:"address"`
	Website              *string                       `json:"website"`
	Phone                *string                       `json:"phone"`
	WheelchairAccessible *bool                         `json:"wheelchairAccessible"`
	IsLocationOpen       map[string]bool               `json:"isLocationOpen"`
	OpenHours            map[string]string             `json:"openHours"`
	Scores               map[string]map[string]float64 `json:"scores"`
	Categories           map[string]map[string]bool    `json:"categories"`
}
