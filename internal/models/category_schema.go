package models

import "time"

// CategorySchema is the ordered category registry of a project/dataset
type CategorySchema struct {
	ProjectName string     `json:"projectName" db:"project_name"`
	Categories  []Category `json:"categories" db:"categories"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Category is one top-level resource type and its subcategories
type Category struct {
	CategoryName  string   `json:"categoryName"`
	Subcategories []string `json:"subcategories,omitempty"`
}

// Names returns the category names in schema order
func (s CategorySchema) Names() []string {
	names := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		names[i] = c.CategoryName
	}
	return names
}

// SelectorOption is one entry of the category selector list
type SelectorOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
