package models

import (
	"time"
)

// Spec represents an uploaded OpenAPI specification under analysis
type Spec struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Description string      `json:"description"`
	Content     string      `json:"content"` // Raw OpenAPI spec (YAML or JSON)
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Operations  []Operation `json:"operations,omitempty"`
}

// SpecInput represents input for uploading a spec
type SpecInput struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	Description string `json:"description"`
}
