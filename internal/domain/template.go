package domain

import (
	"time"

	"github.com/lib/pq"
)

// EmailTemplate is owned by the template-management surface; the pipeline
// only reads it.
type EmailTemplate struct {
	Type          string         `json:"type" db:"type"`
	Subject       string         `json:"subject" db:"subject"`
	HTMLContent   string         `json:"html_content" db:"html_content"`
	TextContent   string         `json:"text_content" db:"text_content"`
	AvailableVars pq.StringArray `json:"available_vars" db:"available_vars"`
	IsActive      bool           `json:"is_active" db:"is_active"`
	Version       int            `json:"version" db:"version"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

type RenderedEmail struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}
