package models

import "time"

// Resource kinds known to the dashboard.
const (
	KindProjects        = "projects"
	KindProductVersions = "product-versions"
)

// Project is a top-level dashboard project. Its ID is the scope for
// per-project resources.
type Project struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Timestamps  `yaml:",inline"`
}

// GetID implements Item.
func (p Project) GetID() string { return p.ID }

// ProductVersion is a released version of a project's product.
type ProductVersion struct {
	ID         string     `json:"id" yaml:"id"`
	ProjectID  string     `json:"project_id" yaml:"project_id"`
	Name       string     `json:"name" yaml:"name"`
	Version    string     `json:"version" yaml:"version"`
	ReleasedAt *time.Time `json:"released_at,omitempty" yaml:"released_at,omitempty"`
}

// GetID implements Item.
func (v ProductVersion) GetID() string { return v.ID }
