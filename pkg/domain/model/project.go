package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Project is a canonical project record. The canonical copy lives in
// the project repository; a textual rendering of it is additionally
// ingested into the vector index tagged source=project so retrieval
// reflects the record.
type Project struct {
	ID           types.ProjectID `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Status       string          `json:"status"`
	Technologies []string        `json:"technologies"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date,omitempty"`
	RepoURL      string          `json:"repo_url,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Validate checks required fields of the project record
func (p *Project) Validate() error {
	if p.Name == "" {
		return goerr.Wrap(types.ErrValidation, "project name is required")
	}
	if p.Description == "" {
		return goerr.Wrap(types.ErrValidation, "project description is required")
	}
	if p.Status == "" {
		return goerr.Wrap(types.ErrValidation, "project status is required")
	}
	if p.StartDate == "" {
		return goerr.Wrap(types.ErrValidation, "project start date is required")
	}
	return nil
}

// Clone returns a deep copy of the project record
func (p *Project) Clone() *Project {
	copied := *p
	if p.Technologies != nil {
		copied.Technologies = make([]string, len(p.Technologies))
		copy(copied.Technologies, p.Technologies)
	}
	return &copied
}

// Render produces the textual rendering ingested into the vector
// index. Optional fields fall back to placeholder values so the
// rendering stays stable in shape.
func (p *Project) Render() string {
	endDate := p.EndDate
	if endDate == "" {
		endDate = "Ongoing"
	}
	repoURL := p.RepoURL
	if repoURL == "" {
		repoURL = "N/A"
	}
	notes := p.Notes
	if notes == "" {
		notes = "N/A"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Project: %s\n", p.Name)
	fmt.Fprintf(&sb, "ID: %s\n", p.ID)
	fmt.Fprintf(&sb, "Description: %s\n", p.Description)
	fmt.Fprintf(&sb, "Status: %s\n", p.Status)
	fmt.Fprintf(&sb, "Technologies: %s\n", strings.Join(p.Technologies, ", "))
	fmt.Fprintf(&sb, "Start Date: %s\n", p.StartDate)
	fmt.Fprintf(&sb, "End Date: %s\n", endDate)
	fmt.Fprintf(&sb, "Repository URL: %s\n", repoURL)
	fmt.Fprintf(&sb, "Notes: %s\n", notes)
	return sb.String()
}

// RenderMetadata returns the metadata attached to every chunk of the
// project rendering.
func (p *Project) RenderMetadata() map[string]any {
	return map[string]any{
		MetaSource:        SourceProject,
		MetaProjectID:     string(p.ID),
		MetaProjectName:   p.Name,
		MetaProjectStatus: p.Status,
	}
}
