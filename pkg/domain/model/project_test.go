package model_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
)

func validProject() *model.Project {
	return &model.Project{
		ID:           types.NewProjectID(),
		Name:         "Telemetry Pipeline",
		Description:  "Streaming ingestion of device telemetry",
		Status:       "active",
		Technologies: []string{"Go", "Kafka"},
		StartDate:    "2024-01",
	}
}

func TestProjectValidate(t *testing.T) {
	gt.NoError(t, validProject().Validate())

	cases := map[string]func(p *model.Project){
		"missing name":        func(p *model.Project) { p.Name = "" },
		"missing description": func(p *model.Project) { p.Description = "" },
		"missing status":      func(p *model.Project) { p.Status = "" },
		"missing start date":  func(p *model.Project) { p.StartDate = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := validProject()
			mutate(p)
			err := p.Validate()
			gt.Error(t, err)
			gt.Value(t, errors.Is(err, types.ErrValidation)).Equal(true)
		})
	}
}

func TestProjectClone(t *testing.T) {
	p := validProject()
	copied := p.Clone()

	copied.Name = "changed"
	copied.Technologies[0] = "Rust"

	gt.Value(t, p.Name).Equal("Telemetry Pipeline")
	gt.Value(t, p.Technologies[0]).Equal("Go")
}

func TestProjectRender(t *testing.T) {
	p := validProject()
	p.EndDate = "2024-06"
	p.RepoURL = "https://example.com/repo"
	p.Notes = "shipped to production"

	rendered := p.Render()
	gt.Value(t, strings.Contains(rendered, "Project: Telemetry Pipeline\n")).Equal(true)
	gt.Value(t, strings.Contains(rendered, "Technologies: Go, Kafka\n")).Equal(true)
	gt.Value(t, strings.Contains(rendered, "End Date: 2024-06\n")).Equal(true)
	gt.Value(t, strings.Contains(rendered, "Repository URL: https://example.com/repo\n")).Equal(true)
	gt.Value(t, strings.Contains(rendered, "Notes: shipped to production\n")).Equal(true)
}

func TestProjectRenderPlaceholders(t *testing.T) {
	rendered := validProject().Render()
	gt.Value(t, strings.Contains(rendered, "End Date: Ongoing\n")).Equal(true)
	gt.Value(t, strings.Contains(rendered, "Repository URL: N/A\n")).Equal(true)
	gt.Value(t, strings.Contains(rendered, "Notes: N/A\n")).Equal(true)
}

func TestProjectRenderMetadata(t *testing.T) {
	p := validProject()
	metadata := p.RenderMetadata()

	gt.Value(t, metadata[model.MetaSource]).Equal(model.SourceProject)
	gt.Value(t, metadata[model.MetaProjectID]).Equal(string(p.ID))
	gt.Value(t, metadata[model.MetaProjectName]).Equal(p.Name)
	gt.Value(t, metadata[model.MetaProjectStatus]).Equal(p.Status)
}

func TestPersonaValidate(t *testing.T) {
	gt.NoError(t, model.DefaultPersona().Validate())

	p := model.Persona{Description: "only a description"}
	err := p.Validate()
	gt.Error(t, err)
	gt.Value(t, errors.Is(err, types.ErrValidation)).Equal(true)
}
