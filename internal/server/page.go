package server

import (
	"embed"
	"html/template"

	"github.com/jonathan/bio-generator/internal/catalog"
	"github.com/jonathan/bio-generator/internal/session"
	"github.com/jonathan/bio-generator/internal/types"
)

//go:embed templates/*.html
var templateFiles embed.FS

func parsePageTemplate() (*template.Template, error) {
	return template.ParseFS(templateFiles, "templates/index.html")
}

// pageData is the view model for templates/index.html.
type pageData struct {
	State        session.State
	Countries    []catalog.Country
	Vibes        []types.Vibe
	PickLocation string
	Generated    int64
	Violations   []types.Violation
}

func newPageData(state session.State, generated int64, violations []types.Violation) pageData {
	return pageData{
		State:        state,
		Countries:    catalog.Countries(),
		Vibes:        catalog.Vibes(),
		PickLocation: types.PickLocation,
		Generated:    generated,
		Violations:   violations,
	}
}
