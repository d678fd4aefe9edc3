// Package testutil holds helpers shared by the dashboard's tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/grovetools/dashboard/pkg/models"
	"github.com/sirupsen/logrus"
)

// APIServer is an in-process dashboard API. Projects are served as a
// bare array and product versions as a page, matching both response
// shapes the transport accepts.
type APIServer struct {
	*httptest.Server

	ProjectCalls atomic.Int32
	VersionCalls atomic.Int32

	projects []models.Project
}

// DefaultProjects is what NewAPIServer serves when no projects are given.
var DefaultProjects = []models.Project{
	{ID: "p1", Name: "One"},
	{ID: "p2", Name: "Two"},
}

// NewAPIServer starts an API serving projects and one product version per
// project. The server is closed when the test ends.
func NewAPIServer(t *testing.T, projects ...models.Project) *APIServer {
	t.Helper()
	if len(projects) == 0 {
		projects = DefaultProjects
	}
	s := &APIServer{projects: projects}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		s.ProjectCalls.Add(1)
		writeJSON(t, w, s.projects)
	})
	mux.HandleFunc("GET /api/projects/{id}/product-versions", func(w http.ResponseWriter, r *http.Request) {
		s.VersionCalls.Add(1)
		writeJSON(t, w, map[string]any{"items": VersionsFor(r.PathValue("id"))})
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// VersionsFor returns the versions the API serves for project id.
func VersionsFor(id string) []models.ProductVersion {
	return []models.ProductVersion{{ID: id + "-v1", ProjectID: id, Name: "release", Version: "1.0.0"}}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
