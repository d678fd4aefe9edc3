package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/dashboard/errors"
	"github.com/grovetools/dashboard/pkg/models"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, "tok", 2*time.Second, WithClientLogger(quietLogger()))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	_, err := NewClient("", "", time.Second)
	assert.Error(t, err)
	_, err = NewClient("ftp://example.com", "", time.Second)
	assert.Error(t, err)
}

func TestProjectsListBareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/projects", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		writeJSON(w, http.StatusOK, []models.Project{{ID: "p1", Name: "One"}, {ID: "p2", Name: "Two"}})
	})

	page, err := Projects(c).List(context.Background(), models.NoScope, models.Filters{"status": "active"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "p2", page.Items[1].ID)
	assert.Equal(t, 2, page.Total)
}

func TestProductVersionsScopedPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/p%201/product-versions", r.URL.EscapedPath())
		writeJSON(w, http.StatusOK, models.Page[models.ProductVersion]{
			Items: []models.ProductVersion{{ID: "v1", ProjectID: "p 1"}},
			Total: 1,
		})
	})

	page, err := ProductVersions(c).List(context.Background(), "p 1", nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "v1", page.Items[0].ID)
}

func TestProductVersionsRequireScope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})
	_, err := ProductVersions(c).List(context.Background(), models.NoScope, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestErrorResponsesBecomeTransportFailures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "not allowed"})
	})

	_, err := Projects(c).List(context.Background(), models.NoScope, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeTransportFailed))

	dashErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, dashErr.Details["status"])
	assert.Contains(t, err.Error(), "not allowed")
}

func TestPlainTextErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	_, err := Projects(c).List(context.Background(), models.NoScope, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestCreateUpdateDelete(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPost:
			var in models.ProductVersion
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			in.ID = "v9"
			writeJSON(w, http.StatusCreated, in)
		case http.MethodPut:
			var in models.ProductVersion
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			writeJSON(w, http.StatusOK, in)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	res := ProductVersions(c)
	ctx := context.Background()

	created, err := res.Create(ctx, "p1", models.ProductVersion{Name: "GA", Version: "1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "v9", created.ID)

	created.Version = "1.0.1"
	updated, err := res.Update(ctx, "p1", created)
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", updated.Version)

	require.NoError(t, res.Delete(ctx, "p1", "v9"))

	assert.Equal(t, []string{
		"POST /api/projects/p1/product-versions",
		"PUT /api/projects/p1/product-versions/v9",
		"DELETE /api/projects/p1/product-versions/v9",
	}, seen)

	_, err = res.Update(ctx, "p1", models.ProductVersion{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.True(t, errors.Is(res.Delete(ctx, "p1", ""), errors.ErrCodeInvalidInput))
}

func TestListAllFollowsPages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			writeJSON(w, http.StatusOK, models.Page[models.Project]{
				Items: []models.Project{{ID: "p1"}}, Page: 1, HasNext: true,
			})
		case "2":
			writeJSON(w, http.StatusOK, models.Page[models.Project]{
				Items: []models.Project{{ID: "p2"}}, Page: 2, HasPrev: true,
			})
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	items, err := Fetcher(Projects(c))(context.Background(), models.NoScope, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p2", items[1].ID)
}

func TestListAllRejectsPageFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := ListAll(context.Background(), Projects(c), models.NoScope, models.Filters{models.PageParam: "3"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, http.StatusOK, []models.Project{})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "", 20*time.Millisecond, WithClientLogger(quietLogger()))
	require.NoError(t, err)
	_, err = Projects(c).List(context.Background(), models.NoScope, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeTransportFailed))
}
