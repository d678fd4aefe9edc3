package transport

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/grovetools/dashboard/errors"
	"github.com/grovetools/dashboard/pkg/models"
)

// maxPages bounds ListAll against servers that never stop paginating.
const maxPages = 100

// Resource is the REST surface for one collection kind.
type Resource[T models.Item] interface {
	Kind() string
	List(ctx context.Context, scope models.Scope, filters models.Filters) (*models.Page[T], error)
	Create(ctx context.Context, scope models.Scope, item T) (T, error)
	Update(ctx context.Context, scope models.Scope, item T) (T, error)
	Delete(ctx context.Context, scope models.Scope, id string) error
}

// PathFunc maps a scope to the collection path.
type PathFunc func(scope models.Scope) (string, error)

type httpResource[T models.Item] struct {
	kind   string
	client *Client
	path   PathFunc
}

// NewResource binds kind to the collection at path.
func NewResource[T models.Item](client *Client, kind string, path PathFunc) Resource[T] {
	return &httpResource[T]{kind: kind, client: client, path: path}
}

// Projects is the global project collection.
func Projects(client *Client) Resource[models.Project] {
	return NewResource[models.Project](client, models.KindProjects, func(models.Scope) (string, error) {
		return "/api/projects", nil
	})
}

// ProductVersions is the per-project product version collection. It
// requires a non-null scope.
func ProductVersions(client *Client) Resource[models.ProductVersion] {
	return NewResource[models.ProductVersion](client, models.KindProductVersions, ProjectScopedPath("product-versions"))
}

// ProjectScopedPath returns a PathFunc for /api/projects/{scope}/{sub}.
func ProjectScopedPath(sub string) PathFunc {
	return func(scope models.Scope) (string, error) {
		if scope.IsNull() {
			return "", errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("%s requires a project scope", sub))
		}
		return fmt.Sprintf("/api/projects/%s/%s", url.PathEscape(scope.String()), sub), nil
	}
}

func (r *httpResource[T]) Kind() string { return r.kind }

func (r *httpResource[T]) List(ctx context.Context, scope models.Scope, filters models.Filters) (*models.Page[T], error) {
	path, err := r.path(scope)
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	for k, v := range filters {
		query.Set(k, v)
	}

	var raw json.RawMessage
	if err := r.client.Do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, r.wrap(scope, err)
	}
	page, err := decodePage[T](raw)
	if err != nil {
		return nil, r.wrap(scope, err)
	}
	return page, nil
}

func (r *httpResource[T]) Create(ctx context.Context, scope models.Scope, item T) (T, error) {
	var out T
	path, err := r.path(scope)
	if err != nil {
		return out, err
	}
	if err := r.client.Do(ctx, http.MethodPost, path, nil, item, &out); err != nil {
		return out, r.wrap(scope, err)
	}
	return out, nil
}

func (r *httpResource[T]) Update(ctx context.Context, scope models.Scope, item T) (T, error) {
	var out T
	path, err := r.path(scope)
	if err != nil {
		return out, err
	}
	if item.GetID() == "" {
		return out, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("cannot update %s without an id", r.kind))
	}
	if err := r.client.Do(ctx, http.MethodPut, path+"/"+url.PathEscape(item.GetID()), nil, item, &out); err != nil {
		return out, r.wrap(scope, err)
	}
	return out, nil
}

func (r *httpResource[T]) Delete(ctx context.Context, scope models.Scope, id string) error {
	path, err := r.path(scope)
	if err != nil {
		return err
	}
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("cannot delete %s without an id", r.kind))
	}
	if err := r.client.Do(ctx, http.MethodDelete, path+"/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return r.wrap(scope, err)
	}
	return nil
}

func (r *httpResource[T]) wrap(scope models.Scope, err error) error {
	status := 0
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		status = httpErr.Status
	}
	return errors.TransportFailed(r.kind, scope.String(), status, err)
}

// decodePage accepts either a page envelope or a bare JSON array.
func decodePage[T any](raw json.RawMessage) (*models.Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &models.Page[T]{Items: []T{}, Page: 1}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode collection: %w", err)
		}
		return &models.Page[T]{Items: items, Total: len(items), Page: 1, PageSize: len(items)}, nil
	}
	var page models.Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return &page, nil
}

// ListAll follows pagination and returns every item.
func ListAll[T models.Item](ctx context.Context, r Resource[T], scope models.Scope, filters models.Filters) ([]T, error) {
	if err := filters.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid filters").
			WithDetail("kind", r.Kind())
	}
	q := filters.Clone()
	if q == nil {
		q = models.Filters{}
	}
	all := make([]T, 0)
	for n := 1; n <= maxPages; n++ {
		if n > 1 {
			q[models.PageParam] = strconv.Itoa(n)
		}
		page, err := r.List(ctx, scope, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if !page.HasNext {
			return all, nil
		}
	}
	return nil, errors.TransportFailed(r.Kind(), scope.String(), 0,
		fmt.Errorf("pagination exceeded %d pages", maxPages))
}

// Fetcher adapts a resource to the loader's fetch signature.
func Fetcher[T models.Item](r Resource[T]) func(ctx context.Context, scope models.Scope, filters models.Filters) ([]T, error) {
	return func(ctx context.Context, scope models.Scope, filters models.Filters) ([]T, error) {
		return ListAll(ctx, r, scope, filters)
	}
}
