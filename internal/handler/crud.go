package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/directory-admin/internal/apiclient"
	"github.com/iliyamo/directory-admin/internal/listview"
	q "github.com/iliyamo/directory-admin/internal/queue"
)

// Validator is a record the console can check before creating it.
type Validator interface {
	Validate() error
}

// CRUD serves one upstream collection as a paginated table.  Every mutation
// is followed by a refetch and answered with the refreshed page.
type CRUD[T Validator] struct {
	*Console
	collection func(*apiclient.Client) *apiclient.Collection[T]
}

// NewCRUD binds a collection accessor such as (*apiclient.Client).Companies.
func NewCRUD[T Validator](con *Console, collection func(*apiclient.Client) *apiclient.Collection[T]) *CRUD[T] {
	return &CRUD[T]{Console: con, collection: collection}
}

// listFailure is a list answer for a fetch that failed.
type listFailure[T any] struct {
	listview.Snapshot[T]
	Error string `json:"error"`
}

func (h *CRUD[T]) open(c echo.Context) (*apiclient.Collection[T], *listview.List[T]) {
	col := h.collection(h.upstream(c))
	ctx := c.Request().Context()
	l := listview.New[T](col.List, h.pageSize(ctx, c), "Failed to load "+col.Plural())
	return col, l
}

// respond answers with the page requested through ?page.
func (h *CRUD[T]) respond(c echo.Context, status int, l *listview.List[T]) error {
	return c.JSON(status, l.Snapshot())
}

// loadFailed answers a failed fetch with the list's error state.
func (h *CRUD[T]) loadFailed(c echo.Context, l *listview.List[T], err error) error {
	if apiclient.IsUnauthorized(err) {
		return h.fail(c, err, l.Message())
	}
	return c.JSON(errStatus(err), listFailure[T]{Snapshot: l.Snapshot(), Error: l.Message()})
}

// List: GET /v1/<collection>?page=N
func (h *CRUD[T]) List(c echo.Context) error {
	_, l := h.open(c)
	if err := l.Load(c.Request().Context()); err != nil {
		return h.loadFailed(c, l, err)
	}
	l.SetPage(pageParam(c))
	return h.respond(c, http.StatusOK, l)
}

// Get: GET /v1/<collection>/:id
func (h *CRUD[T]) Get(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	col := h.collection(h.upstream(c))
	rec, err := col.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "Failed to load "+col.Label())
	}
	return c.JSON(http.StatusOK, rec)
}

// Create: POST /v1/<collection>.  The body is validated as a record and
// forwarded unchanged so fields the console does not model survive.
func (h *CRUD[T]) Create(c echo.Context) error {
	raw, err := readJSON(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := rec.Validate(); err != nil {
		return h.fail(c, err, "")
	}

	col, l := h.open(c)
	ctx := c.Request().Context()
	var created T
	err = l.Mutate(ctx, func(ctx context.Context) error {
		var err error
		created, err = col.Create(ctx, raw)
		return err
	})
	if err != nil {
		if l.State() == listview.StateFailed {
			// stored upstream, only the refetch failed
			return h.loadFailed(c, l, err)
		}
		return h.fail(c, err, "Failed to create "+col.Label())
	}
	h.record(c, q.ActionCreate, col.Label(), idOf(created))
	l.SetPage(pageParam(c))
	return h.respond(c, http.StatusCreated, l)
}

// Update: PATCH /v1/<collection>/:id with the changed fields only.
func (h *CRUD[T]) Update(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	raw, err := readJSON(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body must be an object"})
	}

	col, l := h.open(c)
	err = l.Mutate(c.Request().Context(), func(ctx context.Context) error {
		_, err := col.Update(ctx, id, raw)
		return err
	})
	if err != nil {
		if l.State() == listview.StateFailed {
			return h.loadFailed(c, l, err)
		}
		return h.fail(c, err, "Failed to update "+col.Label())
	}
	h.record(c, q.ActionUpdate, col.Label(), id.String())
	l.SetPage(pageParam(c))
	return h.respond(c, http.StatusOK, l)
}

// Delete: DELETE /v1/<collection>/:id?page=N.  The delete goes first and
// the list is refetched after it; removing the sole row of a later page
// steps back one page.  A failed delete answers the current page next to
// the error when it can still be fetched.
func (h *CRUD[T]) Delete(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	col, l := h.open(c)
	ctx := c.Request().Context()
	l.Seek(pageParam(c))

	err := l.Delete(ctx, func(ctx context.Context) error { return col.Delete(ctx, id) })
	if err != nil {
		if l.State() == listview.StateFailed {
			// deleted upstream, only the refetch failed
			h.record(c, q.ActionDelete, col.Label(), id.String())
			return h.loadFailed(c, l, err)
		}
		if apiclient.IsUnauthorized(err) {
			return h.fail(c, err, "")
		}
		text := errText(err, "Failed to delete "+col.Label())
		if l.Load(ctx) != nil {
			return c.JSON(errStatus(err), echo.Map{"error": text})
		}
		l.SetPage(pageParam(c))
		return c.JSON(errStatus(err), listFailure[T]{Snapshot: l.Snapshot(), Error: text})
	}
	h.record(c, q.ActionDelete, col.Label(), id.String())
	return h.respond(c, http.StatusOK, l)
}

var errInvalidBody = errors.New("invalid body")

func readJSON(c echo.Context) (json.RawMessage, error) {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, errInvalidBody
	}
	return raw, nil
}

// idOf pulls the id out of a created record, if the upstream returned one.
func idOf(rec any) string {
	b, err := json.Marshal(rec)
	if err != nil {
		return ""
	}
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if json.Unmarshal(b, &probe) != nil || len(probe.ID) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(probe.ID, &s) == nil {
		return s
	}
	return string(probe.ID)
}
