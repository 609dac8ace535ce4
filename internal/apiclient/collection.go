package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iliyamo/directory-admin/internal/envelope"
	"github.com/iliyamo/directory-admin/internal/model"
)

// Collection is one upstream REST collection such as /company or /coupon.
type Collection[T any] struct {
	c      *Client
	path   string // "/company"
	plural string // envelope property name, "companies"
	label  string // singular noun used in fallback messages, "company"
}

// NewCollection binds a collection path to c.
func NewCollection[T any](c *Client, path, plural, label string) *Collection[T] {
	return &Collection[T]{c: c, path: path, plural: plural, label: label}
}

// Label is the singular noun of the collection.
func (col *Collection[T]) Label() string { return col.label }

// Plural is the envelope property name of the collection.
func (col *Collection[T]) Plural() string { return col.plural }

// List fetches the whole collection.
func (col *Collection[T]) List(ctx context.Context) ([]T, error) {
	body, err := col.c.do(ctx, http.MethodGet, col.path, nil, "Failed to load "+col.plural)
	if err != nil {
		return []T{}, err
	}
	items, _, err := envelope.DecodeList[T](body, col.plural)
	return items, err
}

// Get fetches a single record.
func (col *Collection[T]) Get(ctx context.Context, id model.ID) (T, error) {
	var zero T
	body, err := col.c.do(ctx, http.MethodGet, col.itemPath(id), nil, "Failed to load "+col.label)
	if err != nil {
		return zero, err
	}
	return envelope.DecodeOne[T](body)
}

// Create posts a new record and returns what the upstream stored.
func (col *Collection[T]) Create(ctx context.Context, in any) (T, error) {
	body, err := col.c.do(ctx, http.MethodPost, col.path, in, "Failed to create "+col.label)
	return decodeOptional[T](body, err)
}

// Update patches a record with the given fields.
func (col *Collection[T]) Update(ctx context.Context, id model.ID, in any) (T, error) {
	body, err := col.c.do(ctx, http.MethodPatch, col.itemPath(id), in, "Failed to update "+col.label)
	return decodeOptional[T](body, err)
}

// Delete removes a record. 204 and empty answers are success.
func (col *Collection[T]) Delete(ctx context.Context, id model.ID) error {
	_, err := col.c.do(ctx, http.MethodDelete, col.itemPath(id), nil, "Failed to delete "+col.label)
	return err
}

func (col *Collection[T]) itemPath(id model.ID) string {
	return col.path + "/" + url.PathEscape(id.String())
}

// decodeOptional decodes a mutation answer; mutations that return no body
// yield the zero record.
func decodeOptional[T any](body []byte, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if len(body) == 0 {
		return zero, nil
	}
	return envelope.DecodeOne[T](body)
}

// Companies is the /company collection.
func (c *Client) Companies() *Collection[model.Company] {
	return NewCollection[model.Company](c, "/company", "companies", "company")
}

// Categories is the /categories collection of company categories.
func (c *Client) Categories() *Collection[model.Category] {
	return NewCollection[model.Category](c, "/categories", "categories", "category")
}

// ResourceCategories is the /resource-categories collection.
func (c *Client) ResourceCategories() *Collection[model.Category] {
	return NewCollection[model.Category](c, "/resource-categories", "resourceCategories", "resource category")
}

// Resources is the /resource collection.
func (c *Client) Resources() *Collection[model.Resource] {
	return NewCollection[model.Resource](c, "/resource", "resources", "resource")
}

// Floors is the /floor collection.
func (c *Client) Floors() *Collection[model.Floor] {
	return NewCollection[model.Floor](c, "/floor", "floors", "floor")
}

// Places is the /place collection.
func (c *Client) Places() *Collection[model.Place] {
	return NewCollection[model.Place](c, "/place", "places", "place")
}

// Coupons is the /coupon collection.
func (c *Client) Coupons() *Collection[model.Coupon] {
	return NewCollection[model.Coupon](c, "/coupon", "coupons", "coupon")
}

// Users is the /user collection.
func (c *Client) Users() *Collection[model.User] {
	return NewCollection[model.User](c, "/user", "users", "user")
}
