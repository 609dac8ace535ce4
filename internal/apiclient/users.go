package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iliyamo/directory-admin/internal/model"
)

// ActivateUser re-enables a user account.
func (c *Client) ActivateUser(ctx context.Context, id model.ID) error {
	_, err := c.do(ctx, http.MethodPatch, "/user/"+url.PathEscape(id.String())+"/activate", nil, "Failed to activate user")
	return err
}

// DeactivateUser disables a user account.
func (c *Client) DeactivateUser(ctx context.Context, id model.ID) error {
	_, err := c.do(ctx, http.MethodPatch, "/user/"+url.PathEscape(id.String())+"/deactivate", nil, "Failed to deactivate user")
	return err
}
