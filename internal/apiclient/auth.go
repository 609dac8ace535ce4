package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/iliyamo/directory-admin/internal/envelope"
	"github.com/iliyamo/directory-admin/internal/model"
)

// Credentials is what a successful admin login yields.
type Credentials struct {
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
	User         model.User `json:"user"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPair struct {
	AccessToken       string `json:"access_token"`
	RefreshToken      string `json:"refresh_token"`
	AccessTokenCamel  string `json:"accessToken"`
	RefreshTokenCamel string `json:"refreshToken"`
}

func (p tokenPair) access() string {
	if p.AccessToken != "" {
		return p.AccessToken
	}
	return p.AccessTokenCamel
}

func (p tokenPair) refresh() string {
	if p.RefreshToken != "" {
		return p.RefreshToken
	}
	return p.RefreshTokenCamel
}

type loginBody struct {
	Tokens *tokenPair  `json:"tokens"`
	Data   *model.User `json:"data"`
	User   *model.User `json:"user"`
}

type loginResp struct {
	Data *loginBody `json:"data"`
	loginBody
}

// Login exchanges admin credentials for an access token, a refresh token
// and the admin's profile.
func (c *Client) Login(ctx context.Context, username, password string) (Credentials, error) {
	body, err := c.do(ctx, http.MethodPost, "/admin/login", loginReq{Username: username, Password: password}, "Login failed")
	if err != nil {
		return Credentials{}, err
	}
	return decodeCredentials(body)
}

func decodeCredentials(body []byte) (Credentials, error) {
	var resp loginResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return Credentials{}, fmt.Errorf("decode login response: %w", err)
	}
	parts := []*loginBody{resp.Data, &resp.loginBody}

	var creds Credentials
	for _, p := range parts {
		if p == nil {
			continue
		}
		if creds.Token == "" && p.Tokens != nil {
			creds.Token = p.Tokens.access()
			creds.RefreshToken = p.Tokens.refresh()
		}
		if creds.User.ID.IsZero() {
			switch {
			case p.Data != nil:
				creds.User = *p.Data
			case p.User != nil:
				creds.User = *p.User
			}
		}
	}
	if creds.Token == "" {
		return Credentials{}, &APIError{Status: http.StatusBadGateway, Message: "Login response did not contain an access token"}
	}
	return creds, nil
}

// Me returns the profile of the admin the token belongs to.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/user/me", nil, "Failed to load profile")
	if err != nil {
		return model.User{}, err
	}
	return envelope.DecodeOne[model.User](body)
}

// Health calls the upstream health probe.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, "Backend unavailable")
	return err
}
