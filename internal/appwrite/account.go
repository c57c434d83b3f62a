package appwrite

import (
	"context"
	"fmt"
	"net/http"
)

// Account is the user object behind a session.
type Account struct {
	ID    string                 `json:"$id"`
	Name  string                 `json:"name"`
	Email string                 `json:"email"`
	Phone string                 `json:"phone"`
	Prefs map[string]interface{} `json:"prefs"`
}

// StringPrefs flattens preferences into strings.
func (a *Account) StringPrefs() map[string]string {
	prefs := make(map[string]string, len(a.Prefs))
	for k, v := range a.Prefs {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			prefs[k] = s
			continue
		}
		prefs[k] = fmt.Sprint(v)
	}
	return prefs
}

// Session is an email/password session. Secret is only populated when the
// session is created with an API key.
type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
	Expire string `json:"expire"`
}

// GetAccount returns the user owning the session.
func (c *Client) GetAccount(ctx context.Context, session string) (*Account, error) {
	var acc Account
	if err := c.doJSON(ctx, http.MethodGet, "/account", session, nil, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// CreateAccount registers a new user.
func (c *Client) CreateAccount(ctx context.Context, userID, email, password, name string) (*Account, error) {
	payload := map[string]string{
		"userId":   userID,
		"email":    email,
		"password": password,
		"name":     name,
	}
	var acc Account
	if err := c.doJSON(ctx, http.MethodPost, "/account", "", payload, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// CreateEmailSession logs a user in and returns the session, secret included.
func (c *Client) CreateEmailSession(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	var sess Session
	if err := c.doJSON(ctx, http.MethodPost, "/account/sessions/email", "", payload, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteCurrentSession logs the session out.
func (c *Client) DeleteCurrentSession(ctx context.Context, session string) error {
	return c.doJSON(ctx, http.MethodDelete, "/account/sessions/current", session, nil, nil)
}

// UpdatePrefs replaces the user's preferences.
func (c *Client) UpdatePrefs(ctx context.Context, session string, prefs map[string]string) (*Account, error) {
	payload := map[string]interface{}{"prefs": prefs}
	var acc Account
	if err := c.doJSON(ctx, http.MethodPatch, "/account/prefs", session, payload, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// UpdatePhone sets the phone number; Appwrite requires the password again.
func (c *Client) UpdatePhone(ctx context.Context, session, phone, password string) (*Account, error) {
	payload := map[string]string{
		"phone":    phone,
		"password": password,
	}
	var acc Account
	if err := c.doJSON(ctx, http.MethodPatch, "/account/phone", session, payload, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}
