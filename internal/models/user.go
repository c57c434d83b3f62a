package models

// CurrentUser is the identity resolved by the session gate for one request.
// It is passed explicitly to whatever needs it, never looked up globally.
type CurrentUser struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Email string            `json:"email"`
	Phone string            `json:"phone,omitempty"`
	Prefs map[string]string `json:"prefs,omitempty"`
}

// Pref returns a preference value or "" when unset.
func (u CurrentUser) Pref(key string) string {
	if u.Prefs == nil {
		return ""
	}
	return u.Prefs[key]
}
