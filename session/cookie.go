package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const base64Prefix = "base64-"

// maxCookieChunks bounds how many "<name>.N" chunk cookies are stitched together
const maxCookieChunks = 16

// TokenFromRequest extracts the access token from the auth cookie named name.
// Large sessions may be split across "<name>.0", "<name>.1", ... cookies.
// Returns "" when no usable token is present.
func TokenFromRequest(r *http.Request, name string) string {
	raw := cookieValue(r, name)
	if raw == "" {
		return ""
	}
	return decodeToken(raw)
}

func cookieValue(r *http.Request, name string) string {
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		return c.Value
	}

	var b strings.Builder
	for i := 0; i < maxCookieChunks; i++ {
		c, err := r.Cookie(name + "." + strconv.Itoa(i))
		if err != nil {
			break
		}
		b.WriteString(c.Value)
	}
	return b.String()
}

// decodeToken accepts a raw JWT, a JSON session object with "access_token",
// or a JSON array whose first element is the access token. Any of those may be
// URL-escaped or carry the "base64-" prefix.
func decodeToken(raw string) string {
	v := strings.TrimSpace(raw)

	if strings.HasPrefix(v, base64Prefix) {
		payload := strings.TrimPrefix(v, base64Prefix)
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			decoded, err = base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return ""
			}
		}
		v = string(decoded)
	}

	if !strings.HasPrefix(v, "{") && !strings.HasPrefix(v, "[") {
		if unescaped, err := url.QueryUnescape(v); err == nil {
			v = unescaped
		}
	}

	switch {
	case strings.HasPrefix(v, "{"):
		var blob struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal([]byte(v), &blob); err != nil {
			return ""
		}
		return blob.AccessToken
	case strings.HasPrefix(v, "["):
		var parts []interface{}
		if err := json.Unmarshal([]byte(v), &parts); err != nil || len(parts) == 0 {
			return ""
		}
		token, _ := parts[0].(string)
		return token
	}

	if strings.Count(v, ".") != 2 {
		return ""
	}
	return v
}
