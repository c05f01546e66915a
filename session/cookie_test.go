package session

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

const fakeJWT = "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.c2ln"

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		cookies []*http.Cookie
		want    string
	}{
		{
			name:    "raw jwt",
			cookies: []*http.Cookie{{Name: "sb-access-token", Value: fakeJWT}},
			want:    fakeJWT,
		},
		{
			name:    "json session object",
			cookies: []*http.Cookie{{Name: "sb-access-token", Value: url.QueryEscape(`{"access_token":"` + fakeJWT + `","refresh_token":"r"}`)}},
			want:    fakeJWT,
		},
		{
			name:    "json array",
			cookies: []*http.Cookie{{Name: "sb-access-token", Value: url.QueryEscape(`["` + fakeJWT + `","refresh",null]`)}},
			want:    fakeJWT,
		},
		{
			name: "base64 prefixed session",
			cookies: []*http.Cookie{{
				Name:  "sb-access-token",
				Value: "base64-" + base64.RawURLEncoding.EncodeToString([]byte(`{"access_token":"`+fakeJWT+`"}`)),
			}},
			want: fakeJWT,
		},
		{
			name: "chunked cookies",
			cookies: []*http.Cookie{
				{Name: "sb-access-token.0", Value: fakeJWT[:10]},
				{Name: "sb-access-token.1", Value: fakeJWT[10:]},
			},
			want: fakeJWT,
		},
		{
			name:    "missing cookie",
			cookies: []*http.Cookie{{Name: "other", Value: fakeJWT}},
			want:    "",
		},
		{
			name:    "garbage value",
			cookies: []*http.Cookie{{Name: "sb-access-token", Value: "not-a-token"}},
			want:    "",
		},
		{
			name:    "broken json",
			cookies: []*http.Cookie{{Name: "sb-access-token", Value: url.QueryEscape(`{"access_token":`)}},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			for _, c := range tt.cookies {
				req.AddCookie(c)
			}
			assert.Equal(t, tt.want, TokenFromRequest(req, "sb-access-token"))
		})
	}
}
