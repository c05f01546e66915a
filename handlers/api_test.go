package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/studio-dashboard/access"
	"github.com/upb/studio-dashboard/models"
	"github.com/upb/studio-dashboard/services"
	"github.com/upb/studio-dashboard/session"
	"github.com/upb/studio-dashboard/utils"
	"go.uber.org/zap"
)

func TestAPIHandler_HandleMe(t *testing.T) {
	h := NewAPIHandler(new(MockDesignRepository), access.DefaultPolicy(), zap.NewNop())

	t.Run("describes the session", func(t *testing.T) {
		s := &session.Session{
			Subject:   uuid.New(),
			Email:     "ed@example.com",
			Role:      session.RoleEditor,
			ExpiresAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		}

		w := httptest.NewRecorder()
		h.HandleMe(w, pageRequest("/api/v1/me", s, nil))
		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data MeResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, s.Subject.String(), body.Data.Subject)
		assert.Equal(t, "Editor", body.Data.Role)
		require.NotNil(t, body.Data.ExpiresAt)
		assert.True(t, s.ExpiresAt.Equal(*body.Data.ExpiresAt))
		assert.Equal(t, map[string]bool{
			access.RouteDashboard:    true,
			access.RouteDesignerFlow: false,
		}, body.Data.Access)
	})

	t.Run("no session is unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleMe(w, pageRequest("/api/v1/me", nil, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var resp utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestAPIHandler_ListDesigns(t *testing.T) {
	designer := &session.Session{Subject: uuid.New(), Role: session.RoleDesigner}
	admin := &session.Session{Subject: uuid.New(), Role: session.RoleAdmin}

	t.Run("designer is scoped to own designs", func(t *testing.T) {
		designs := new(MockDesignRepository)
		designs.On("List", mock.Anything, models.DesignFilter{OwnerID: &designer.Subject, Step: "upload", Limit: 10}).
			Return([]*models.Design{models.NewDesign(designer.Subject, "Poster", "upload")}, nil)
		h := NewAPIHandler(designs, access.DefaultPolicy(), zap.NewNop())

		w := httptest.NewRecorder()
		h.ListDesigns(w, pageRequest("/api/v1/designs?step=upload&limit=10", designer, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []models.Design `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, "Poster", body.Data[0].Name)
		designs.AssertExpectations(t)
	})

	t.Run("admin lists everything and gets an empty array", func(t *testing.T) {
		designs := new(MockDesignRepository)
		designs.On("List", mock.Anything, models.DesignFilter{}).Return(nil, nil)
		h := NewAPIHandler(designs, access.DefaultPolicy(), zap.NewNop())

		w := httptest.NewRecorder()
		h.ListDesigns(w, pageRequest("/api/v1/designs", admin, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	t.Run("invalid query is a field-level 400", func(t *testing.T) {
		tests := []struct {
			query string
			field string
			want  string
		}{
			{"step=Not%20A%20Slug", "step", "step must be a lowercase slug"},
			{"limit=1000", "limit", "limit must be at most 200"},
			{"limit=ten", "limit", "limit must be a number"},
			{"offset=-1", "offset", "offset must be at least 0"},
		}
		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				designs := new(MockDesignRepository)
				h := NewAPIHandler(designs, access.DefaultPolicy(), zap.NewNop())

				w := httptest.NewRecorder()
				h.ListDesigns(w, pageRequest("/api/v1/designs?"+tt.query, admin, nil))

				assert.Equal(t, http.StatusBadRequest, w.Code)
				resp := decodeError(t, w)
				assert.Equal(t, "Validation failed", resp.Message)
				assert.Equal(t, tt.want, resp.Details[tt.field])
				designs.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("repository failure is a 500 without internals", func(t *testing.T) {
		designs := new(MockDesignRepository)
		designs.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("pq: password=hunter2"))
		h := NewAPIHandler(designs, access.DefaultPolicy(), zap.NewNop())

		w := httptest.NewRecorder()
		h.ListDesigns(w, pageRequest("/api/v1/designs", admin, nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "hunter2")
	})
}

func TestAPIHandler_GetDesign(t *testing.T) {
	designer := &session.Session{Subject: uuid.New(), Role: session.RoleDesigner}
	admin := &session.Session{Subject: uuid.New(), Role: session.RoleAdmin}
	own := models.NewDesign(designer.Subject, "Poster", "upload")
	other := models.NewDesign(uuid.New(), "Flyer", "review")

	designs := new(MockDesignRepository)
	designs.On("GetByID", mock.Anything, own.ID).Return(own, nil)
	designs.On("GetByID", mock.Anything, other.ID).Return(other, nil)
	missing := uuid.New()
	designs.On("GetByID", mock.Anything, missing).Return(nil, services.ErrDesignNotFound.WithDetail("id", missing.String()))
	broken := uuid.New()
	designs.On("GetByID", mock.Anything, broken).Return(nil, errors.New("connection reset"))
	h := NewAPIHandler(designs, access.DefaultPolicy(), zap.NewNop())

	tests := []struct {
		name       string
		session    *session.Session
		id         string
		wantStatus int
		wantError  string
	}{
		{"designer reads own design", designer, own.ID.String(), http.StatusOK, ""},
		{"designer cannot read another's design", designer, other.ID.String(), http.StatusForbidden, "forbidden"},
		{"admin reads any design", admin, other.ID.String(), http.StatusOK, ""},
		{"unknown design", admin, missing.String(), http.StatusNotFound, "not_found"},
		{"malformed id", admin, "not-a-uuid", http.StatusBadRequest, "bad_request"},
		{"repository failure", admin, broken.String(), http.StatusInternalServerError, "internal_error"},
		{"no session", nil, own.ID.String(), http.StatusUnauthorized, "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.GetDesign(w, pageRequest("/api/v1/designs/"+tt.id, tt.session, map[string]string{"id": tt.id}))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, w).Error)
			}
		})
	}
}
