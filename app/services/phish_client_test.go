package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jphish/campaign-service/app/dto"
	"github.com/jphish/campaign-service/config"
	"github.com/jphish/campaign-service/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.Handler) (ResourceProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	provider := NewHTTPResourceProvider(config.PhishServerConfig{APIDomain: srv.URL})
	return provider, srv
}

func TestHTTPResourceProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("GetUserGroup", func(t *testing.T) {
		provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/usergroup/7", r.URL.Path)
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			assert.Equal(t, utils.ClearanceClient, r.Header.Get("clearance"))

			json.NewEncoder(w).Encode(dto.UserGroup{
				ClientID:  5,
				GroupName: "Finance",
				Users: []dto.GroupUser{
					{ID: 11, Email: "alice@example.com"},
				},
			})
		}))

		group, err := provider.GetUserGroup(ctx, 7, "token-123", utils.ClearanceClient)
		require.NoError(t, err)
		require.NotNil(t, group)
		assert.Equal(t, uint(5), group.ClientID)
		assert.Equal(t, "Finance", group.GroupName)
		require.Len(t, group.Users, 1)
		assert.Equal(t, "alice@example.com", group.Users[0].Email)
	})

	t.Run("NotFoundIsNil", func(t *testing.T) {
		provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		group, err := provider.GetUserGroup(ctx, 7, "token", utils.ClearanceClient)
		require.NoError(t, err)
		assert.Nil(t, group)

		tmpl, err := provider.GetEmailTemplate(ctx, 7, "token", utils.ClearanceClient)
		require.NoError(t, err)
		assert.Nil(t, tmpl)

		profile, err := provider.GetSendingProfile(ctx, 7, "token", utils.ClearanceClient)
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("UnauthorizedStatus", func(t *testing.T) {
		provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := provider.GetUserGroup(ctx, 7, "token", utils.ClearanceClient)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("ServerError", func(t *testing.T) {
		provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := provider.GetUserGroup(ctx, 7, "token", utils.ClearanceClient)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("UpdateLandingPageURL", func(t *testing.T) {
		var gotQuery string
		provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/landingPageTemplate/updateUrl/3", r.URL.Path)
			gotQuery = r.URL.Query().Get("url")
			w.WriteHeader(http.StatusOK)
		}))

		err := provider.UpdateLandingPageURL(ctx, 3, "http://phish.example.com:3000", "token", utils.ClearanceClient)
		require.NoError(t, err)
		assert.Equal(t, "http://phish.example.com:3000", gotQuery)
	})

	t.Run("ValidateToken", func(t *testing.T) {
		provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/auth/validateToken", r.URL.Path)

			var req dto.ValidateTokenRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "token-123", req.Token)

			json.NewEncoder(w).Encode(dto.ValidateTokenResponse{ClientID: 5})
		}))

		clientID, err := provider.ValidateToken(ctx, "token-123", utils.ClearanceClient)
		require.NoError(t, err)
		assert.Equal(t, uint(5), clientID)
	})

	t.Run("ValidateTokenRejected", func(t *testing.T) {
		provider, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		_, err := provider.ValidateToken(ctx, "token", utils.ClearanceClient)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
