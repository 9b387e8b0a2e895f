package wca

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	return New(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost/login",
		WebBaseURL:   server.URL,
		APIBaseURL:   server.URL,
		HTTPClient:   server.Client(),
	})
}

func TestGetMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"me":{"id":6427,"name":"Feliks Zemdegs","wca_id":"2010ZEMD01"}}`))
	}))
	defer server.Close()

	me, err := newTestClient(server).GetMe(context.Background(), "access-1")
	require.NoError(t, err)
	assert.Equal(t, int64(6427), me.ID)
	assert.Equal(t, "Feliks Zemdegs", me.Name)
	assert.Equal(t, "2010ZEMD01", me.WcaID)
}

func TestGetMeUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server).GetMe(context.Background(), "revoked")
	assert.True(t, errors.Is(err, apperror.ErrAuth))
}

func TestGetUpcomingCompetitions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/competitions", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "true", query.Get("managed_by_me"))
		assert.Equal(t, "start_date", query.Get("sort"))
		assert.NotEmpty(t, query.Get("start"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"WC2026","name":"World Championship 2026","city":"Melbourne","country_iso2":"AU","start_date":"2026-07-03","end_date":"2026-07-05"}]`))
	}))
	defer server.Close()

	competitions, err := newTestClient(server).GetUpcomingCompetitions(context.Background(), "access-1")
	require.NoError(t, err)
	require.Len(t, competitions, 1)
	assert.Equal(t, "WC2026", competitions[0].ID)
	assert.Equal(t, "2026-07-05", competitions[0].EndDate)
}

func TestGetUpcomingCompetitionsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server).GetUpcomingCompetitions(context.Background(), "access-1")
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
}

func TestGetWCIF(t *testing.T) {
	wcif := `{"id":"WC2026","schedule":{"startDate":"2026-07-03","numberOfDays":3}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/competitions/WC2026/wcif", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(wcif))
	}))
	defer server.Close()

	payload, err := newTestClient(server).GetWCIF(context.Background(), "access-1", "WC2026")
	require.NoError(t, err)
	assert.JSONEq(t, wcif, string(payload))
}

func TestRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"access-2","refresh_token":"refresh-2","token_type":"bearer","expires_in":7200}`))
	}))
	defer server.Close()

	token, err := newTestClient(server).RefreshToken(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", token.AccessToken)
	assert.Equal(t, "refresh-2", token.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), token.Expiry, time.Minute)
}

func TestRefreshTokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).RefreshToken(context.Background(), "revoked")
	assert.True(t, errors.Is(err, apperror.ErrAuth))
}

func TestCompetitionEndDate(t *testing.T) {
	endDate, err := CompetitionEndDate([]byte(`{"schedule":{"startDate":"2026-07-03","numberOfDays":3}}`))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC), endDate)

	// single-day competition
	endDate, err = CompetitionEndDate([]byte(`{"schedule":{"startDate":"2026-07-03","numberOfDays":1}}`))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC), endDate)

	_, err = CompetitionEndDate([]byte(`{"schedule":{"startDate":"not a date"}}`))
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
}
