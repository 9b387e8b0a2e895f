package wca

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/apperror"
	"golang.org/x/oauth2"
)

const (
	defaultWebBaseURL = "https://www.worldcubeassociation.org"
	defaultAPIBaseURL = "https://api.worldcubeassociation.org"

	// The dashboard lists competitions starting no earlier than this
	// far in the past.
	competitionLookback = 14 * 24 * time.Hour
)

// Config holds the WCA OAuth application credentials. WebBaseURL and
// APIBaseURL override the production endpoints, used by tests.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	WebBaseURL   string
	APIBaseURL   string
	HTTPClient   *http.Client
}

// Client calls the WCA OAuth and data APIs
type Client struct {
	oauth      *oauth2.Config
	webBaseURL string
	apiBaseURL string
	httpClient *http.Client
}

// New creates a new WCA API client
func New(cfg Config) *Client {
	webBase := cfg.WebBaseURL
	if webBase == "" {
		webBase = defaultWebBaseURL
	}
	apiBase := cfg.APIBaseURL
	if apiBase == "" {
		apiBase = defaultAPIBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"public", "manage_competitions"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  webBase + "/oauth/authorize",
				TokenURL: webBase + "/oauth/token",
			},
		},
		webBaseURL: webBase,
		apiBaseURL: apiBase,
		httpClient: httpClient,
	}
}

// oauthContext routes the oauth2 package's token-endpoint calls through
// the client's HTTP client.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// ExchangeCode trades an authorization code for WCA OAuth tokens
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauth.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, apperror.Auth("failed to exchange authorization code", err)
	}
	return token, nil
}

// RefreshToken trades a refresh token for a new access/refresh token
// pair. A rejection means the WCA revoked the refresh token and the
// user must re-authenticate.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, apperror.Auth("failed to refresh WCA token", err)
	}
	return token, nil
}

// GetMe gets the authenticated user's identity
func (c *Client) GetMe(ctx context.Context, accessToken string) (*Me, error) {
	body, err := c.authFetch(ctx, c.apiBaseURL+"/me", accessToken)
	if err != nil {
		return nil, err
	}

	var resp meResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperror.Upstream("failed to decode /me response", err)
	}
	if resp.Me.ID == 0 {
		return nil, apperror.Upstream("WCA returned an invalid user", nil)
	}
	return &resp.Me, nil
}

// GetUpcomingCompetitions lists the competitions managed by the
// authenticated user, starting within the lookback window, sorted by
// start date.
func (c *Client) GetUpcomingCompetitions(ctx context.Context, accessToken string) ([]Competition, error) {
	u, err := url.Parse(c.webBaseURL + "/api/v0/competitions")
	if err != nil {
		return nil, apperror.Upstream("invalid competitions url", err)
	}

	start := time.Now().Add(-competitionLookback)
	query := u.Query()
	query.Set("managed_by_me", "true")
	query.Set("start", start.UTC().Format(time.RFC3339))
	query.Set("sort", "start_date")
	u.RawQuery = query.Encode()

	body, err := c.authFetch(ctx, u.String(), accessToken)
	if err != nil {
		return nil, err
	}

	var competitions []Competition
	if err := json.Unmarshal(body, &competitions); err != nil {
		return nil, apperror.Upstream("failed to decode competitions response", err)
	}
	return competitions, nil
}

// GetWCIF fetches a competition's verbatim WCIF document
func (c *Client) GetWCIF(ctx context.Context, accessToken, competitionID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/competitions/%s/wcif", c.apiBaseURL, url.PathEscape(competitionID))
	return c.authFetch(ctx, endpoint, accessToken)
}

// authFetch performs a bearer-authenticated GET and returns the body
func (c *Client) authFetch(ctx context.Context, endpoint, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperror.Upstream("failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Upstream("failed to call WCA API", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperror.Auth("invalid or expired WCA token", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream(fmt.Sprintf("WCA API returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Upstream("failed to read WCA response", err)
	}
	return body, nil
}

// CompetitionEndDate derives the competition end date from a WCIF
// document's schedule (startDate plus numberOfDays).
func CompetitionEndDate(wcif []byte) (time.Time, error) {
	var doc wcifSchedule
	if err := json.Unmarshal(wcif, &doc); err != nil {
		return time.Time{}, apperror.Upstream("failed to decode WCIF schedule", err)
	}

	start, err := time.Parse("2006-01-02", doc.Schedule.StartDate)
	if err != nil {
		return time.Time{}, apperror.Upstream("invalid WCIF schedule start date", err)
	}

	days := doc.Schedule.NumberOfDays
	if days < 1 {
		days = 1
	}
	return start.AddDate(0, 0, days-1), nil
}
