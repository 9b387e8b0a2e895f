// Package wca is the client for the World Cube Association API
package wca

// Me is the authenticated-user response from the WCA /me endpoint
type Me struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	WcaID string `json:"wca_id"`
}

type meResponse struct {
	Me Me `json:"me"`
}

// Competition is the summary object returned by the WCA competitions
// listing. The API returns a much larger object; only the fields the
// dashboard needs are unmarshalled.
type Competition struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ShortDisplayName string `json:"short_display_name"`
	City             string `json:"city"`
	CountryISO2      string `json:"country_iso2"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	URL              string `json:"url"`
}

// wcifSchedule is the part of a WCIF document needed to derive the
// competition end date for retention.
type wcifSchedule struct {
	Schedule struct {
		StartDate    string `json:"startDate"`
		NumberOfDays int    `json:"numberOfDays"`
	} `json:"schedule"`
}
