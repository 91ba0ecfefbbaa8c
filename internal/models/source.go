package models

import "time"

type AccessMode string

const (
	AccessAPI    AccessMode = "api"
	AccessScrape AccessMode = "scrape"
	AccessFeed   AccessMode = "feed"
)

type SourceStatus string

const (
	SourceActive   SourceStatus = "active"
	SourceInactive SourceStatus = "inactive"
	SourceError    SourceStatus = "error"
)

// DataSource describes one external problem corpus the aggregator pulls
// from. ProblemCount accumulates across syncs.
type DataSource struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URL          string       `json:"url"`
	Type         AccessMode   `json:"type"`
	Status       SourceStatus `json:"status"`
	ProblemCount int          `json:"problemCount"`
	LastSync     time.Time    `json:"lastSync"`
	Enabled      bool         `json:"enabled"`
}

type SourceListResponse struct {
	Sources []DataSource `json:"sources"`
}

type ToggleSourceRequest struct {
	SourceID string `json:"sourceId"`
	Enabled  *bool  `json:"enabled"`
}

// ── Aggregation Types ─────────────────────────────────

type AggregationStats struct {
	TotalProblems int                  `json:"totalProblems"`
	BySource      map[string]int       `json:"bySource"`
	ByTopic       map[string]int       `json:"byTopic"`
	ByDifficulty  map[string]int       `json:"byDifficulty"`
	LastUpdate    map[string]time.Time `json:"lastUpdate"`
}

type SourceSyncResult struct {
	Count    int       `json:"count"`
	Problems []Problem `json:"problems"`
	Status   string    `json:"status"`
}

type AggregateRequest struct {
	SourceID string `json:"sourceId,omitempty"`
}

type AggregateSourceResponse struct {
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	Count     int       `json:"count"`
	Problems  []Problem `json:"problems"`
	Timestamp time.Time `json:"timestamp"`
}

type AggregateAllResponse struct {
	Status    string                     `json:"status"`
	Results   map[string]SourceRunResult `json:"results"`
	Stats     AggregationStats           `json:"stats"`
	Timestamp time.Time                  `json:"timestamp"`
}

type SourceRunResult struct {
	Count  int    `json:"count"`
	Status string `json:"status"`
}
