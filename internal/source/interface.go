package source

import (
	"context"

	"github.com/trendscout-agent/internal/models"
	"github.com/trendscout-agent/internal/platform"
)

// RecordSource defines the interface for fetch collaborators. A source
// returns raw post/video records with platform-native fields; scoring
// and outlier detection happen downstream.
type RecordSource interface {
	// Name returns the unique name of this source
	Name() string

	// Platform returns the platform this source fetches for
	Platform() platform.Platform

	// Fetch retrieves raw records for the given accounts
	Fetch(ctx context.Context, accounts []string, days, limit int) ([]*models.Record, error)

	// HealthCheck verifies the source is accessible
	HealthCheck(ctx context.Context) error
}

// Manager manages record sources, one per platform
type Manager struct {
	sources []RecordSource
}

// NewManager creates a new source manager
func NewManager() *Manager {
	return &Manager{
		sources: make([]RecordSource, 0),
	}
}

// Register adds a source to the manager
func (m *Manager) Register(source RecordSource) {
	m.sources = append(m.sources, source)
}

// GetSources returns all registered sources
func (m *Manager) GetSources() []RecordSource {
	return m.sources
}

// ForPlatform returns the first source registered for a platform
func (m *Manager) ForPlatform(p platform.Platform) RecordSource {
	for _, s := range m.sources {
		if s.Platform() == p {
			return s
		}
	}
	return nil
}

// Dedupe removes records sharing a URL, keeping the first occurrence
func Dedupe(records []*models.Record) []*models.Record {
	seen := make(map[string]bool)
	unique := make([]*models.Record, 0, len(records))

	for _, rec := range records {
		if rec.URL != "" && seen[rec.URL] {
			continue
		}
		seen[rec.URL] = true
		unique = append(unique, rec)
	}

	return unique
}
