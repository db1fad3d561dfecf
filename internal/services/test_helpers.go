package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pollscope/pkg/contracts/domain"
)

// MockFetcher is a mock for fetcher.Fetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawRow), args.Error(1)
}

func (m *MockFetcher) Name() string {
	return "mock"
}

// MockStatusProvider is a mock for StatusProvider
type MockStatusProvider struct {
	mock.Mock
}

func (m *MockStatusProvider) Status() RefreshStatus {
	return m.Called().Get(0).(RefreshStatus)
}

// MockRefresher is a mock for Refresher
type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

// scenarioRows is the two pollster fixture used across service tests
func scenarioRows() []domain.RawRow {
	return []domain.RawRow{
		{"Encuestadora": "DATUM", "Periodo": "Ene-26", "Candidato": "Keiko Fujimori", "Valor": "10"},
		{"Encuestadora": "DATUM", "Periodo": "Feb-26", "Candidato": "Keiko Fujimori", "Valor": "12"},
		{"Encuestadora": "DATUM", "Periodo": "Ene-26", "Candidato": "Rafael López Aliaga", "Valor": "8"},
		{"Encuestadora": "IPSOS", "Periodo": "Feb-26", "Candidato": "Rafael López Aliaga", "Valor": "9.5"},
		{"Encuestadora": "IPSOS", "Periodo": "Feb-26", "Candidato": "Keiko Fujimori", "Valor": "11"},
		{"Encuestadora": "IPSOS", "Periodo": "Feb-26", "Candidato": "", "Valor": "3"},
	}
}
