package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gdxtoolbox/pkg/contracts/domain"
)

// MockImporter is a mock for the ArchiveImporter interface
type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Import(ctx context.Context, filename, folderPath string, onlyEssentialOutputs bool) (domain.Collection, error) {
	args := m.Called(ctx, filename, folderPath, onlyEssentialOutputs)
	tables, _ := args.Get(0).(domain.Collection)
	return tables, args.Error(1)
}
