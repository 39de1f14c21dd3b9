package resolver

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/minerals/internal/models"
	"github.com/stwalsh4118/minerals/internal/repository"
)

// RepositorySource resolves parties from the party_records table.
type RepositorySource struct {
	repo repository.PartyRepository
}

// NewRepositorySource wraps a party repository.
func NewRepositorySource(repo repository.PartyRepository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

// Lookup implements PartySource.
func (s *RepositorySource) Lookup(ctx context.Context, name string) (*models.PartyRecord, error) {
	record, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: no stored record for %q", models.ErrPartyFileMissing, name)
	}
	return record, nil
}

// Names implements NameLister.
func (s *RepositorySource) Names(ctx context.Context) ([]string, error) {
	return s.repo.ListNames(ctx)
}
