package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pkghub/internal/models"
	"pkghub/internal/store"
)

// Service stores and reads artifact payloads. Whether a read carries the
// payload is decided by which method is called.
type Service struct {
	store store.ArtifactStore
}

// NewService constructs a Service over st.
func NewService(st store.ArtifactStore) *Service {
	return &Service{store: st}
}

// Put stores payload verbatim as a new artifact of packageID owned by ownerID.
func (s *Service) Put(ctx context.Context, packageID, name, ownerID string, payload []byte) (models.Artifact, error) {
	var zero models.Artifact
	name = strings.TrimSpace(name)
	if name == "" {
		return zero, InvalidInput.New("artifact name is required")
	}
	if len(payload) == 0 {
		return zero, InvalidInput.New("artifact payload is empty")
	}

	artifact := models.Artifact{
		ArtifactSummary: models.ArtifactSummary{
			Name:      name,
			PackageID: strings.TrimSpace(packageID),
			CreatedBy: strings.TrimSpace(ownerID),
		},
		Payload: payload,
	}
	if err := s.store.CreateArtifact(ctx, &artifact); err != nil {
		switch {
		case errors.Is(err, store.ErrPackageNotFound):
			return zero, NotFound.Wrap(fmt.Errorf("%w: %s", err, artifact.PackageID))
		case errors.Is(err, store.ErrUserNotFound):
			return zero, NotFound.Wrap(fmt.Errorf("%w: %s", err, artifact.CreatedBy))
		}
		return zero, StorageFailure.Wrap(err)
	}
	return artifact, nil
}

// GetSummary returns artifact metadata without the payload.
func (s *Service) GetSummary(ctx context.Context, id string) (models.ArtifactSummary, error) {
	summary, err := s.store.GetArtifactSummary(ctx, id)
	if err != nil {
		return models.ArtifactSummary{}, StorageFailure.Wrap(err)
	}
	if summary == nil {
		return models.ArtifactSummary{}, NotFound.New("artifact %s", id)
	}
	return *summary, nil
}

// GetWithPayload returns artifact metadata and its payload bytes.
func (s *Service) GetWithPayload(ctx context.Context, id string) (models.Artifact, error) {
	artifact, err := s.store.GetArtifact(ctx, id)
	if err != nil {
		return models.Artifact{}, StorageFailure.Wrap(err)
	}
	if artifact == nil {
		return models.Artifact{}, NotFound.New("artifact %s", id)
	}
	return *artifact, nil
}

// ListSummaries returns a package's artifacts in insertion order without payloads.
func (s *Service) ListSummaries(ctx context.Context, packageID string) ([]models.ArtifactSummary, error) {
	if err := s.ensurePackage(ctx, packageID); err != nil {
		return nil, err
	}
	summaries, err := s.store.ListArtifactSummaries(ctx, packageID)
	if err != nil {
		return nil, StorageFailure.Wrap(err)
	}
	return summaries, nil
}

// ListWithPayloads returns a package's artifacts in insertion order with payloads.
func (s *Service) ListWithPayloads(ctx context.Context, packageID string) ([]models.Artifact, error) {
	if err := s.ensurePackage(ctx, packageID); err != nil {
		return nil, err
	}
	artifacts, err := s.store.ListArtifacts(ctx, packageID)
	if err != nil {
		return nil, StorageFailure.Wrap(err)
	}
	return artifacts, nil
}

func (s *Service) ensurePackage(ctx context.Context, packageID string) error {
	found, err := s.store.PackageExists(ctx, packageID)
	if err != nil {
		return StorageFailure.Wrap(err)
	}
	if !found {
		return NotFound.Wrap(fmt.Errorf("%w: %s", store.ErrPackageNotFound, packageID))
	}
	return nil
}
