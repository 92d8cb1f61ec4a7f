package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

type parentAccountRepo interface {
	FindByUserID(ctx context.Context, userID string) (*models.Parent, error)
}

type nurseAccountRepo interface {
	FindByUserID(ctx context.Context, userID string) (*models.Nurse, error)
}

// ActorService maps authenticated accounts to their parent or nurse profiles.
type ActorService struct {
	parents parentAccountRepo
	nurses  nurseAccountRepo
}

// NewActorService constructs the resolver.
func NewActorService(parents parentAccountRepo, nurses nurseAccountRepo) *ActorService {
	return &ActorService{parents: parents, nurses: nurses}
}

// ParentForUser returns the parent profile linked to userID.
func (s *ActorService) ParentForUser(ctx context.Context, userID string) (*models.Parent, error) {
	parent, err := s.parents.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a parent profile")
		}
		return nil, appErrors.Internal(err, "failed to resolve parent profile")
	}
	return parent, nil
}

// NurseForUser returns the active nurse profile linked to userID.
func (s *ActorService) NurseForUser(ctx context.Context, userID string) (*models.Nurse, error) {
	nurse, err := s.nurses.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a nurse profile")
		}
		return nil, appErrors.Internal(err, "failed to resolve nurse profile")
	}
	if !nurse.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "nurse profile is inactive")
	}
	return nurse, nil
}
