package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/hntran/reelist/internal/domain/user"
	"github.com/hntran/reelist/pkg/logger"
)

type ProfileUseCase struct {
	userRepo user.Repository
	logger   logger.Logger
}

func NewProfileUseCase(repo user.Repository, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		userRepo: repo,
		logger:   log,
	}
}

func (uc *ProfileUseCase) Execute(ctx context.Context, userID uuid.UUID) (*user.User, error) {

	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()

	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return u, nil
}
