package admin

import (
	"context"

	"github.com/hntran/reelist/internal/domain/stats"
	"github.com/hntran/reelist/pkg/logger"
)

type PlatformStatsUseCase struct {
	statsRepo stats.Repository
	logger    logger.Logger
}

func NewPlatformStatsUseCase(repo stats.Repository, log logger.Logger) *PlatformStatsUseCase {
	return &PlatformStatsUseCase{statsRepo: repo, logger: log}
}

type PlatformStatsOutput struct {
	Stats *stats.Platform
}

func (uc *PlatformStatsUseCase) Execute(ctx context.Context) (*PlatformStatsOutput, error) {
	platform, err := uc.statsRepo.Platform(ctx)
	if err != nil {
		return nil, err
	}
	return &PlatformStatsOutput{Stats: platform}, nil
}
