// Package share resolves read-only external views of collections. Every
// result is a detached copy tagged with the owner's display name; nothing
// here ever touches the viewer's own collection state.
package share

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/hntran/reelist/adapters/catalog"
	"github.com/hntran/reelist/internal/domain/collection"
	"github.com/hntran/reelist/internal/domain/media"
	"github.com/hntran/reelist/internal/domain/user"
	"github.com/hntran/reelist/pkg/apperror"
	"github.com/hntran/reelist/pkg/logger"
)

// anonymousOwner labels shared pages whose owner name cannot be resolved.
const anonymousOwner = "Anonymous"

// rawIDListLimit bounds the legacy comma-separated-ids path.
const rawIDListLimit = 20

type ResolveUseCase struct {
	collectionRepo collection.Repository
	userRepo       user.Repository
	catalog        catalog.Client
	logger         logger.Logger
}

func NewResolveUseCase(cRepo collection.Repository, uRepo user.Repository, catalogClient catalog.Client, log logger.Logger) *ResolveUseCase {
	return &ResolveUseCase{
		collectionRepo: cRepo,
		userRepo:       uRepo,
		catalog:        catalogClient,
		logger:         log,
	}
}

// SharedView is what an external viewer sees: a detached snapshot plus the
// owner's display name.
type SharedView struct {
	Collection *collection.Collection `json:"collection"`
	OwnerName  string                 `json:"ownerName"`
}

var tracer = otel.Tracer("share_usecase")

// ResolveByToken fetches the collection behind a share token. A private
// collection resolves only for its owner; everyone else gets not-found, so
// private collections do not leak their existence.
func (uc *ResolveUseCase) ResolveByToken(ctx context.Context, token string, viewerID uuid.UUID) (*SharedView, error) {
	ctx, span := tracer.Start(ctx, "ResolveByToken")
	defer span.End()

	if token == "" {
		return nil, apperror.NewInvalidInput("share token required", nil)
	}

	c, err := uc.collectionRepo.FindByShareToken(ctx, token)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !c.IsPublic && c.OwnerID != viewerID {
		return nil, apperror.NewNotFound("shared collection", token)
	}
	span.SetAttributes(attribute.String("collection_id", c.ID))

	return &SharedView{
		Collection: c.Clone(),
		OwnerName:  uc.ownerName(ctx, c.OwnerID),
	}, nil
}

// ResolveLegacyList fetches a pre-live-sharing archive snapshot. Archive
// rows predate ownership, so there is no public/private check.
func (uc *ResolveUseCase) ResolveLegacyList(ctx context.Context, listID string) (*SharedView, error) {
	ctx, span := tracer.Start(ctx, "ResolveLegacyList")
	defer span.End()

	archived, err := uc.collectionRepo.FindArchived(ctx, listID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c := &collection.Collection{
		ID:        archived.ID,
		Name:      archived.Name,
		Items:     archived.Items,
		CreatedAt: archived.CreatedAt,
	}
	return &SharedView{Collection: c, OwnerName: anonymousOwner}, nil
}

// ResolveIDList builds a view from raw catalog ids carried in the URL
// itself. At most the first 20 ids resolve; each is detail-fetched
// independently (movie first, then show) and ids that fail are dropped
// without failing the whole view.
func (uc *ResolveUseCase) ResolveIDList(ctx context.Context, ids []int) (*SharedView, error) {
	if len(ids) == 0 {
		return nil, apperror.NewInvalidInput("at least one catalog id required", nil)
	}
	if len(ids) > rawIDListLimit {
		ids = ids[:rawIDListLimit]
	}

	items := make([]media.Item, 0, len(ids))
	for _, id := range ids {
		item, err := uc.catalog.Detail(ctx, id, media.KindMovie)
		if err != nil {
			item, err = uc.catalog.Detail(ctx, id, media.KindTV)
		}
		if err != nil {
			uc.logger.Warn("shared id failed to resolve, dropping", zap.Int("item_id", id), zap.Error(err))
			continue
		}
		items = append(items, *item)
	}

	c := &collection.Collection{
		ID:    "shared",
		Name:  "Shared List",
		Items: items,
	}
	return &SharedView{Collection: c, OwnerName: anonymousOwner}, nil
}

// ownerName is best-effort: a failed lookup degrades to the anonymous
// label, it never fails the resolution.
func (uc *ResolveUseCase) ownerName(ctx context.Context, ownerID uuid.UUID) string {
	if ownerID == uuid.Nil {
		return anonymousOwner
	}
	username, err := uc.userRepo.UsernameByID(ctx, ownerID)
	if err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrNotFound) {
			uc.logger.Warn("owner name lookup failed", zap.String("owner_id", ownerID.String()), zap.Error(err))
		}
		return anonymousOwner
	}
	if username == "" {
		return anonymousOwner
	}
	return username
}
