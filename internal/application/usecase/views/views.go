// Package views runs the derivation pipeline over the active collection:
// one kind-partitioned, filtered, sorted, grouped view plus the aggregate
// stats, recomputed from current store state on every call.
package views

import (
	"github.com/hntran/reelist/internal/application/store/collectionstore"
	"github.com/hntran/reelist/internal/application/store/reviewstore"
	"github.com/hntran/reelist/internal/derive"
	"github.com/hntran/reelist/internal/domain/media"
	"github.com/hntran/reelist/pkg/apperror"
)

type DeriveViewUseCase struct {
	collections *collectionstore.Store
	reviews     *reviewstore.Store
}

func NewDeriveViewUseCase(collections *collectionstore.Store, reviews *reviewstore.Store) *DeriveViewUseCase {
	return &DeriveViewUseCase{collections: collections, reviews: reviews}
}

type DeriveViewInput struct {
	Kind   media.Kind
	Filter derive.FilterOptions
	Sort   derive.SortKey
	Group  derive.GroupDimension
}

type DeriveViewOutput struct {
	Buckets []derive.Bucket `json:"buckets"`
	Stats   derive.Stats    `json:"stats"`
}

func (uc *DeriveViewUseCase) Execute(input DeriveViewInput) (*DeriveViewOutput, error) {
	active := uc.collections.Active()
	if active == nil {
		return nil, apperror.NewNotFound("active collection", "")
	}

	reviews := derive.ReviewLookup(uc.reviews.All())
	partition := derive.ByKind(active.Items, input.Kind)

	filtered := derive.Filter(partition, input.Filter, reviews)
	sorted := derive.Sort(filtered, input.Sort)
	buckets := derive.Group(sorted, input.Group, input.Kind)

	// stats always cover the full kind partition, not the filtered view
	stats := derive.ComputeStats(partition, reviews)

	return &DeriveViewOutput{Buckets: buckets, Stats: stats}, nil
}
