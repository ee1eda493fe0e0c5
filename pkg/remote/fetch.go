package remote

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"

	"github.com/tinygit/tinygit/pkg/object"
)

// FetchSummary reports the outcome of FetchIntoStore.
type FetchSummary struct {
	Advertisement *Advertisement
	Pack          *object.PackSummary // nil when the remote advertised no refs
}

// FetchIntoStore performs a full anonymous fetch: ref discovery, one
// negotiation round trip, and pack indexing into the store. A failure at
// any stage aborts the transfer; the store may be left partially populated
// and re-running the fetch is the recovery path (writes are idempotent).
func FetchIntoStore(ctx context.Context, c *Client, store *object.Store) (*FetchSummary, error) {
	log := clog.FromContext(ctx)

	adv, err := c.DiscoverRefs(ctx)
	if err != nil {
		return nil, err
	}

	wants := adv.WantHashes()
	if len(wants) == 0 {
		log.Infof("remote %s is empty, nothing to fetch", c.URL())
		return &FetchSummary{Advertisement: adv}, nil
	}

	pack, err := c.FetchPack(ctx, wants)
	if err != nil {
		return nil, err
	}

	sum, err := object.IndexPack(pack, store)
	if err != nil {
		return nil, fmt.Errorf("index pack: %w", err)
	}
	log.Infof("indexed %d objects (%d deltas)", sum.Objects, sum.Deltas)

	return &FetchSummary{Advertisement: adv, Pack: sum}, nil
}
