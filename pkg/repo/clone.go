package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/tinygit/tinygit/pkg/remote"
)

// CloneOptions configures the transport used during Clone.
type CloneOptions struct {
	RemoteName  string        // config name for the source remote (default "origin")
	Timeout     time.Duration // HTTP client timeout
	MaxAttempts int           // HTTP retry attempts
}

// Clone initializes a repository at dir, fetches all reachable objects from
// remoteURL, persists the advertised refs, points HEAD at the remote's
// default branch, and materializes the working tree. Failures leave the
// partially created directory in place; the caller decides whether to remove
// it and retry.
func Clone(ctx context.Context, remoteURL, dir string, opts CloneOptions) (*Repo, error) {
	if opts.RemoteName == "" {
		opts.RemoteName = "origin"
	}

	client, err := remote.NewClientWithOptions(remoteURL, remote.ClientOptions{
		Timeout:     opts.Timeout,
		MaxAttempts: opts.MaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	r, err := Init(dir)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}
	if err := r.SetRemote(opts.RemoteName, client.URL()); err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	sum, err := remote.FetchIntoStore(ctx, client, r.Store)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}
	adv := sum.Advertisement

	log := clog.FromContext(ctx)
	if len(adv.Refs) == 0 {
		log.Infof("cloned empty repository into %s", dir)
		return r, nil
	}

	// Persist the advertised branch refs. HEAD is handled separately below.
	for _, ref := range adv.Refs {
		if ref.Name == "HEAD" {
			continue
		}
		if err := r.UpdateRef(ref.Name, ref.Hash); err != nil {
			return nil, fmt.Errorf("clone: %w", err)
		}
	}

	// Point HEAD at the remote's default branch when the advertisement names
	// one; otherwise fall back to a detached HEAD at the advertised hash.
	if adv.HeadSymref != "" {
		if err := r.SetHead(adv.HeadSymref); err != nil {
			return nil, fmt.Errorf("clone: %w", err)
		}
	} else if h, ok := adv.Ref("HEAD"); ok {
		if err := r.SetHead(string(h)); err != nil {
			return nil, fmt.Errorf("clone: %w", err)
		}
	}

	if _, err := r.ResolveRef("HEAD"); err == nil {
		if err := r.CheckoutHead(); err != nil {
			return nil, fmt.Errorf("clone: %w", err)
		}
	} else {
		log.Infof("remote advertised no resolvable HEAD, skipping checkout")
	}

	log.Infof("cloned %s into %s", client.URL(), dir)
	return r, nil
}
