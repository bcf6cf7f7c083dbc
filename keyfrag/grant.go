package keyfrag

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sonr-io/prekit/hrac"
	"github.com/sonr-io/prekit/umbral"
)

// Assignment names the node that will hold one fragment.
type Assignment struct {
	Recipient umbral.PublicKey
	KeyFrag   umbral.KeyFrag
}

// EncryptForNodes authorizes and encrypts every assigned fragment under the
// policy identifier id. Work runs concurrently; the result at index i belongs
// to assignments[i]. The first failure cancels the remaining work.
func EncryptForNodes(ctx context.Context, signer *umbral.Signer, id hrac.HRAC, assignments []Assignment) ([]EncryptedKeyFrag, error) {
	out := make([]EncryptedKeyFrag, len(assignments))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, a := range assignments {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ekf, err := NewEncryptedKeyFrag(a.Recipient, NewAuthorizedKeyFrag(signer, id, a.KeyFrag))
			if err != nil {
				return err
			}
			out[i] = ekf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
