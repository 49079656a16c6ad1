package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blechat/internal/crypto"
	"blechat/internal/domain"
)

func cachedKeys(s *FileStore) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unsealed)
}

func TestKeyCache_FollowsCommittedState(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir(), "pass", WithKDFCost(1<<10, 8, 1))
	require.NoError(t, err)
	boom := errors.New("boom")

	owned, err := crypto.GenerateOwnedIdentity("opal")
	require.NoError(t, err)
	primary := domain.PeerFromIdentity(owned.Identity)
	primary.PrivateKey = &owned.PrivateKey

	err = s.WithinTx(ctx, func(ctx context.Context, tx domain.Repository) error {
		if _, err := tx.InsertPeer(ctx, primary); err != nil {
			return err
		}
		p, ok, err := tx.FindPrimaryPeer(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, owned.PrivateKey, *p.PrivateKey, "visible inside the transaction")
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, cachedKeys(s), "rolled back insert leaves no key behind")

	id, err := s.InsertPeer(ctx, primary)
	require.NoError(t, err)
	assert.Equal(t, 1, cachedKeys(s))

	err = s.WithinTx(ctx, func(ctx context.Context, tx domain.Repository) error {
		if _, err := tx.DeletePeers(ctx, id); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, cachedKeys(s), "rolled back delete keeps the key")

	n, err := s.DeletePeers(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, cachedKeys(s))
}
