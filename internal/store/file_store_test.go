package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blechat/internal/crypto"
	"blechat/internal/domain"
	"blechat/internal/store"
)

func openStore(t *testing.T, dir, pass string) *store.FileStore {
	t.Helper()
	s, err := store.NewFileStore(dir, pass, store.WithKDFCost(1<<10, 8, 1))
	require.NoError(t, err)
	return s
}

func primaryPeer(t *testing.T, alias string) domain.Peer {
	t.Helper()
	id, err := crypto.GenerateOwnedIdentity(alias)
	require.NoError(t, err)
	p := domain.PeerFromIdentity(id.Identity)
	p.PrivateKey = &id.PrivateKey
	return p
}

func remotePeer(t *testing.T, alias string) domain.Peer {
	t.Helper()
	id, err := crypto.GenerateOwnedIdentity(alias)
	require.NoError(t, err)
	return domain.PeerFromIdentity(id.Identity)
}

func TestPrimary_SaveReopen_OK(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()

	var repo domain.Repository = openStore(t, home, "pass")
	want := primaryPeer(t, "bob")
	id, err := repo.InsertPeer(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, domain.PeerID(1), id)

	reopened := openStore(t, home, "pass")
	got, ok, err := reopened.FindPrimaryPeer(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "bob", got.Alias)
	assert.Equal(t, want.PublicKey, got.PublicKey)
	require.NotNil(t, got.PrivateKey)
	assert.Equal(t, *want.PrivateKey, *got.PrivateKey)
}

func TestPrimary_KeyIsSealedOnDisk(t *testing.T) {
	home := t.TempDir()
	s := openStore(t, home, "pass")
	p := primaryPeer(t, "carol")
	_, err := s.InsertPeer(context.Background(), p)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(home, "peers.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "sealed_key")
	assert.NotContains(t, string(raw), "private_key")

	info, err := os.Stat(filepath.Join(home, "peers.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPrimary_WrongPassphrase_Fails(t *testing.T) {
	home := t.TempDir()
	s := openStore(t, home, "correct")
	_, err := s.InsertPeer(context.Background(), primaryPeer(t, "dave"))
	require.NoError(t, err)

	_, err = store.NewFileStore(home, "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestInsertPeer_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir(), "pass")

	p := remotePeer(t, "erin")
	_, err := s.InsertPeer(ctx, p)
	require.NoError(t, err)
	_, err = s.InsertPeer(ctx, p)
	assert.ErrorIs(t, err, domain.ErrStorage)

	_, err = s.InsertPeer(ctx, primaryPeer(t, "one"))
	require.NoError(t, err)
	_, err = s.InsertPeer(ctx, primaryPeer(t, "two"))
	assert.ErrorIs(t, err, domain.ErrStorage)

	peers, err := s.ListPeers(ctx)
	require.NoError(t, err)
	assert.Len(t, peers, 2)
}

func TestMessages_ReferentialIntegrityAndCascade(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir(), "pass")

	sender := remotePeer(t, "frank")
	peerID, err := s.InsertPeer(ctx, sender)
	require.NoError(t, err)

	msg := domain.Message{
		Sender:       sender.Identity(),
		Body:         "hello",
		AuthoredDate: time.Now().Add(-time.Minute).UTC(),
		Signature:    domain.Signature{7},
	}
	_, err = s.InsertMessage(ctx, msg, peerID+100)
	assert.ErrorIs(t, err, domain.ErrStorage)

	m1, err := s.InsertMessage(ctx, msg, peerID)
	require.NoError(t, err)
	m2, err := s.InsertMessage(ctx, msg, peerID)
	require.NoError(t, err)
	assert.NotEqual(t, m1, m2)

	list, err := s.ListMessages(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m2, list[0].ID)
	assert.Equal(t, peerID, list[0].PeerID)
	assert.Equal(t, sender.PublicKey, list[0].Sender.PublicKey)
	assert.Equal(t, domain.Signature{7}, list[0].Signature)

	n, err := s.DeletePeers(ctx, peerID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	list, err = s.ListMessages(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteMessages(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir(), "pass")
	sender := remotePeer(t, "gina")
	peerID, err := s.InsertPeer(ctx, sender)
	require.NoError(t, err)
	id, err := s.InsertMessage(ctx, domain.Message{Sender: sender.Identity(), Body: "x", AuthoredDate: time.Now()}, peerID)
	require.NoError(t, err)

	n, err := s.DeleteMessages(ctx, id, id+1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	peers, err := s.ListPeers(ctx)
	require.NoError(t, err)
	assert.Len(t, peers, 1, "deleting messages keeps the peer")
}

func TestUpdatePeerSeenDate(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir(), "pass")
	p := remotePeer(t, "hank")
	id, err := s.InsertPeer(ctx, p)
	require.NoError(t, err)

	seen := time.Date(2031, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, s.UpdatePeerSeenDate(ctx, id, seen))
	got, ok, err := s.FindPeerByPublicKey(ctx, p.PublicKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, seen.Equal(got.DateSeen))

	assert.ErrorIs(t, s.UpdatePeerSeenDate(ctx, id+1, seen), domain.ErrStorage)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, t.TempDir(), "pass")
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx domain.Repository) error {
		if _, err := tx.InsertPeer(ctx, remotePeer(t, "ivy")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	peers, err := s.ListPeers(ctx)
	require.NoError(t, err)
	assert.Empty(t, peers)

	err = s.WithinTx(ctx, func(ctx context.Context, tx domain.Repository) error {
		_, err := tx.InsertPeer(ctx, remotePeer(t, "jack"))
		return err
	})
	require.NoError(t, err)
	peers, err = s.ListPeers(ctx)
	require.NoError(t, err)
	assert.Len(t, peers, 1)
}

func TestCanceledContext_IsStorageError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := openStore(t, t.TempDir(), "pass")

	_, _, err := s.FindPrimaryPeer(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPromotePeer(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := openStore(t, dir, "pass")

	owned, err := crypto.GenerateOwnedIdentity("kim")
	require.NoError(t, err)
	id, err := s.InsertPeer(ctx, domain.PeerFromIdentity(owned.Identity))
	require.NoError(t, err)

	other, err := crypto.GenerateOwnedIdentity("lee")
	require.NoError(t, err)
	err = s.PromotePeer(ctx, id, "kim", other.PrivateKey)
	assert.ErrorIs(t, err, domain.ErrStorage, "key must match the stored public key")

	err = s.PromotePeer(ctx, 99, "kim", owned.PrivateKey)
	assert.ErrorIs(t, err, domain.ErrStorage)

	require.NoError(t, s.PromotePeer(ctx, id, "kim2", owned.PrivateKey))

	reopened := openStore(t, dir, "pass")
	p, ok, err := reopened.FindPrimaryPeer(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "kim2", p.Alias)
	require.NotNil(t, p.PrivateKey)
	assert.Equal(t, owned.PrivateKey, *p.PrivateKey)

	remote := remotePeer(t, "max")
	rid, err := s.InsertPeer(ctx, remote)
	require.NoError(t, err)
	err = s.PromotePeer(ctx, rid, "max", owned.PrivateKey)
	assert.ErrorIs(t, err, domain.ErrStorage, "only one primary")
}

func TestTwoStoresShareDirectory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a := openStore(t, dir, "pass")
	b := openStore(t, dir, "pass")

	sender, err := crypto.GenerateOwnedIdentity("nia")
	require.NoError(t, err)
	peerID, err := a.InsertPeer(ctx, domain.PeerFromIdentity(sender.Identity))
	require.NoError(t, err)

	const perStore = 100
	msg := domain.Message{Sender: sender.Identity, Body: "hi", AuthoredDate: time.Now()}
	errs := make(chan error, 2*perStore)
	for _, s := range []*store.FileStore{a, b} {
		go func(s *store.FileStore) {
			for i := 0; i < perStore; i++ {
				_, err := s.InsertMessage(ctx, msg, peerID)
				errs <- err
			}
		}(s)
	}
	for i := 0; i < 2*perStore; i++ {
		require.NoError(t, <-errs)
	}

	for _, s := range []*store.FileStore{a, b} {
		msgs, err := s.ListMessages(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, msgs, 2*perStore)
		seen := make(map[domain.MessageID]bool, len(msgs))
		for _, m := range msgs {
			assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
			seen[m.ID] = true
		}
	}
}

func TestLockFileCreated(t *testing.T) {
	dir := t.TempDir()
	openStore(t, dir, "pass")
	_, err := os.Stat(filepath.Join(dir, ".lock"))
	assert.NoError(t, err)
}
