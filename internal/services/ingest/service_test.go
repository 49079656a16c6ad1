package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blechat/internal/crypto"
	"blechat/internal/domain"
	domaintypes "blechat/internal/domain/types"
	"blechat/internal/domain/mocks"
	"blechat/internal/metrics"
	"blechat/internal/platform/ratelimiter"
	"blechat/internal/protocol/packet"
	"blechat/internal/store"
)

func newRepo(t *testing.T) *store.FileStore {
	t.Helper()
	repo, err := store.NewFileStore(t.TempDir(), "pass", store.WithKDFCost(1<<10, 8, 1))
	require.NoError(t, err)
	return repo
}

func quietService(repo domain.Repository, opts ...Option) *Service {
	logger, _ := test.NewNullLogger()
	return New(repo, append([]Option{WithLogger(logger)}, opts...)...)
}

func sender(t *testing.T, alias string) domain.OwnedIdentity {
	t.Helper()
	id, err := crypto.GenerateOwnedIdentity(alias)
	require.NoError(t, err)
	return id
}

func identityPacket(t *testing.T, id domain.OwnedIdentity) []byte {
	t.Helper()
	b, err := packet.CreateIdentityResponse(id)
	require.NoError(t, err)
	return b
}

func messagePacket(t *testing.T, id domain.OwnedIdentity, body string) []byte {
	t.Helper()
	b, err := packet.CreatePublicMessageResponse(id, body)
	require.NoError(t, err)
	return b
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

func TestConsumeReceivedIdentity_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := quietService(repo, WithClock(func() time.Time { return clock }))

	alice := sender(t, "alice")
	b := identityPacket(t, alice)

	first, err := svc.ConsumeReceivedIdentity(ctx, b)
	require.NoError(t, err)
	assert.False(t, first.IsPrimary())
	assert.Equal(t, "alice", first.Alias)
	assert.Equal(t, alice.PublicKey, first.PublicKey)

	clock = clock.Add(time.Hour)
	second, err := svc.ConsumeReceivedIdentity(ctx, identityPacket(t, alice))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, clock.Equal(second.DateSeen))

	peers, err := repo.ListPeers(ctx)
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.True(t, clock.Equal(peers[0].DateSeen))
}

func TestScenario_MessageFromUnseenSender(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	svc := quietService(repo)

	erin := sender(t, "erin")
	msg, err := svc.ConsumeReceivedBroadcastMessage(ctx, messagePacket(t, erin, "hello world"))
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "hello world", msg.Body)
	assert.Equal(t, erin.PublicKey, msg.Sender.PublicKey)

	peers, err := repo.ListPeers(ctx)
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.False(t, peers[0].IsPrimary())
	assert.Equal(t, erin.PublicKey, peers[0].PublicKey)

	msgs, err := repo.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, msg.ID, msgs[0].ID)
	assert.Equal(t, peers[0].ID, msgs[0].PeerID)
}

func TestMessages_NotDeduplicated(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	svc := quietService(repo)

	frank := sender(t, "frank")
	peer, err := svc.ConsumeReceivedIdentity(ctx, identityPacket(t, frank))
	require.NoError(t, err)

	b := messagePacket(t, frank, "same bytes")
	m1, err := svc.ConsumeReceivedBroadcastMessage(ctx, b)
	require.NoError(t, err)
	m2, err := svc.ConsumeReceivedBroadcastMessage(ctx, b)
	require.NoError(t, err)
	assert.NotEqual(t, m1.ID, m2.ID)

	peers, err := repo.ListPeers(ctx)
	require.NoError(t, err)
	assert.Len(t, peers, 1)

	msgs, err := repo.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.Equal(t, peer.ID, m.PeerID)
	}
}

func TestRejectsBadPackets(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	m := metrics.New()
	svc := quietService(repo, WithMetrics(m))

	gina := sender(t, "gina")
	idFrame := identityPacket(t, gina)
	msgFrame := messagePacket(t, gina, "x")

	_, err := svc.ConsumeReceivedIdentity(ctx, idFrame[:10])
	assert.ErrorIs(t, err, domain.ErrTruncatedPacket)

	tampered := append([]byte(nil), msgFrame...)
	tampered[len(tampered)-1] ^= 1
	_, err = svc.ConsumeReceivedBroadcastMessage(ctx, tampered)
	assert.ErrorIs(t, err, domain.ErrMalformedPacket)

	_, err = svc.ConsumeReceivedBroadcastMessage(ctx, idFrame)
	assert.ErrorIs(t, err, domain.ErrTruncatedPacket)

	peers, err := repo.ListPeers(ctx)
	require.NoError(t, err)
	assert.Empty(t, peers)
	assert.Equal(t, 3.0, counterValue(t, m.Registry(), "blechat_packets_total"))
	assert.Zero(t, counterValue(t, m.Registry(), "blechat_peers_created_total"))
}

func TestMetrics_CountsCreatedAndStored(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	svc := quietService(newRepo(t), WithMetrics(m))

	hank := sender(t, "hank")
	_, err := svc.ConsumeReceivedIdentity(ctx, identityPacket(t, hank))
	require.NoError(t, err)
	_, err = svc.ConsumeReceivedBroadcastMessage(ctx, messagePacket(t, hank, "a"))
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, m.Registry(), "blechat_peers_created_total"))
	assert.Equal(t, 1.0, counterValue(t, m.Registry(), "blechat_messages_stored_total"))
	assert.Equal(t, 2.0, counterValue(t, m.Registry(), "blechat_packets_total"))
}

func TestConcurrentIngest_SameKeyCreatesOnePeer(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	svc := quietService(repo)
	ivy := sender(t, "ivy")
	idFrame := identityPacket(t, ivy)
	msgFrame := messagePacket(t, ivy, "hi")

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.ConsumeReceivedIdentity(ctx, idFrame)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.ConsumeReceivedBroadcastMessage(ctx, msgFrame)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	peers, err := repo.ListPeers(ctx)
	require.NoError(t, err)
	assert.Len(t, peers, 1)
	msgs, err := repo.ListMessages(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 16)
}

func TestRateLimit(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := quietService(repo,
		WithLimiter(ratelimiter.New(1, 1, time.Minute)),
		WithClock(func() time.Time { return now }))

	jack := sender(t, "jack")
	_, err := svc.ConsumeReceivedBroadcastMessage(ctx, messagePacket(t, jack, "one"))
	require.NoError(t, err)
	_, err = svc.ConsumeReceivedBroadcastMessage(ctx, messagePacket(t, jack, "two"))
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	_, err = svc.ConsumeReceivedBroadcastMessage(ctx, messagePacket(t, sender(t, "kim"), "other sender"))
	require.NoError(t, err)

	msgs, err := repo.ListMessages(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func passThroughTx(repo *mocks.MockRepository) *gomock.Call {
	return repo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, domain.Repository) error) error {
			return fn(ctx, repo)
		})
}

func TestDeadline_IsRetryable(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := quietService(repo)

	passThroughTx(repo)
	repo.EXPECT().FindPeerByPublicKey(gomock.Any(), gomock.Any()).
		Return(domain.Peer{}, false, domaintypes.StorageError("find peer", context.DeadlineExceeded))

	_, err := svc.ConsumeReceivedIdentity(context.Background(), identityPacket(t, sender(t, "lee")))
	assert.ErrorIs(t, err, domain.ErrRetryable)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExpiredContext_FileStore_IsRetryable(t *testing.T) {
	svc := quietService(newRepo(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ConsumeReceivedBroadcastMessage(ctx, messagePacket(t, sender(t, "max"), "late"))
	assert.ErrorIs(t, err, domain.ErrRetryable)
}

func TestStorageError_Propagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	logger, hook := test.NewNullLogger()
	svc := New(repo, WithLogger(logger))

	nina := sender(t, "nina")
	peer := domain.Peer{ID: 5, Alias: "nina", PublicKey: nina.PublicKey}
	storageErr := domaintypes.StorageError("insert message", assert.AnError)

	passThroughTx(repo)
	repo.EXPECT().FindPeerByPublicKey(gomock.Any(), nina.PublicKey).Return(peer, true, nil)
	repo.EXPECT().UpdatePeerSeenDate(gomock.Any(), domain.PeerID(5), gomock.Any()).Return(nil)
	repo.EXPECT().InsertMessage(gomock.Any(), gomock.Any(), domain.PeerID(5)).Return(domain.MessageID(0), storageErr)

	_, err := svc.ConsumeReceivedBroadcastMessage(context.Background(), messagePacket(t, nina, "x"))
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.NotErrorIs(t, err, domain.ErrRetryable)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "packet not stored", entry.Message)
	assert.Equal(t, domaintypes.CodeStorage, entry.Data["code"])
}

func TestKnownSender_UpdatesSeenDateOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	seen := time.Date(2026, 2, 2, 2, 2, 2, 0, time.UTC)
	svc := quietService(repo, WithClock(func() time.Time { return seen }))

	olga := sender(t, "olga")
	stored := domain.Peer{ID: 9, Alias: "olga", PublicKey: olga.PublicKey}

	passThroughTx(repo)
	repo.EXPECT().FindPeerByPublicKey(gomock.Any(), olga.PublicKey).Return(stored, true, nil)
	repo.EXPECT().UpdatePeerSeenDate(gomock.Any(), domain.PeerID(9), seen).Return(nil)

	got, err := svc.ConsumeReceivedIdentity(context.Background(), identityPacket(t, olga))
	require.NoError(t, err)
	assert.Equal(t, domain.PeerID(9), got.ID)
	assert.True(t, seen.Equal(got.DateSeen))
}
