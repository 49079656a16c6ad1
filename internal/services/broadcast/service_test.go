package broadcast

import (
	"context"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blechat/internal/crypto"
	"blechat/internal/domain"
	"blechat/internal/domain/mocks"
	"blechat/internal/protocol/packet"
)

type staticIdentity struct {
	id  domain.OwnedIdentity
	err error
}

func (s staticIdentity) OwnedIdentity(context.Context) (domain.OwnedIdentity, error) {
	return s.id, s.err
}

func newIdentity(t *testing.T, alias string) staticIdentity {
	t.Helper()
	id, err := crypto.GenerateOwnedIdentity(alias)
	require.NoError(t, err)
	return staticIdentity{id: id}
}

func quiet() Option {
	logger, _ := test.NewNullLogger()
	return WithLogger(logger)
}

func TestIdentityAnnouncement_Decodes(t *testing.T) {
	src := newIdentity(t, "alice")
	svc := New(src, quiet())

	b, err := svc.IdentityAnnouncement(context.Background())
	require.NoError(t, err)

	got, err := packet.ConsumeIdentityResponse(b)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Alias)
	assert.Equal(t, src.id.PublicKey, got.PublicKey)
}

func TestPublicMessage_DecodesAndBounds(t *testing.T) {
	src := newIdentity(t, "bob")
	svc := New(src, quiet())

	b, err := svc.PublicMessage(context.Background(), "hello")
	require.NoError(t, err)
	got, err := packet.ConsumeMessageResponse(b)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Body)
	assert.Equal(t, src.id.PublicKey, got.Sender.PublicKey)

	_, err = svc.PublicMessage(context.Background(), strings.Repeat("x", domain.MessageBodyLength+1))
	assert.ErrorIs(t, err, domain.ErrEncoding)
}

func TestNoPrimaryIdentity(t *testing.T) {
	svc := New(staticIdentity{err: domain.ErrNoPrimaryIdentity}, quiet())
	_, err := svc.IdentityAnnouncement(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoPrimaryIdentity)
	_, err = svc.PublicMessage(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrNoPrimaryIdentity)
}

func TestAnnounceAndPost_UseTransport(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := mocks.NewMockTransport(ctrl)
	src := newIdentity(t, "carol")
	svc := New(src, quiet(), WithTransport(tr))

	tr.EXPECT().Broadcast(gomock.Any(), domain.PacketKindIdentity, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.PacketKind, b []byte) error {
			assert.Len(t, b, packet.IdentityFrameLength)
			return nil
		})
	tr.EXPECT().Broadcast(gomock.Any(), domain.PacketKindMessage, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.PacketKind, b []byte) error {
			msg, err := packet.ConsumeMessageResponse(b)
			require.NoError(t, err)
			assert.Equal(t, "posted", msg.Body)
			return nil
		})

	require.NoError(t, svc.Announce(context.Background()))
	require.NoError(t, svc.Post(context.Background(), "posted"))
}

func TestAnnounce_TransportErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := mocks.NewMockTransport(ctrl)
	svc := New(newIdentity(t, "dave"), quiet(), WithTransport(tr))

	tr.EXPECT().Broadcast(gomock.Any(), gomock.Any(), gomock.Any()).Return(assert.AnError)
	assert.ErrorIs(t, svc.Announce(context.Background()), assert.AnError)
}

func TestNoTransport(t *testing.T) {
	svc := New(newIdentity(t, "erin"), quiet())
	assert.ErrorIs(t, svc.Announce(context.Background()), ErrNoTransport)
	assert.ErrorIs(t, svc.Post(context.Background(), "x"), ErrNoTransport)
}
