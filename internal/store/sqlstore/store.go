// Package sqlstore implements domain.Repository on PostgreSQL using bun.
package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"blechat/internal/crypto"
	"blechat/internal/domain"
	domaintypes "blechat/internal/domain/types"
)

var ErrPeerNotFound = errors.New("peer not found")

// Store is a Repository backed by a bun database handle. Inside WithinTx the
// handle is the transaction and root is nil.
type Store struct {
	db   bun.IDB
	root *bun.DB
}

// Open connects to dsn, checks the connection and creates missing tables.
func Open(ctx context.Context, dsn string) (*Store, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqlDB, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, wrap("Open.Ping", err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection. The schema is not touched.
func New(db *bun.DB) *Store {
	return &Store{db: db, root: db}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.root == nil {
		return nil
	}
	return s.root.Close()
}

// Migrate creates the tables and indexes if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*peerModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return wrap("Migrate.CreatePeers", err)
	}
	if _, err := s.db.NewCreateTable().
		Model((*messageModel)(nil)).
		IfNotExists().
		ForeignKey(`("peer_id") REFERENCES "peers" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return wrap("Migrate.CreateMessages", err)
	}
	for _, stmt := range []string{
		// At most one row may hold a private key.
		`CREATE UNIQUE INDEX IF NOT EXISTS peers_single_primary ON peers ((true)) WHERE private_key IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS messages_peer_id ON messages (peer_id)`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return wrap("Migrate.Index", err)
		}
	}
	log.Debug("sqlstore: schema ready")
	return nil
}

// wrap annotates err with op and classifies it as a storage failure.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return domaintypes.StorageError(op, errors.Wrap(err, "sqlstore."+op))
}

// WithinTx runs fn in a serializable transaction. Nested calls join the
// outer transaction.
func (s *Store) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, tx domain.Repository) error,
) error {
	if s.root == nil {
		return fn(ctx, s)
	}
	err := s.root.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable},
		func(ctx context.Context, tx bun.Tx) error {
			return fn(ctx, &Store{db: tx})
		})
	if err != nil && domaintypes.CodeOf(err) == "" {
		return wrap("WithinTx.Commit", err)
	}
	return err
}

func (s *Store) findPeer(ctx context.Context, op string, q func(*bun.SelectQuery) *bun.SelectQuery) (domain.Peer, bool, error) {
	m := new(peerModel)
	err := q(s.db.NewSelect().Model(m)).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Peer{}, false, nil
	}
	if err != nil {
		return domain.Peer{}, false, wrap(op, err)
	}
	p, err := m.toDomain()
	if err != nil {
		return domain.Peer{}, false, wrap(op, err)
	}
	return p, true, nil
}

func (s *Store) FindPeerByPublicKey(ctx context.Context, key domain.PublicKey) (domain.Peer, bool, error) {
	return s.findPeer(ctx, "FindPeerByPublicKey.Scan", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("public_key = ?", key[:])
	})
}

func (s *Store) FindPrimaryPeer(ctx context.Context) (domain.Peer, bool, error) {
	return s.findPeer(ctx, "FindPrimaryPeer.Scan", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("private_key IS NOT NULL")
	})
}

func (s *Store) InsertPeer(ctx context.Context, peer domain.Peer) (domain.PeerID, error) {
	m := peerToModel(peer)
	if _, err := s.db.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		return 0, wrap("InsertPeer.Exec", err)
	}
	return domain.PeerID(m.ID), nil
}

// PromotePeer attaches key to peer id. The peer must not be primary already
// and its public key must match key.
func (s *Store) PromotePeer(ctx context.Context, id domain.PeerID, alias string, key domain.PrivateKey) error {
	pub := crypto.PublicKeyOf(key)
	res, err := s.db.NewUpdate().
		Model((*peerModel)(nil)).
		Set("alias = ?", alias).
		Set("private_key = ?", key[:]).
		Where("id = ?", int64(id)).
		Where("public_key = ?", pub[:]).
		Where("private_key IS NULL").
		Exec(ctx)
	if err != nil {
		return wrap("PromotePeer.Exec", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return wrap("PromotePeer.Exec", errors.Wrapf(ErrPeerNotFound, "non-primary id %s", id))
	}
	return nil
}

func (s *Store) UpdatePeerSeenDate(ctx context.Context, id domain.PeerID, seen time.Time) error {
	res, err := s.db.NewUpdate().
		Model((*peerModel)(nil)).
		Set("date_seen = ?", seen.UTC()).
		Where("id = ?", int64(id)).
		Exec(ctx)
	if err != nil {
		return wrap("UpdatePeerSeenDate.Exec", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return wrap("UpdatePeerSeenDate.Exec", errors.Wrapf(ErrPeerNotFound, "id %s", id))
	}
	return nil
}

func (s *Store) InsertMessage(ctx context.Context, msg domain.Message, peerID domain.PeerID) (domain.MessageID, error) {
	m := messageToModel(msg, peerID)
	if _, err := s.db.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		return 0, wrap("InsertMessage.Exec", err)
	}
	return domain.MessageID(m.ID), nil
}

func (s *Store) DeletePeers(ctx context.Context, ids ...domain.PeerID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	res, err := s.db.NewDelete().Model((*peerModel)(nil)).Where("id IN (?)", bun.In(raw)).Exec(ctx)
	if err != nil {
		return 0, wrap("DeletePeers.Exec", err)
	}
	n, err := res.RowsAffected()
	return int(n), wrap("DeletePeers.RowsAffected", err)
}

func (s *Store) DeleteMessages(ctx context.Context, ids ...domain.MessageID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	res, err := s.db.NewDelete().Model((*messageModel)(nil)).Where("id IN (?)", bun.In(raw)).Exec(ctx)
	if err != nil {
		return 0, wrap("DeleteMessages.Exec", err)
	}
	n, err := res.RowsAffected()
	return int(n), wrap("DeleteMessages.RowsAffected", err)
}

// ListPeers returns all peers ordered by id.
func (s *Store) ListPeers(ctx context.Context) ([]domain.Peer, error) {
	var ms []peerModel
	if err := s.db.NewSelect().Model(&ms).Order("p.id ASC").Scan(ctx); err != nil {
		return nil, wrap("ListPeers.Scan", err)
	}
	out := make([]domain.Peer, 0, len(ms))
	for i := range ms {
		p, err := ms[i].toDomain()
		if err != nil {
			return nil, wrap("ListPeers.Decode", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ListMessages returns the newest messages first; limit <= 0 means all.
func (s *Store) ListMessages(ctx context.Context, limit int) ([]domain.StoredMessage, error) {
	var ms []messageModel
	q := s.db.NewSelect().Model(&ms).Relation("Peer").Order("m.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, wrap("ListMessages.Scan", err)
	}
	out := make([]domain.StoredMessage, 0, len(ms))
	for i := range ms {
		m, err := ms[i].toDomain()
		if err != nil {
			return nil, wrap("ListMessages.Decode", err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Compile-time assertion that Store implements domain.Repository.
var _ domain.Repository = (*Store)(nil)
