package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"blechat/internal/crypto"
	"blechat/internal/domain"
	domaintypes "blechat/internal/domain/types"
)

const (
	peersFile    = "peers.json"
	messagesFile = "messages.json"
	lockFile     = ".lock"
	lockRetry    = 5 * time.Millisecond
	fileMode     = 0o600
	dirMode      = 0o700
)

var (
	errDuplicateKey  = errors.New("public key already stored")
	errPrimaryExists = errors.New("a primary peer already exists")
	errPeerNotFound  = errors.New("peer not found")
	errZeroKey       = errors.New("public key is empty")
	errKeyMismatch   = errors.New("private key does not match the peer's public key")
)

// FileStore persists peers and messages as JSON files under one directory.
// All methods are safe for concurrent use. Each operation holds an in-process
// mutex and an advisory lock on dir/.lock, so several processes may share
// one directory.
type FileStore struct {
	dir        string
	passphrase string
	kdf        kdfParams

	mu       sync.Mutex
	lock     *flock.Flock
	unsealed map[string]domain.PrivateKey
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithKDFCost overrides the scrypt parameters used when sealing a new key.
func WithKDFCost(n, r, p int) Option {
	return func(s *FileStore) { s.kdf = kdfParams{N: n, R: r, P: p} }
}

// NewFileStore opens (creating if needed) a store rooted at dir. If a primary
// peer exists its key is unsealed up front, so a wrong passphrase fails here
// with ErrWrongPassphrase.
func NewFileStore(dir, passphrase string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, domaintypes.StorageError("open store", err)
	}
	s := &FileStore{
		dir:        dir,
		passphrase: passphrase,
		kdf:        defaultKDF(),
		lock:       flock.New(filepath.Join(dir, lockFile)),
		unsealed:   make(map[string]domain.PrivateKey),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return nil, domaintypes.StorageError("open store", err)
	}
	defer s.lock.Unlock()
	st, err := s.load()
	if err != nil {
		return nil, domaintypes.StorageError("open store", err)
	}
	for _, rec := range st.peers.Peers {
		if rec.primary() {
			if _, err := s.unsealKey(rec); err != nil {
				return nil, domaintypes.StorageError("open store", err)
			}
		}
	}
	return s, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) load() (*state, error) {
	st := &state{}
	if err := readJSON(filepath.Join(s.dir, peersFile), &st.peers); err != nil {
		return nil, fmt.Errorf("read %s: %w", peersFile, err)
	}
	if err := readJSON(filepath.Join(s.dir, messagesFile), &st.messages); err != nil {
		return nil, fmt.Errorf("read %s: %w", messagesFile, err)
	}
	st.dropOrphans()
	return st, nil
}

func (s *FileStore) save(st *state) error {
	if st.dirtyPeers {
		if err := writeJSON(filepath.Join(s.dir, peersFile), st.peers, fileMode); err != nil {
			return fmt.Errorf("write %s: %w", peersFile, err)
		}
	}
	if st.dirtyMessages {
		if err := writeJSON(filepath.Join(s.dir, messagesFile), st.messages, fileMode); err != nil {
			return fmt.Errorf("write %s: %w", messagesFile, err)
		}
	}
	return nil
}

// unsealKey returns the private key of a primary record. Results are cached
// per sealed blob so scrypt runs once per process.
func (s *FileStore) unsealKey(rec peerRecord) (domain.PrivateKey, error) {
	if k, ok := s.unsealed[string(rec.SealedKey)]; ok {
		return k, nil
	}
	raw, err := unseal(s.passphrase, rec.SealedKey, rec.PublicKey)
	if err != nil {
		return domain.PrivateKey{}, err
	}
	defer crypto.Wipe(raw)
	k, err := domaintypes.PrivateKeyFromBytes(raw)
	if err != nil {
		return domain.PrivateKey{}, err
	}
	s.unsealed[string(rec.SealedKey)] = k
	return k, nil
}

// run loads a snapshot, applies fn and persists it if fn succeeds.
func (s *FileStore) run(ctx context.Context, op string, fn func(v *view) error) error {
	if err := ctx.Err(); err != nil {
		return domaintypes.StorageError(op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquire(ctx); err != nil {
		return domaintypes.StorageError(op, err)
	}
	defer s.lock.Unlock()

	st, err := s.load()
	if err != nil {
		return domaintypes.StorageError(op, err)
	}
	v := &view{s: s, st: st}
	if err := fn(v); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domaintypes.StorageError(op, err)
	}
	if err := s.save(st); err != nil {
		return domaintypes.StorageError(op, err)
	}
	v.commit()
	return nil
}

// acquire takes the directory lock, waiting until ctx is done.
func (s *FileStore) acquire(ctx context.Context) error {
	ok, err := s.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("lock %s: %w", lockFile, err)
	}
	if !ok {
		return fmt.Errorf("lock %s: not acquired", lockFile)
	}
	return nil
}

// WithinTx runs fn against a snapshot under the store lock. Changes are
// written only if fn returns nil.
func (s *FileStore) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, tx domain.Repository) error,
) error {
	return s.run(ctx, "commit", func(v *view) error { return fn(ctx, v) })
}

func (s *FileStore) FindPeerByPublicKey(ctx context.Context, key domain.PublicKey) (p domain.Peer, ok bool, err error) {
	err = s.run(ctx, "find peer", func(v *view) error {
		p, ok, err = v.FindPeerByPublicKey(ctx, key)
		return err
	})
	return p, ok, err
}

func (s *FileStore) FindPrimaryPeer(ctx context.Context) (p domain.Peer, ok bool, err error) {
	err = s.run(ctx, "find primary peer", func(v *view) error {
		p, ok, err = v.FindPrimaryPeer(ctx)
		return err
	})
	return p, ok, err
}

func (s *FileStore) InsertPeer(ctx context.Context, peer domain.Peer) (id domain.PeerID, err error) {
	err = s.run(ctx, "insert peer", func(v *view) error {
		id, err = v.InsertPeer(ctx, peer)
		return err
	})
	return id, err
}

func (s *FileStore) PromotePeer(ctx context.Context, id domain.PeerID, alias string, key domain.PrivateKey) error {
	return s.run(ctx, "promote peer", func(v *view) error {
		return v.PromotePeer(ctx, id, alias, key)
	})
}

func (s *FileStore) UpdatePeerSeenDate(ctx context.Context, id domain.PeerID, seen time.Time) error {
	return s.run(ctx, "update peer", func(v *view) error {
		return v.UpdatePeerSeenDate(ctx, id, seen)
	})
}

func (s *FileStore) InsertMessage(
	ctx context.Context,
	msg domain.Message,
	peerID domain.PeerID,
) (id domain.MessageID, err error) {
	err = s.run(ctx, "insert message", func(v *view) error {
		id, err = v.InsertMessage(ctx, msg, peerID)
		return err
	})
	return id, err
}

func (s *FileStore) DeletePeers(ctx context.Context, ids ...domain.PeerID) (n int, err error) {
	err = s.run(ctx, "delete peers", func(v *view) error {
		n, err = v.DeletePeers(ctx, ids...)
		return err
	})
	return n, err
}

func (s *FileStore) DeleteMessages(ctx context.Context, ids ...domain.MessageID) (n int, err error) {
	err = s.run(ctx, "delete messages", func(v *view) error {
		n, err = v.DeleteMessages(ctx, ids...)
		return err
	})
	return n, err
}

func (s *FileStore) ListPeers(ctx context.Context) (out []domain.Peer, err error) {
	err = s.run(ctx, "list peers", func(v *view) error {
		out, err = v.ListPeers(ctx)
		return err
	})
	return out, err
}

func (s *FileStore) ListMessages(ctx context.Context, limit int) (out []domain.StoredMessage, err error) {
	err = s.run(ctx, "list messages", func(v *view) error {
		out, err = v.ListMessages(ctx, limit)
		return err
	})
	return out, err
}

// view is the Repository handed to WithinTx callbacks. It works on the
// loaded snapshot; the FileStore locks are held for its whole lifetime.
// Key cache changes are staged and applied by commit once the snapshot is
// saved.
type view struct {
	s  *FileStore
	st *state

	added   map[string]domain.PrivateKey
	evicted []string
}

func (v *view) stageKey(blob []byte, k domain.PrivateKey) {
	if v.added == nil {
		v.added = make(map[string]domain.PrivateKey)
	}
	v.added[string(blob)] = k
}

func (v *view) commit() {
	for _, blob := range v.evicted {
		delete(v.s.unsealed, blob)
	}
	for blob, k := range v.added {
		v.s.unsealed[blob] = k
	}
}

func (v *view) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Repository) error) error {
	return fn(ctx, v)
}

func (v *view) peer(rec peerRecord) (domain.Peer, error) {
	pub, err := domaintypes.PublicKeyFromBytes(rec.PublicKey)
	if err != nil {
		return domain.Peer{}, err
	}
	p := domain.Peer{ID: rec.ID, Alias: rec.Alias, PublicKey: pub, DateSeen: rec.DateSeen}
	if rec.primary() {
		k, ok := v.added[string(rec.SealedKey)]
		if !ok {
			if k, err = v.s.unsealKey(rec); err != nil {
				return domain.Peer{}, err
			}
		}
		p.PrivateKey = &k
	}
	return p, nil
}

func (v *view) FindPeerByPublicKey(ctx context.Context, key domain.PublicKey) (domain.Peer, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Peer{}, false, domaintypes.StorageError("find peer", err)
	}
	for _, rec := range v.st.peers.Peers {
		if bytes.Equal(rec.PublicKey, key[:]) {
			p, err := v.peer(rec)
			return p, err == nil, domaintypes.StorageError("find peer", err)
		}
	}
	return domain.Peer{}, false, nil
}

func (v *view) FindPrimaryPeer(ctx context.Context) (domain.Peer, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Peer{}, false, domaintypes.StorageError("find primary peer", err)
	}
	for _, rec := range v.st.peers.Peers {
		if rec.primary() {
			p, err := v.peer(rec)
			return p, err == nil, domaintypes.StorageError("find primary peer", err)
		}
	}
	return domain.Peer{}, false, nil
}

func (v *view) InsertPeer(ctx context.Context, peer domain.Peer) (domain.PeerID, error) {
	const op = "insert peer"
	if err := ctx.Err(); err != nil {
		return 0, domaintypes.StorageError(op, err)
	}
	if peer.PublicKey.IsZero() {
		return 0, domaintypes.StorageError(op, errZeroKey)
	}
	for _, rec := range v.st.peers.Peers {
		if bytes.Equal(rec.PublicKey, peer.PublicKey[:]) {
			return 0, domaintypes.StorageError(op, errDuplicateKey)
		}
		if peer.IsPrimary() && rec.primary() {
			return 0, domaintypes.StorageError(op, errPrimaryExists)
		}
	}

	rec := peerRecord{
		ID:        v.st.peers.LastID + 1,
		Alias:     peer.Alias,
		PublicKey: append([]byte(nil), peer.PublicKey[:]...),
		DateSeen:  peer.DateSeen.UTC(),
	}
	if peer.PrivateKey != nil {
		blob, err := seal(v.s.passphrase, peer.PrivateKey[:], rec.PublicKey, v.s.kdf)
		if err != nil {
			return 0, domaintypes.StorageError(op, err)
		}
		rec.SealedKey = blob
		v.stageKey(blob, *peer.PrivateKey)
	}
	v.st.peers.LastID = rec.ID
	v.st.peers.Peers = append(v.st.peers.Peers, rec)
	v.st.dirtyPeers = true
	return rec.ID, nil
}

func (v *view) PromotePeer(ctx context.Context, id domain.PeerID, alias string, key domain.PrivateKey) error {
	const op = "promote peer"
	if err := ctx.Err(); err != nil {
		return domaintypes.StorageError(op, err)
	}
	i := v.st.peerIndex(id)
	if i < 0 {
		return domaintypes.StorageError(op, fmt.Errorf("%w: id %s", errPeerNotFound, id))
	}
	for _, rec := range v.st.peers.Peers {
		if rec.primary() {
			return domaintypes.StorageError(op, errPrimaryExists)
		}
	}
	rec := &v.st.peers.Peers[i]
	if pub := crypto.PublicKeyOf(key); !bytes.Equal(rec.PublicKey, pub[:]) {
		return domaintypes.StorageError(op, errKeyMismatch)
	}
	blob, err := seal(v.s.passphrase, key[:], rec.PublicKey, v.s.kdf)
	if err != nil {
		return domaintypes.StorageError(op, err)
	}
	rec.Alias = alias
	rec.SealedKey = blob
	v.stageKey(blob, key)
	v.st.dirtyPeers = true
	return nil
}

func (v *view) UpdatePeerSeenDate(ctx context.Context, id domain.PeerID, seen time.Time) error {
	const op = "update peer"
	if err := ctx.Err(); err != nil {
		return domaintypes.StorageError(op, err)
	}
	i := v.st.peerIndex(id)
	if i < 0 {
		return domaintypes.StorageError(op, fmt.Errorf("%w: id %s", errPeerNotFound, id))
	}
	v.st.peers.Peers[i].DateSeen = seen.UTC()
	v.st.dirtyPeers = true
	return nil
}

func (v *view) InsertMessage(ctx context.Context, msg domain.Message, peerID domain.PeerID) (domain.MessageID, error) {
	const op = "insert message"
	if err := ctx.Err(); err != nil {
		return 0, domaintypes.StorageError(op, err)
	}
	if v.st.peerIndex(peerID) < 0 {
		return 0, domaintypes.StorageError(op, fmt.Errorf("%w: id %s", errPeerNotFound, peerID))
	}
	rec := messageRecord{
		ID:           v.st.messages.LastID + 1,
		PeerID:       peerID,
		SenderAlias:  msg.Sender.Alias,
		Body:         msg.Body,
		AuthoredDate: msg.AuthoredDate.UTC(),
		ReceivedDate: msg.Sender.DateSeen.UTC(),
		Signature:    append([]byte(nil), msg.Signature[:]...),
	}
	v.st.messages.LastID = rec.ID
	v.st.messages.Messages = append(v.st.messages.Messages, rec)
	v.st.dirtyMessages = true
	return rec.ID, nil
}

func (v *view) DeletePeers(ctx context.Context, ids ...domain.PeerID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domaintypes.StorageError("delete peers", err)
	}
	drop := make(map[domain.PeerID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := v.st.peers.Peers[:0]
	for _, rec := range v.st.peers.Peers {
		if _, ok := drop[rec.ID]; ok {
			if rec.primary() {
				v.evicted = append(v.evicted, string(rec.SealedKey))
			}
			continue
		}
		kept = append(kept, rec)
	}
	n := len(v.st.peers.Peers) - len(kept)
	v.st.peers.Peers = kept
	if n > 0 {
		v.st.dirtyPeers = true
		v.st.dropOrphans()
	}
	return n, nil
}

func (v *view) DeleteMessages(ctx context.Context, ids ...domain.MessageID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domaintypes.StorageError("delete messages", err)
	}
	drop := make(map[domain.MessageID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := v.st.messages.Messages[:0]
	for _, rec := range v.st.messages.Messages {
		if _, ok := drop[rec.ID]; !ok {
			kept = append(kept, rec)
		}
	}
	n := len(v.st.messages.Messages) - len(kept)
	v.st.messages.Messages = kept
	if n > 0 {
		v.st.dirtyMessages = true
	}
	return n, nil
}

// ListPeers returns all peers ordered by id.
func (v *view) ListPeers(ctx context.Context) ([]domain.Peer, error) {
	if err := ctx.Err(); err != nil {
		return nil, domaintypes.StorageError("list peers", err)
	}
	out := make([]domain.Peer, 0, len(v.st.peers.Peers))
	for _, rec := range v.st.peers.Peers {
		p, err := v.peer(rec)
		if err != nil {
			return nil, domaintypes.StorageError("list peers", err)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListMessages returns the newest messages first. A limit of zero or less
// returns all of them.
func (v *view) ListMessages(ctx context.Context, limit int) ([]domain.StoredMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, domaintypes.StorageError("list messages", err)
	}
	recs := append([]messageRecord(nil), v.st.messages.Messages...)
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID > recs[j].ID })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	out := make([]domain.StoredMessage, 0, len(recs))
	for _, rec := range recs {
		i := v.st.peerIndex(rec.PeerID)
		if i < 0 {
			continue
		}
		pub, err := domaintypes.PublicKeyFromBytes(v.st.peers.Peers[i].PublicKey)
		if err != nil {
			return nil, domaintypes.StorageError("list messages", err)
		}
		var sig domain.Signature
		copy(sig[:], rec.Signature)
		out = append(out, domain.StoredMessage{
			Message: domain.Message{
				ID:           rec.ID,
				Sender:       domain.Identity{Alias: rec.SenderAlias, PublicKey: pub, DateSeen: rec.ReceivedDate},
				Body:         rec.Body,
				AuthoredDate: rec.AuthoredDate,
				Signature:    sig,
			},
			PeerID: rec.PeerID,
		})
	}
	return out, nil
}

// Compile-time assertions that FileStore and its transactional view implement domain.Repository.
var (
	_ domain.Repository = (*FileStore)(nil)
	_ domain.Repository = (*view)(nil)
)
