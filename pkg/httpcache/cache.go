// Package httpcache stores upstream HTTP responses for a fixed time-to-live.
// Entries live in badger, either on disk or in memory, with zstd-compressed bodies.
package httpcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
)

// Response is a cached upstream response.
type Response struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"-"`
	StoredAt   time.Time   `json:"stored_at"`
}

type record struct {
	Response
	Compressed []byte `json:"body"`
}

type Store struct {
	db      *badger.DB
	ttl     time.Duration
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

type Config struct {
	// Path of the badger directory. Empty keeps everything in memory.
	Path string
	TTL  time.Duration
}

func Open(cfg Config) (*Store, error) {
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", cfg.TTL)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	return &Store{
		db:      db,
		ttl:     cfg.TTL,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns the cached response for key. A missing or expired entry is reported with ok == false.
func (s *Store) Get(key string) (resp *Response, ok bool, err error) {
	var raw []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache read %q: %w", key, err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("cache decode %q: %w", key, err)
	}
	body, err := s.decoder.DecodeAll(rec.Compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("cache decompress %q: %w", key, err)
	}
	rec.Response.Body = body

	return &rec.Response, true, nil
}

// Set stores resp under key until the store TTL elapses.
func (s *Store) Set(key string, resp Response) error {
	if resp.StoredAt.IsZero() {
		resp.StoredAt = time.Now()
	}
	rec := record{
		Response:   resp,
		Compressed: s.encoder.EncodeAll(resp.Body, make([]byte, 0, len(resp.Body))),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), raw).WithTTL(s.ttl))
	})
}

func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *Store) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	return s.db.Close()
}
