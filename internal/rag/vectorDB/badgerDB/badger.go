package badgerDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/niexiaoning/deep-searcher/internal/rag/vectorDB"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
	"github.com/vmihailenco/msgpack/v5"
)

// Store is an embedded vector store for running without Qdrant. It keeps
// collections and their chunks in insertion order and does no indexing.
type Store struct {
	db     *badger.DB
	mu     sync.Mutex //serialises sequence allocation per collection
	logger *logger_i.Logger
}

var _ vectorDB.VectorStore = (*Store)(nil)

type badgerLoggerAdapter struct {
	logger *logger_i.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens the store at path, or in memory when path is empty. The
// database is closed when ctx is cancelled.
func Open(ctx context.Context, path string) (*Store, error) {
	logger := logger_i.NewLogger("badger_store")

	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = &badgerLoggerAdapter{logger: logger}

	db, err := badger.Open(opts)
	if err != nil {
		logger.Error("could not open badger", "path", path, "error", err)
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	logger.Info("Local vector store opened", "path", path, "inMemory", path == "")

	s := &Store{db: db, logger: logger}
	go func() {
		<-ctx.Done()
		if err := s.Close(); err != nil {
			logger.Error("could not close badger", "error", err)
		}
	}()
	return s, nil
}

func (s *Store) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

func (s *Store) InitCollection(ctx context.Context, dim int, collection, description string, forceNew bool) error {
	if err := vectorDB.ValidateInit(dim, collection); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.GetCollection(collection)
	switch {
	case err == nil && !forceNew:
		return vectorDB.CheckDimension(collection, existing.Dimension, dim)
	case err == nil && forceNew:
		s.logger.Info("Dropping existing collection", "collection", collection)
		if err := s.db.DropPrefix(chunkPrefix(collection)); err != nil {
			return fmt.Errorf("dropping collection chunks: %w", err)
		}
	case !errors.Is(err, vectorDB.ErrCollectionNotFound):
		return err
	}

	desc := commonModels.CollectionDescriptor{Name: collection, Description: description, Dimension: dim}
	return s.db.Update(func(txn *badger.Txn) error {
		return putMsgpack(txn, collectionKey(collection), desc)
	})
}

func (s *Store) InsertData(ctx context.Context, collection string, chunks []commonModels.DocChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc, err := s.GetCollection(collection)
	if err != nil {
		return err
	}
	if err := vectorDB.CheckVectors(chunks, desc.Dimension); err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := msgpack.Marshal(c)
		if err != nil {
			return fmt.Errorf("encoding chunk %s: %w", c.ChunkId, err)
		}
		if err := wb.Set(chunkKey(collection, desc.Count+i), data); err != nil {
			return fmt.Errorf("writing chunk %s: %w", c.ChunkId, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flushing chunks: %w", err)
	}

	desc.Count += len(chunks)
	if err := s.db.Update(func(txn *badger.Txn) error {
		return putMsgpack(txn, collectionKey(collection), desc)
	}); err != nil {
		return err
	}
	s.logger.Info("Inserted chunks", "collection", collection, "count", len(chunks), "total", desc.Count)
	return nil
}

func (s *Store) GetCollection(collection string) (commonModels.CollectionDescriptor, error) {
	var desc commonModels.CollectionDescriptor
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(collectionKey(collection))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", vectorDB.ErrCollectionNotFound, collection)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &desc)
		})
	})
	return desc, err
}

// ListChunks returns the stored chunks of collection in insertion order.
func (s *Store) ListChunks(collection string) ([]commonModels.DocChunk, error) {
	if _, err := s.GetCollection(collection); err != nil {
		return nil, err
	}
	var out []commonModels.DocChunk
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = chunkPrefix(collection)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var c commonModels.DocChunk
			if err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &c)
			}); err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	})
	return out, err
}

func putMsgpack(txn *badger.Txn, key []byte, v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func collectionKey(name string) []byte {
	return []byte("collection/" + name)
}

// chunkPrefix carries the name length so no collection's prefix covers
// another one, e.g. "team" and "team/docs".
func chunkPrefix(collection string) []byte {
	return fmt.Appendf(nil, "chunk/%d/%s/", len(collection), collection)
}

func chunkKey(collection string, seq int) []byte {
	return fmt.Appendf(chunkPrefix(collection), "%012d", seq)
}
