package blob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const badgerKeyPrefix = "blob:"

type badgerRecord struct {
	Digest   string    `msgpack:"d"`
	Data     []byte    `msgpack:"b"`
	StoredAt time.Time `msgpack:"t"`
}

// BadgerBackend 单机嵌入式存储，值为 msgpack 编码的 badgerRecord
type BadgerBackend struct {
	db   *badger.DB
	stop chan struct{}
}

// NewBadgerBackend path 为空时使用内存模式
func NewBadgerBackend(path string, l *zap.Logger) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{l.Named("badger").Sugar()})
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("blob: open badger: %w", err)
	}
	b := &BadgerBackend{db: db, stop: make(chan struct{})}
	if path != "" {
		go b.gcLoop(5 * time.Minute)
	}
	return b, nil
}

func (b *BadgerBackend) gcLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			for b.db.RunValueLogGC(0.7) == nil {
			}
		}
	}
}

func (b *BadgerBackend) Put(_ context.Context, id string, data []byte, digest string) error {
	v, err := msgpack.Marshal(&badgerRecord{Digest: digest, Data: data, StoredAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+id), v)
	})
}

func (b *BadgerBackend) Get(_ context.Context, id string) ([]byte, error) {
	var rec badgerRecord
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errObjectMissing
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return msgpack.Unmarshal(v, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	if rec.Digest != "" && rec.Digest != digestOf(rec.Data) {
		return nil, fmt.Errorf("blob: badger record %s corrupted", id)
	}
	return rec.Data, nil
}

func (b *BadgerBackend) Delete(_ context.Context, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerKeyPrefix + id))
	})
}

func (b *BadgerBackend) Close() error {
	select {
	case <-b.stop:
	default:
		close(b.stop)
	}
	return b.db.Close()
}

type badgerLogger struct{ s *zap.SugaredLogger }

func (l badgerLogger) Errorf(f string, a ...interface{})   { l.s.Errorf(f, a...) }
func (l badgerLogger) Warningf(f string, a ...interface{}) { l.s.Warnf(f, a...) }
func (l badgerLogger) Infof(f string, a ...interface{})    { l.s.Debugf(f, a...) }
func (l badgerLogger) Debugf(f string, a ...interface{})   { l.s.Debugf(f, a...) }
