package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/session"
	"github.com/rushteam/swipekit/store"
)

// redisEventLimit 是 Redis 后端每个用户保留的事件数
const redisEventLimit = 10000

// backend 按 storage.backend 组装的协作方
type backend struct {
	catalog core.CatalogStore
	events  core.EventStore
	states  session.StateStore
	// kv 存放屏蔽名单；sqlite 后端为 nil
	kv     core.Store
	sqlite *store.SQLiteStore

	closers []func() error
}

func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openBackend(cfg core.Config) (*backend, error) {
	b := &backend{}

	switch cfg.Storage.Backend {
	case "", "memory":
		kv := store.NewMemoryStore()
		b.closers = append(b.closers, kv.Close)
		b.kv = kv
		b.events = store.NewMemoryEventStore()
		b.states = session.NewKVStateStore(kv, cfg.Session.StateTTL)

	case "redis":
		rs, err := store.NewRedisStore(cfg.Storage.Redis)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, rs.Close)
		b.kv = rs
		b.events = store.NewRedisEventStore(rs.Client(), rs.Prefix(), redisEventLimit)
		b.states = session.NewKVStateStore(rs, cfg.Session.StateTTL)

	case "sqlite":
		db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		b.sqlite = db
		b.catalog = db
		b.events = db
		b.states = db

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Storage.CatalogFile != "" {
		items, err := store.LoadCatalogYAML(cfg.Storage.CatalogFile)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.catalog = store.NewMemoryCatalog(items...)
	}
	if b.catalog == nil {
		b.Close()
		return nil, fmt.Errorf("storage backend %q needs storage.catalog_file", cfg.Storage.Backend)
	}
	return b, nil
}

// importItems 把目录文件写入 sqlite；vocab 非空时任一物品含未登记标签即整体拒绝
func (b *backend) importItems(ctx context.Context, path string, vocab *core.TagVocabulary) (int, error) {
	if b.sqlite == nil {
		return 0, core.ErrStoreNotSupported.Wrap(fmt.Errorf("import-items requires the sqlite backend"))
	}
	items, err := store.LoadCatalogYAML(path)
	if err != nil {
		return 0, err
	}
	if vocab != nil {
		for _, it := range items {
			if err := vocab.Validate(it.Tags); err != nil {
				return 0, fmt.Errorf("item %s: %w", it.ItemID, err)
			}
		}
	}
	if err := b.sqlite.UpsertItems(ctx, items); err != nil {
		return 0, fmt.Errorf("upsert items: %w", err)
	}
	return len(items), nil
}
