package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/store/migrations"
)

// goose 的方言与 FS 是包级全局状态
var migrateMu sync.Mutex

// SQLiteStore 是单机持久化后端：物品目录、事件日志、会话状态放在同一个 sqlite 文件里。
//
// 会话状态按 version 列做乐观并发控制，版本不匹配时返回 core.ErrStateConflict。
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var (
	_ core.EventStore   = (*SQLiteStore)(nil)
	_ core.CatalogStore = (*SQLiteStore)(nil)
)

// NewSQLiteStore 打开或创建数据库并执行迁移
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertItems 写入或更新物品目录
func (s *SQLiteStore) UpsertItems(ctx context.Context, items []core.ItemMetadata) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (item_id, tags, category, brand, price, rating_count, rating_average, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			tags = excluded.tags,
			category = excluded.category,
			brand = excluded.brand,
			price = excluded.price,
			rating_count = excluded.rating_count,
			rating_average = excluded.rating_average,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, it := range items {
		tags, err := json.Marshal(it.Tags)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, it.ItemID, string(tags), it.Category, it.Brand, it.Price,
			it.RatingCount, it.RatingAverage, it.IsActive, now); err != nil {
			return fmt.Errorf("upsert item %s: %w", it.ItemID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListActiveItems(ctx context.Context) ([]core.ItemMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, tags, category, brand, price, rating_count, rating_average, is_active
		FROM items WHERE is_active = 1 ORDER BY item_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.ItemMetadata
	for rows.Next() {
		var (
			it   core.ItemMetadata
			tags string
		)
		if err := rows.Scan(&it.ItemID, &tags, &it.Category, &it.Brand, &it.Price,
			&it.RatingCount, &it.RatingAverage, &it.IsActive); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &it.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of %s: %w", it.ItemID, err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AppendEvent(ctx context.Context, ev core.InteractionEvent) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	ev.ID = newEventID(ev)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, user_id, item_id, decision, ts) VALUES (?, ?, ?, ?, ?)`,
		ev.ID, ev.UserID, ev.ItemID, string(ev.Decision), ev.Timestamp.UnixNano())
	return err
}

func (s *SQLiteStore) GetEvents(ctx context.Context, userID string, since time.Time) ([]core.InteractionEvent, error) {
	var lo int64
	if !since.IsZero() {
		lo = since.UnixNano()
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, item_id, decision, ts
		FROM events WHERE user_id = ? AND ts >= ?
		ORDER BY ts, id
	`, userID, lo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.InteractionEvent
	for rows.Next() {
		var (
			ev       core.InteractionEvent
			decision string
			ts       int64
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.ItemID, &decision, &ts); err != nil {
			return nil, err
		}
		ev.Decision = core.Decision(decision)
		ev.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}

// LoadState 读取会话状态，不存在时返回 core.ErrStoreNotFound
func (s *SQLiteStore) LoadState(ctx context.Context, userID string) (*core.SessionState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM sessions WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}

	var st core.SessionState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", userID, err)
	}
	if st.ShownItemIDs == nil {
		st.ShownItemIDs = core.NewSet()
	}
	return &st, nil
}

// SaveState 按版本条件写入会话状态
func (s *SQLiteStore) SaveState(ctx context.Context, st *core.SessionState, expectedVersion int64) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var res sql.Result
	if expectedVersion == 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO sessions (user_id, state, version, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(user_id) DO NOTHING
		`, st.UserID, string(data), st.Version, now)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE sessions SET state = ?, version = ?, updated_at = ?
			WHERE user_id = ? AND version = ?
		`, string(data), st.Version, now, st.UserID, expectedVersion)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrStateConflict
	}
	return nil
}
