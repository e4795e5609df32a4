package simcache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/fincompass/goalengine/internal/simulation"
)

// snapshotRecord is the on-disk form of one cache entry.
type snapshotRecord struct {
	Fingerprint string
	ExpiresAt   time.Time
	Result      *simulation.Result
}

type snapshotFile struct {
	SavedAt time.Time
	Records []snapshotRecord
}

// SaveSnapshot persists the current non-expired entries to path as msgpack,
// written atomically via a temp file. Persistence is best-effort: the cache
// is a performance layer and a failed save only costs warm-start hits.
func (c *Cache) SaveSnapshot(path string) error {
	now := time.Now()

	c.mu.Lock()
	records := make([]snapshotRecord, 0, len(c.entries))
	for fp, e := range c.entries {
		if now.Before(e.expiresAt) {
			records = append(records, snapshotRecord{
				Fingerprint: string(fp),
				ExpiresAt:   e.expiresAt,
				Result:      e.result,
			})
		}
	}
	c.mu.Unlock()

	encoded, err := msgpack.Marshal(snapshotFile{SavedAt: now, Records: records})
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	c.logger.Debug("cache snapshot saved",
		zap.String("op", "simcache.SaveSnapshot"),
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return nil
}

// LoadSnapshot restores entries from a previous SaveSnapshot. Missing files,
// undecodable contents, and expired records are all skipped silently; a stale
// or corrupt snapshot must never fail engine startup.
func (c *Cache) LoadSnapshot(path string) {
	encoded, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache snapshot unreadable, starting cold",
				zap.String("op", "simcache.LoadSnapshot"),
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return
	}

	var file snapshotFile
	if err := msgpack.Unmarshal(encoded, &file); err != nil {
		c.logger.Warn("cache snapshot corrupt, starting cold",
			zap.String("op", "simcache.LoadSnapshot"),
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}

	now := time.Now()
	restored := 0
	c.mu.Lock()
	for _, record := range file.Records {
		if record.Result == nil || !now.Before(record.ExpiresAt) {
			continue
		}
		fp := Fingerprint(record.Fingerprint)
		if _, ok := c.entries[fp]; ok {
			continue
		}
		c.entries[fp] = &entry{
			result:    record.Result,
			expiresAt: record.ExpiresAt,
			element:   c.lru.PushBack(fp),
		}
		restored++
		if len(c.entries) >= c.capacity {
			break
		}
	}
	c.mu.Unlock()

	c.logger.Info("cache snapshot restored",
		zap.String("op", "simcache.LoadSnapshot"),
		zap.String("path", path),
		zap.Int("restored", restored),
		zap.Int("skipped", len(file.Records)-restored),
	)
}
