package dataset

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"leadboard/domain/core"
	"leadboard/domain/leads"
	"leadboard/internal/errors"
	"leadboard/ports"

	"golang.org/x/sync/singleflight"
)

// CachedStore keeps the last loaded dataset in memory. An entry is reused while
// the file's size and modification time are unchanged and it is younger than ttl
// (ttl <= 0 disables the age check). Concurrent misses share one load.
type CachedStore struct {
	inner *FileStore
	ttl   time.Duration
	group singleflight.Group

	mu    sync.RWMutex
	entry *cacheEntry
	now   func() time.Time
}

type cacheEntry struct {
	ds       *leads.Dataset
	modTime  time.Time
	size     int64
	loadedAt time.Time
}

var _ ports.DatasetStore = (*CachedStore)(nil)

// NewCachedStore wraps inner with a read cache
func NewCachedStore(inner *FileStore, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, ttl: ttl, now: time.Now}
}

// Load returns the cached dataset or reloads it from disk
func (c *CachedStore) Load(ctx context.Context) (*leads.Dataset, error) {
	stat, err := os.Stat(c.inner.Path())
	if stderrors.Is(err, os.ErrNotExist) {
		c.Invalidate()
		return nil, errors.FileNotFound(c.inner.Path(), core.ErrDatasetAbsent)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat dataset file: %w", err)
	}

	if ds, ok := c.lookup(stat); ok {
		return ds, nil
	}

	// The shared load outlives any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := c.group.Do(c.inner.Path(), func() (interface{}, error) {
		ds, err := c.inner.Load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entry = &cacheEntry{ds: ds, modTime: stat.ModTime(), size: stat.Size(), loadedAt: c.now()}
		c.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("[CachedStore] Shared in-flight load of %s", c.inner.Path())
	}
	return v.(*leads.Dataset), nil
}

// Save writes through to the file store and drops the cached entry
func (c *CachedStore) Save(ctx context.Context, ds *leads.Dataset) error {
	if err := c.inner.Save(ctx, ds); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// Info reports file metadata, counting rows through the cache
func (c *CachedStore) Info(ctx context.Context) (*ports.DatasetInfo, error) {
	info := &ports.DatasetInfo{Path: c.inner.Path()}
	stat, err := os.Stat(c.inner.Path())
	if stderrors.Is(err, os.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat dataset file: %w", err)
	}
	info.Exists = true
	info.Size = stat.Size()
	info.ModifiedAt = stat.ModTime()

	ds, err := c.Load(ctx)
	if err != nil {
		return info, err
	}
	info.Rows = ds.Len()
	info.Columns = ds.Columns
	return info, nil
}

// Invalidate drops the cached entry
func (c *CachedStore) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
	c.group.Forget(c.inner.Path())
}

func (c *CachedStore) lookup(stat os.FileInfo) (*leads.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e := c.entry
	if e == nil || !e.modTime.Equal(stat.ModTime()) || e.size != stat.Size() {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.loadedAt) >= c.ttl {
		return nil, false
	}
	return e.ds, true
}
