// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package devdax

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Inspector reports the real properties of device-dax devices. Queries must
// not have side effects.
type Inspector interface {
	// DevSize returns the size of the device in bytes.
	DevSize(path string) (uint64, error)

	// DevAlignment returns the alignment of the device in bytes.
	DevAlignment(path string) (uint64, error)

	// IsDevDax returns whether path is a device-dax character device.
	IsDevDax(path string) bool
}

// Verifier checks that a bound device is usable by a test.
type Verifier interface {
	Verify(ctx context.Context, path string) error
}

// DefaultCacheSize is the number of device properties kept by a
// CachingInspector when no size is given.
const DefaultCacheSize = 64

type cacheKey struct {
	path string
	prop string
}

// CachingInspector wraps an Inspector and remembers the sizes and
// alignments it reports. Matching queries the same handful of devices once
// per requirement ordering, and each query may run an external tool.
// Failed queries are not cached.
type CachingInspector struct {
	inspector Inspector
	cache     *lru.Cache[cacheKey, uint64]
	logger    hclog.Logger
}

// NewCachingInspector returns a CachingInspector holding at most size
// entries. A size of zero or less uses DefaultCacheSize.
func NewCachingInspector(logger hclog.Logger, inspector Inspector, size int) (*CachingInspector, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, uint64](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create inspection cache: %w", err)
	}
	return &CachingInspector{
		inspector: inspector,
		cache:     cache,
		logger:    logger.Named("inspect_cache"),
	}, nil
}

func (c *CachingInspector) DevSize(path string) (uint64, error) {
	return c.lookup(cacheKey{path, "size"}, c.inspector.DevSize)
}

func (c *CachingInspector) DevAlignment(path string) (uint64, error) {
	return c.lookup(cacheKey{path, "align"}, c.inspector.DevAlignment)
}

func (c *CachingInspector) IsDevDax(path string) bool {
	return c.inspector.IsDevDax(path)
}

// Purge forgets everything cached so far.
func (c *CachingInspector) Purge() {
	c.cache.Purge()
}

func (c *CachingInspector) lookup(key cacheKey, fn func(string) (uint64, error)) (uint64, error) {
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}

	v, err := fn(key.path)
	if err != nil {
		c.logger.Debug("device inspection failed", "path", key.path, "property", key.prop, "error", err)
		return 0, err
	}

	c.cache.Add(key, v)
	return v, nil
}
