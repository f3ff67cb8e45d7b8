package checkers

import (
	"context"
	"time"

	"github.com/artem13815/recruitment/pkg/storage/files"
)

// StorageChecker probes the resume store (write access for local, bucket access for S3).
type StorageChecker struct {
	store files.Storage
}

func NewStorageChecker(store files.Storage) *StorageChecker {
	return &StorageChecker{store: store}
}

func (c *StorageChecker) Name() string { return "storage" }

func (c *StorageChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.store.Check(ctx)
}
