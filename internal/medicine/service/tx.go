package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	dErrors "medcycle/pkg/domain-errors"
)

// recordTx serializes the read-validate-write-audit sequence per medicine so
// two reviewers cannot both move the same SUBMITTED record into different
// terminal states. Locks are sharded by record ID hash; operations on
// different records proceed independently. A database-backed store gets the
// same guarantee from row-level atomicity, and this lock keeps the in-memory
// path honest.
const numRecordShards = 64

type recordTx struct {
	shards [numRecordShards]sync.Mutex
}

func newRecordTx() *recordTx {
	return &recordTx{}
}

func (t *recordTx) Run(ctx context.Context, recordID uuid.UUID, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	shard := hashUUID(recordID) % numRecordShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn()
}

// hashUUID uses FNV-1a over the raw bytes for even shard distribution.
func hashUUID(id uuid.UUID) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for _, b := range id {
		h ^= uint32(b)
		h *= fnvPrime
	}
	return h
}
