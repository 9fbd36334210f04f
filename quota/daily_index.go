package quota

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// resetBatchSize bounds one DEL / SREM command during bulk reset so a
// large day never produces an oversized store command
const resetBatchSize = 500

// ResetDailyCounters deletes every day-scoped counter recorded in the
// daily index and clears the index. Idempotent: a second run finds an
// empty index and reports zero. Safe against live traffic and against
// keys that expired between the index read and the delete; deleting an
// absent key counts as zero, not as an error.
//
// Returns the number of keys actually deleted.
func (e *Engine) ResetDailyCounters(ctx context.Context) (int, error) {
	if !e.config.Enabled {
		return 0, nil
	}

	members, err := e.storeSMembers(ctx, DailyIndexKey)
	if err != nil {
		return 0, fmt.Errorf("%w: read daily index: %v", ErrStoreUnavailable, err)
	}

	if len(members) == 0 {
		e.logger.DebugCtx(ctx, "daily reset: index empty, nothing to do")
		return 0, nil
	}

	var deleted int64
	for start := 0; start < len(members); start += resetBatchSize {
		end := start + resetBatchSize
		if end > len(members) {
			end = len(members)
		}
		batch := members[start:end]

		n, err := e.storeDel(ctx, batch...)
		if err != nil {
			return int(deleted), fmt.Errorf("%w: delete batch: %v", ErrStoreUnavailable, err)
		}
		deleted += n

		if err := e.storeSRem(ctx, DailyIndexKey, batch...); err != nil {
			return int(deleted), fmt.Errorf("%w: trim daily index: %v", ErrStoreUnavailable, err)
		}
	}

	e.logger.InfoCtx(ctx, "🧹 daily counters reset",
		zap.Int("indexed", len(members)),
		zap.Int64("deleted", deleted))

	if e.otel != nil {
		e.otel.RecordResetDeleted(ctx, int(deleted))
	}
	if e.eventBus != nil {
		e.eventBus.Publish(&DailyResetEvent{
			BaseEvent: NewBaseEvent(EventDailyReset, ""),
			Deleted:   int(deleted),
		})
	}

	return int(deleted), nil
}

func (e *Engine) storeSMembers(ctx context.Context, key string) ([]string, error) {
	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.store.SMembers(opCtx, key)
}

func (e *Engine) storeDel(ctx context.Context, keys ...string) (int64, error) {
	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.store.Del(opCtx, keys...)
}

func (e *Engine) storeSRem(ctx context.Context, key string, members ...string) error {
	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.store.SRem(opCtx, key, members...)
}
