package moderation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/warden/internal/domain"
)

// DefaultBulkWorkers bounds the fan-out of a bulk batch.
const DefaultBulkWorkers = 8

// BulkResult carries per-id outcomes of a bulk action. Partial failure is
// reported here, never as an error from ApplyBulk.
type BulkResult struct {
	Succeeded []uuid.UUID
	Failed    map[uuid.UUID]error
}

// ApplyBulk applies one action independently to each account id. Members
// run concurrently; one id's failure never prevents the others from
// succeeding. Only a defect in the batch itself (an empty id list) fails
// the call.
func (s *Service) ApplyBulk(ctx context.Context, ids []uuid.UUID, actionType domain.ActionType, params domain.ActionParams, actorID uuid.UUID) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("moderation.Service.ApplyBulk: empty id list: %w", domain.ErrInvalidParams)
	}

	workers := DefaultBulkWorkers
	if workers > len(ids) {
		workers = len(ids)
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = &BulkResult{Failed: make(map[uuid.UUID]error)}
	)

	work := make(chan uuid.UUID)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range work {
				_, err := s.Apply(ctx, domain.Action{
					Type:      actionType,
					AccountID: id,
					ActorID:   actorID,
					Params:    params,
				})

				mu.Lock()
				if err != nil {
					result.Failed[id] = err
				} else {
					result.Succeeded = append(result.Succeeded, id)
				}
				mu.Unlock()
			}
		}()
	}

	for _, id := range ids {
		work <- id
	}
	close(work)
	wg.Wait()

	return result, nil
}
