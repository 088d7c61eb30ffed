package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/cache"
)

const paginationKeyPrefix = "dosebot:pagination:"

// moveScript сдвиг индекса одним шагом на стороне Redis.
// -1 - ключа нет, -2 - листает не автор
var moveScript = redis.NewScript(`
local owner = redis.call('HGET', KEYS[1], 'owner')
if not owner then return {-1} end
if owner ~= ARGV[1] then return {-2} end
local count = tonumber(redis.call('HGET', KEYS[1], 'count'))
local idx = tonumber(redis.call('HGET', KEYS[1], 'index')) + tonumber(ARGV[2])
if idx < 0 then idx = 0 end
if idx > count - 1 then idx = count - 1 end
redis.call('HSET', KEYS[1], 'index', idx)
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return {idx, redis.call('HGET', KEYS[1], 'page:' .. idx)}
`)

// PaginationStore состояние пагинации в Redis: hash на сообщение, страницы в JSON.
// Переживает рестарт и работает при нескольких репликах
type PaginationStore struct {
	client redis.UniversalClient
}

func NewPaginationStore(client redis.UniversalClient) *PaginationStore {
	return &PaginationStore{client: client}
}

var _ cache.IPaginationStore = (*PaginationStore)(nil)

func paginationKey(ref domain.MessageRef) string {
	return paginationKeyPrefix + ref.Key()
}

func (s *PaginationStore) Save(ctx context.Context, ref domain.MessageRef, state domain.PaginationState, ttl time.Duration) error {
	if len(state.Pages) == 0 {
		return nil
	}

	fields := make(map[string]any, len(state.Pages)+3)
	fields["owner"] = strconv.FormatInt(state.Owner, 10)
	fields["index"] = state.Index
	fields["count"] = len(state.Pages)
	for i, page := range state.Pages {
		data, err := json.Marshal(page)
		if err != nil {
			return fmt.Errorf("failed to marshal page %d: %w", i, err)
		}
		fields["page:"+strconv.Itoa(i)] = string(data)
	}

	key := paginationKey(ref)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.PExpire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save pagination failed: %w", err)
	}
	return nil
}

func (s *PaginationStore) Move(ctx context.Context, ref domain.MessageRef, userID int64, delta int, ttl time.Duration) (domain.Page, error) {
	res, err := moveScript.Run(ctx, s.client,
		[]string{paginationKey(ref)},
		strconv.FormatInt(userID, 10), delta, ttl.Milliseconds(),
	).Slice()
	if err != nil {
		return domain.Page{}, fmt.Errorf("redis move pagination failed: %w", err)
	}
	if len(res) == 0 {
		return domain.Page{}, fmt.Errorf("redis move pagination: empty result")
	}

	if code, ok := res[0].(int64); ok && len(res) == 1 {
		switch code {
		case -1:
			return domain.Page{}, domain.ErrStateExpired
		case -2:
			return domain.Page{}, domain.ErrNotOwner
		}
	}
	if len(res) != 2 {
		return domain.Page{}, fmt.Errorf("redis move pagination: unexpected result %v", res)
	}

	raw, ok := res[1].(string)
	if !ok {
		return domain.Page{}, domain.ErrStateExpired
	}
	var page domain.Page
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return domain.Page{}, fmt.Errorf("failed to unmarshal page: %w", err)
	}
	return page, nil
}

func (s *PaginationStore) Delete(ctx context.Context, ref domain.MessageRef) error {
	if err := s.client.Del(ctx, paginationKey(ref)).Err(); err != nil {
		return fmt.Errorf("redis delete pagination failed: %w", err)
	}
	return nil
}
