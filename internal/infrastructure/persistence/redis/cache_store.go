package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/logitrax/internal/infrastructure/cache"
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
)

// scanBatch 每次SCAN返回的建议条数
const scanBatch = 200

// CacheStore 基于Redis的读缓存,多实例共享
// 1. key统一加前缀,和同库的其它业务隔离
// 2. 前缀失效用SCAN+UNLINK,不用KEYS阻塞Redis
// 3. 失效代数存在{prefix}gen:{族}下,不会被前缀失效扫到
type CacheStore struct {
	client *redis.Client
	prefix string
}

// NewCacheStore 创建缓存
func NewCacheStore(client *redis.Client, prefix string) *CacheStore {
	return &CacheStore{client: client, prefix: prefix}
}

func (s *CacheStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, wrapRedis(err, "读取缓存失败")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, apperrors.Wrap(err, "解析缓存失败")
	}
	return true, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, "序列化缓存失败")
	}
	if err := s.client.Set(ctx, s.prefix+key, data, ttl).Err(); err != nil {
		return wrapRedis(err, "写入缓存失败")
	}
	return nil
}

func (s *CacheStore) genKey(key string) string {
	return s.prefix + "gen:" + cache.FamilyOf(key)
}

func (s *CacheStore) Generation(ctx context.Context, key string) (uint64, error) {
	gen, err := s.client.Get(ctx, s.genKey(key)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapRedis(err, "读取缓存代数失败")
	}
	return gen, nil
}

var errStaleGeneration = errors.New("cache generation changed")

// SetIfGeneration WATCH代数key,代数不变才在MULTI里写入
// 其它实例在此期间递增代数会让EXEC失败,按未写入处理
func (s *CacheStore) SetIfGeneration(ctx context.Context, key string, value interface{}, ttl time.Duration, gen uint64) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, apperrors.Wrap(err, "序列化缓存失败")
	}

	genKey := s.genKey(key)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.prefix+key, data, ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, wrapRedis(err, "写入缓存失败")
	}
}

// Invalidate 递增代数和删key在同一个MULTI里
func (s *CacheStore) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, s.genKey(k))
		}
		pipe.Del(ctx, full...)
		return nil
	})
	if err != nil {
		return wrapRedis(err, "删除缓存失败")
	}
	return nil
}

// InvalidatePrefix 先递增代数,再完整SCAN一遍收集key,最后分批UNLINK
// 边扫边删会让游标跳过部分key
func (s *CacheStore) InvalidatePrefix(ctx context.Context, prefix string) error {
	if err := s.client.Incr(ctx, s.genKey(prefix)).Err(); err != nil {
		return wrapRedis(err, "递增缓存代数失败")
	}

	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return wrapRedis(err, "扫描缓存失败")
	}

	for len(keys) > 0 {
		n := len(keys)
		if n > scanBatch {
			n = scanBatch
		}
		if err := s.client.Unlink(ctx, keys[:n]...).Err(); err != nil {
			return wrapRedis(err, "删除缓存失败")
		}
		keys = keys[n:]
	}
	return nil
}

func wrapRedis(err error, message string) error {
	return &apperrors.AppError{Code: apperrors.ErrCodeRedisError, Message: message, Err: err}
}
