package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotInitialized Redis 客户端未初始化（单测或降级场景），调用方按缓存未命中处理
var ErrNotInitialized = errors.New("redis client not initialized")

// SetWithExpiration 设置键值对并设置过期时间
func SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if Rdb == nil {
		return ErrNotInitialized
	}
	return Rdb.Set(ctx, key, value, expiration).Err()
}

// GetValue 获取字符串类型的值
func GetValue(ctx context.Context, key string) (string, error) {
	if Rdb == nil {
		return "", ErrNotInitialized
	}
	value, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// GetInt64 获取整型值，键不存在视为未命中
func GetInt64(ctx context.Context, key string) (int64, error) {
	if Rdb == nil {
		return 0, ErrNotInitialized
	}
	value, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(value, 10, 64)
}

// TryLock 带重试的 SetNX 分布式锁
func TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration, retryTimes int) (bool, error) {
	if Rdb == nil {
		return false, ErrNotInitialized
	}
	for i := 0; ; i++ {
		success, err := Rdb.SetNX(ctx, key, value, expiration).Result()
		if err != nil {
			return false, err
		}
		if success {
			return true, nil
		}
		if retryTimes != -1 && i >= retryTimes {
			return false, nil
		}
		time.Sleep(time.Millisecond * 200)
	}
}

// UnLock 释放锁，仅当持有者一致时删除
func UnLock(ctx context.Context, key string, value interface{}) {
	if Rdb == nil {
		return
	}
	Rdb.Eval(ctx, "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end", []string{key}, value)
}

// ZIncrBy 有序集合成员分数自增
func ZIncrBy(ctx context.Context, key string, increment float64, member string) error {
	if Rdb == nil {
		return ErrNotInitialized
	}
	return Rdb.ZIncrBy(ctx, key, increment, member).Err()
}

// ZRevRangeWithScores 获取有序集合中指定区间内的成员及分数，分数从高到低排序
func ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]redis.Z, error) {
	if Rdb == nil {
		return nil, ErrNotInitialized
	}
	return Rdb.ZRevRangeWithScores(ctx, key, start, stop).Result()
}

// Publish 向频道发布消息
func Publish(ctx context.Context, channel string, message interface{}) error {
	if Rdb == nil {
		return ErrNotInitialized
	}
	return Rdb.Publish(ctx, channel, message).Err()
}

// Subscribe 订阅频道，客户端未初始化时返回 nil
func Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	if Rdb == nil {
		return nil
	}
	return Rdb.Subscribe(ctx, channels...)
}

// DeleteKey 删除一个键
func DeleteKey(ctx context.Context, key string) error {
	if Rdb == nil {
		return ErrNotInitialized
	}
	return Rdb.Del(ctx, key).Err()
}

// GetRdbClient 获取redis客户端
func GetRdbClient() *redis.Client {
	return Rdb
}
