// Package cache 读缓存
//
// 缓存的是库存列表和按状态分组的订单列表,写入后按key或前缀失效。
// 值统一JSON序列化,进程内实现和Redis实现行为一致。
//
// 每个key族带一个失效代数,Invalidate/InvalidatePrefix都会先递增代数再删key。
// 回填缓存的读请求在读库前记下代数,用SetIfGeneration写回,
// 读库期间有写入提交时代数已变,旧快照不会被写进缓存。
package cache

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Cache 读缓存接口
type Cache interface {
	// Get 命中时把值解码到dest并返回true
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set 无条件写入并设置过期时间
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Generation 返回key所属族的当前失效代数
	Generation(ctx context.Context, key string) (uint64, error)
	// SetIfGeneration 仅当key所属族的代数仍为gen时写入,返回是否写入
	SetIfGeneration(ctx context.Context, key string, value interface{}, ttl time.Duration, gen uint64) (bool, error)
	// Invalidate 删除指定key
	Invalidate(ctx context.Context, keys ...string) error
	// InvalidatePrefix 删除整个key族
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// 缓存key族
const (
	// KeyInventoryList 库存列表只有一个key
	KeyInventoryList = "inventory:list"
	// PrefixOrdersByStatus 订单列表,任何订单写入都整族失效
	PrefixOrdersByStatus = "orders:status:"
)

// 指标里用的族名,也是失效代数的粒度
const (
	FamilyInventory = "inventory"
	FamilyOrders    = "orders"
)

// FamilyOf key或前缀所属的族,取第一个冒号之前的部分
func FamilyOf(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// ManagerScope 管理员视角,能看到所有订单
const ManagerScope = "m"

// CustomerScope 客户视角
// 名字做转义,任何客户名都不会和管理员视角或别的客户撞key
func CustomerScope(name string) string {
	return "c:" + url.QueryEscape(name)
}

// OrdersByStatusKey 订单列表key
// status为空表示全部状态; scope取ManagerScope或CustomerScope的结果
func OrdersByStatusKey(status, scope string, page, pageSize int) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("%s%s:%s:%d:%d", PrefixOrdersByStatus, status, scope, page, pageSize)
}
