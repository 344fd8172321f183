package keylock

import (
	"hash/fnv"
	"sync"
)

const defaultShards = 256

// KeyedMutex 按 key 串行化的分片互斥锁。同一个 key 永远落在同一个分片上，
// 不同 key 偶尔共享分片只会多一点串行，不影响正确性。
// 相比按 key 建 map 存锁，分片表没有全局可变状态，也不需要清理。
type KeyedMutex struct {
	shards []sync.Mutex
}

// New 创建分片锁表，shards 会向上取整到 2 的幂；传 0 使用默认 256
func New(shards int) *KeyedMutex {
	if shards <= 0 {
		shards = defaultShards
	}
	n := 1
	for n < shards {
		n <<= 1
	}
	return &KeyedMutex{shards: make([]sync.Mutex, n)}
}

// Lock 锁住 key 所在的分片
func (m *KeyedMutex) Lock(key string) {
	m.shards[m.index(key)].Lock()
}

// Unlock 释放 key 所在的分片
func (m *KeyedMutex) Unlock(key string) {
	m.shards[m.index(key)].Unlock()
}

func (m *KeyedMutex) index(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() & uint32(len(m.shards)-1)
}
