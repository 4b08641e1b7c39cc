package store

import (
	"context"
	"errors"
	"sync"

	"jongga/internal/market"
)

// BarStore 抽象：按 symbol 缓存分钟线序列（收盘窗口与晨间监控复用）
type BarStore interface {
	Put(ctx context.Context, symbol string, bars []market.MinuteBar, max int) error
	Get(ctx context.Context, symbol string) ([]market.MinuteBar, error)
	Reset()
}

// MemoryBarStore 内存实现
type MemoryBarStore struct {
	mu   sync.RWMutex
	data map[string][]market.MinuteBar
}

func NewMemoryBarStore() *MemoryBarStore {
	return &MemoryBarStore{data: make(map[string][]market.MinuteBar)}
}

// Put 合并窗口并按 max 裁剪。重叠时间戳以最新一根覆盖，
// 早于已有末根的历史条不回填（HHMMSS 字符串可直接比较）。
func (s *MemoryBarStore) Put(ctx context.Context, symbol string, bars []market.MinuteBar, max int) error {
	if symbol == "" {
		return errors.New("symbol 不能为空")
	}
	if len(bars) == 0 {
		return nil
	}
	if max <= 0 {
		max = 120
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.data[symbol]
	for _, b := range bars {
		if n := len(cur); n > 0 {
			if b.Time < cur[n-1].Time {
				continue
			}
			if b.Time == cur[n-1].Time {
				cur[n-1] = b
				continue
			}
		}
		cur = append(cur, b)
	}
	if len(cur) > max {
		cur = cur[len(cur)-max:]
	}
	s.data[symbol] = cur
	return nil
}

// Reset 清空全部缓存（按日重置）
func (s *MemoryBarStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]market.MinuteBar)
}

// Get 返回拷贝
func (s *MemoryBarStore) Get(ctx context.Context, symbol string) ([]market.MinuteBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := s.data[symbol]
	out := make([]market.MinuteBar, len(cur))
	copy(out, cur)
	return out, nil
}
