package session

import (
	"sync"
	"time"

	"github.com/user/cinerec/internal/logging"
)

// Janitor 定时清理过期会话
type Janitor struct {
	store    *Store
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
	done     chan struct{}
}

// NewJanitor 创建清理任务
func NewJanitor(store *Store, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Janitor{
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start 启动定时清理任务
func (j *Janitor) Start() {
	ticker := time.NewTicker(j.interval)
	go func() {
		defer close(j.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.RunOnce()
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop 停止清理任务并等待退出
func (j *Janitor) Stop() {
	j.once.Do(func() {
		close(j.stop)
		<-j.done
	})
}

// RunOnce 执行一次清理
func (j *Janitor) RunOnce() int {
	removed := j.store.Sweep()
	if removed > 0 {
		logging.Info().Int("removed", removed).Int("remaining", j.store.Len()).Msg("已清理过期会话")
	}
	return removed
}
