package database

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// 数据清理相关
var retentionControlMu sync.Mutex
var retentionTicker *time.Ticker
var retentionStop chan struct{}
var retentionDays = DefaultRetentionDays

// SetRetentionDays 设置历史保留天数
func SetRetentionDays(days int) {
	retentionControlMu.Lock()
	defer retentionControlMu.Unlock()
	if days > 0 {
		retentionDays = days
	} else {
		retentionDays = DefaultRetentionDays
	}
}

// StartRetentionCleanup 启动定期历史数据清理
func StartRetentionCleanup(interval time.Duration) {
	retentionControlMu.Lock()
	defer retentionControlMu.Unlock()
	if retentionTicker != nil {
		return
	}
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	retentionStop = make(chan struct{})
	retentionTicker = time.NewTicker(interval)

	go func() {
		log.Printf("Retention cleanup started (interval: %v)", interval)
		for {
			select {
			case <-retentionTicker.C:
				if deleted, err := CleanupOldRecords(); err != nil {
					log.Printf("Retention cleanup error: %v", err)
				} else if deleted > 0 {
					log.Printf("Retention cleanup removed %d records", deleted)
				}
			case <-retentionStop:
				log.Println("Retention cleanup stopped")
				return
			}
		}
	}()
}

// StopRetentionCleanup 停止历史数据清理任务
func StopRetentionCleanup() {
	retentionControlMu.Lock()
	defer retentionControlMu.Unlock()
	if retentionTicker != nil {
		retentionTicker.Stop()
		retentionTicker = nil
	}
	if retentionStop != nil {
		close(retentionStop)
		retentionStop = nil
	}
}

// CleanupOldRecords 清理超出保留天数的历史记录
func CleanupOldRecords() (int64, error) {
	retentionControlMu.Lock()
	days := retentionDays
	retentionControlMu.Unlock()

	return CleanupRecordsBefore(time.Now().AddDate(0, 0, -days))
}

// CleanupRecordsBefore 清理指定时间之前的历史记录
// created_at 可能是 CURRENT_TIMESTAMP 的 UTC 文本，也可能是驱动写入的
// 带时区文本，两侧都经 datetime() 归一到 UTC 再比较。
func CleanupRecordsBefore(cutoff time.Time) (int64, error) {
	result, err := DB.Exec(
		`DELETE FROM payload_records WHERE datetime(created_at) < datetime(?)`,
		cutoff.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, fmt.Errorf("cleanup old records: %w", err)
	}
	return result.RowsAffected()
}
