package util

import (
	"time"
)

// Midnight 取给定时间所在日期的零点（服务器本地时区，与连续打卡口径一致）
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateOnly 格式化为 yyyy-MM-dd
func DateOnly(t time.Time) string {
	return t.Format(time.DateOnly)
}

// SameDate 两个时间是否落在同一个日历日
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// PtrUint64 用于将 uint64 转换为 *uint64
func PtrUint64(i uint64) *uint64 {
	return &i
}

// PtrString 用于将 string 转换为 *string，空串返回 nil
func PtrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
