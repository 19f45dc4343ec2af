package service

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout 日历日期格式
const DateLayout = "2006-01-02"

// DateBucket 返回 t 在 loc 时区下的日历日期
func DateBucket(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// Calendar 根据配置时区确定日期
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar 创建日历,loc 为 nil 时使用本地时区
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{loc: loc, now: time.Now}
}

// WithClock 替换时钟
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	return &Calendar{loc: c.loc, now: now}
}

// Location 返回时区
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now 返回当前时间
func (c *Calendar) Now() time.Time {
	return c.now()
}

// Today 返回今天的日历日期
func (c *Calendar) Today() string {
	return DateBucket(c.now(), c.loc)
}

// Resolve 规范化日期参数,为空时返回今天
func (c *Calendar) Resolve(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return c.Today(), nil
	}
	t, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t.Format(DateLayout), nil
}
