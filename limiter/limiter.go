package limiter

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// 限速器接口，统一了不同限速器的行为
type RateLimiter interface {
	Wait(context.Context) error // 阻塞调用者直到取得令牌，或上下文被取消
	Limit() rate.Limit          // 返回限速器的速率限制
}

// Spec 描述一个令牌桶：EventDur时间内最多EventCount个事件，桶大小为Bucket
type Spec struct {
	EventCount int
	EventDur   time.Duration
	Bucket     int
}

/*
输入一个或多个令牌桶描述，输出一个限速器

该方法用于按描述创建令牌桶限速器，忽略事件数或时间窗口不合法的描述，只有一个限速器时直接返回，多个时组合为多限速器，没有合法描述时返回nil
*/
func New(specs ...Spec) RateLimiter {
	var limiters []RateLimiter
	for _, s := range specs {
		if s.EventCount <= 0 || s.EventDur <= 0 {
			continue
		}
		bucket := s.Bucket
		if bucket <= 0 {
			bucket = 1
		}
		limiters = append(limiters, rate.NewLimiter(Per(s.EventCount, s.EventDur), bucket))
	}

	switch len(limiters) {
	case 0:
		return nil
	case 1:
		return limiters[0]
	default:
		return Multi(limiters...)
	}
}

// 将多个限速器按速率限制从小到大排序，然后返回一个多限速器实例
func Multi(limiters ...RateLimiter) RateLimiter {
	sorted := make([]RateLimiter, len(limiters))
	copy(sorted, limiters)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Limit() < sorted[j].Limit()
	})
	return &multiLimiter{limiters: sorted}
}

type multiLimiter struct {
	limiters []RateLimiter
}

// 只有所有限速器都取得令牌时才返回
func (l *multiLimiter) Wait(ctx context.Context) error {
	for _, l := range l.limiters {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// 返回最严格的速率限制
func (l *multiLimiter) Limit() rate.Limit {
	if len(l.limiters) == 0 {
		return rate.Inf
	}
	return l.limiters[0].Limit()
}

// Per 将"duration内eventCount个事件"换算为两个令牌之间的时间间隔
func Per(eventCount int, duration time.Duration) rate.Limit {
	return rate.Every(duration / time.Duration(eventCount))
}
