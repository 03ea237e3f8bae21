package limiter

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// 请求级限速器，Fetcher在每次发起请求前调用Wait
type RateLimiter interface {
	Wait(context.Context) error // 阻塞直到拿到令牌或ctx结束
	Limit() rate.Limit
}

// 组合多个限速器，按速率从小到大排序，Wait时最严格的限速器先生效
func Multi(limiters ...RateLimiter) *multiLimiter {
	byLimit := func(i, j int) bool {
		return limiters[i].Limit() < limiters[j].Limit()
	}
	sort.Slice(limiters, byLimit)
	return &multiLimiter{limiters: limiters}
}

type multiLimiter struct {
	limiters []RateLimiter
}

// 所有限速器都放行后才返回
func (l *multiLimiter) Wait(ctx context.Context) error {
	for _, l := range l.limiters {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// 没有任何限速器时视为不限速
func (l *multiLimiter) Limit() rate.Limit {
	if len(l.limiters) == 0 {
		return rate.Inf
	}
	return l.limiters[0].Limit()
}

// duration内最多eventCount个事件
func Per(eventCount int, duration time.Duration) rate.Limit {
	return rate.Every(duration / time.Duration(eventCount))
}

// 按配置构建限速器，每条配置对应一个桶大小为1的令牌桶；没有配置时返回nil
func FromConfig(limits []LimitConfig) RateLimiter {
	var ls []RateLimiter
	for _, c := range limits {
		if c.EventCount <= 0 || c.EventDur <= 0 {
			continue
		}
		ls = append(ls, rate.NewLimiter(Per(c.EventCount, c.EventDur), 1))
	}
	if len(ls) == 0 {
		return nil
	}
	return Multi(ls...)
}

type LimitConfig struct {
	EventCount int           `yaml:"eventCount"`
	EventDur   time.Duration `yaml:"eventDur"`
}
