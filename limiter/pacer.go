package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// 爬取过程中的三个节奏点
type Step int

const (
	StepAnswer Step = iota // 处理完一个回答详情页
	StepPage               // 处理完一个列表页
	StepTopic              // 处理完一个话题
)

func (s Step) String() string {
	switch s {
	case StepAnswer:
		return "answer"
	case StepPage:
		return "page"
	case StepTopic:
		return "topic"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// 固定的、非自适应的休眠间隔，与请求成功与否无关，只为了不给对方服务器造成压力
type Policy struct {
	Answer time.Duration `yaml:"answer"`
	Page   time.Duration `yaml:"page"`
	Topic  time.Duration `yaml:"topic"`
}

var DefaultPolicy = Policy{
	Answer: 1 * time.Second,
	Page:   10 * time.Second,
	Topic:  120 * time.Second,
}

func (p Policy) Interval(step Step) time.Duration {
	switch step {
	case StepAnswer:
		return p.Answer
	case StepPage:
		return p.Page
	case StepTopic:
		return p.Topic
	}
	return 0
}

// Pacer按Policy在各个节奏点休眠，时钟可替换，测试中使用fake clock
type Pacer struct {
	policy Policy
	clock  clockwork.Clock
	slept  time.Duration
}

func NewPacer(policy Policy, clock clockwork.Clock) *Pacer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pacer{policy: policy, clock: clock}
}

// 休眠step对应的间隔，ctx结束时提前返回ctx.Err()
func (p *Pacer) Wait(ctx context.Context, step Step) error {
	d := p.policy.Interval(step)
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(d):
		p.slept += d
		return nil
	}
}

// 累计休眠时长
func (p *Pacer) Slept() time.Duration {
	return p.slept
}
