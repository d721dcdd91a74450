package messaging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
)

// MessagePublisher 底层消息发布(mq.Publisher实现)
type MessagePublisher interface {
	Publish(ctx context.Context, msg mq.Message) error
}

// EventPublisher 借阅事件发布器
// routing key即事件类型;消息发布经过熔断器,Broker故障时快速失败,不拖慢借阅请求
type EventPublisher struct {
	publisher MessagePublisher
	breaker   *circuitbreaker.CircuitBreaker
	timeout   time.Duration
}

// NewEventPublisher 创建事件发布器
func NewEventPublisher(publisher MessagePublisher) *EventPublisher {
	const name = "event-publisher"
	breaker := circuitbreaker.NewCircuitBreaker(name, circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c circuitbreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from, "to", to)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(circuitbreaker.StateClosed))

	return &EventPublisher{publisher: publisher, breaker: breaker, timeout: 3 * time.Second}
}

// Publish 发布借阅事件,没有ID时生成UUID
func (p *EventPublisher) Publish(ctx context.Context, evt borrow.Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}

	err := p.breaker.Execute(func() error {
		// 请求ctx可能马上结束,发布使用独立的超时
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		return p.publisher.Publish(pubCtx, mq.Message{ID: evt.ID, RoutingKey: evt.Type, Body: evt})
	})

	name := p.breaker.Name()
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
		metrics.MessagesPublishedTotal.WithLabelValues(evt.Type, "success").Inc()
		return nil
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	}
	metrics.MessagesPublishedTotal.WithLabelValues(evt.Type, "failure").Inc()
	return apperrors.New(apperrors.ErrCodeMQError, "发布借阅事件失败").WithErr(err)
}

var _ borrow.EventPublisher = (*EventPublisher)(nil)
