package borrow

import (
	"context"
	"time"
)

// 借阅事件路由键
const (
	EventTicketCreated   = "borrow.ticket.created"
	EventTicketConfirmed = "borrow.ticket.confirmed"
	EventTicketReturned  = "borrow.ticket.returned"
	EventTicketCancelled = "borrow.ticket.cancelled"
	EventTicketExpired   = "borrow.ticket.expired"
)

// Event 借阅事件(提交后发布,供通知服务消费)
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	TicketID   uint      `json:"ticket_id"`
	TicketNo   string    `json:"ticket_no"`
	UserID     uint      `json:"user_id"`
	Status     string    `json:"status"`
	CopyIDs    []uint    `json:"copy_ids"`
	DueDate    time.Time `json:"due_date"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent 由借阅单构造事件;ID由发布方填充
func NewEvent(eventType string, t *Ticket, now time.Time) Event {
	return Event{
		Type:       eventType,
		TicketID:   t.ID,
		TicketNo:   t.Number(),
		UserID:     t.UserID,
		Status:     string(t.Status),
		CopyIDs:    t.CopyIDs(),
		DueDate:    t.DueDate,
		OccurredAt: now,
	}
}

// EventPublisher 事件发布接口
// 发布失败不影响已提交的事务,调用方只记录日志
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NopPublisher 未启用消息队列时使用
type NopPublisher struct{}

// Publish 丢弃事件
func (NopPublisher) Publish(context.Context, Event) error { return nil }
