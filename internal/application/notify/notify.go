// Package notify 把借阅事件转换成给读者的提醒
//
// 只消费事件,不回写借阅台账。发送渠道(短信、邮件)通过Sender接入,默认只写日志。
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/xiebiao/library/internal/domain/borrow"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/mq"
)

const dateLayout = "2006-01-02"

// Notification 一条提醒
type Notification struct {
	UserID   uint
	TicketNo string
	Subject  string
	Body     string
}

// Sender 提醒发送渠道
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender 只记录日志
type LogSender struct{}

// Send 写日志
func (LogSender) Send(ctx context.Context, n Notification) error {
	slog.InfoContext(ctx, "notification",
		"user_id", n.UserID,
		"ticket_no", n.TicketNo,
		"subject", n.Subject,
		"body", n.Body,
	)
	return nil
}

// Handler 借阅事件处理器
type Handler struct {
	sender Sender
}

// NewHandler 创建处理器
func NewHandler(sender Sender) *Handler {
	return &Handler{sender: sender}
}

// Handle 处理一条消息,签名与mq.Handler一致
// 消息体无法解析时直接确认(重试也不会成功)
func (h *Handler) Handle(ctx context.Context, d mq.Delivery) error {
	var evt borrow.Event
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		slog.WarnContext(ctx, "drop malformed borrow event", "message_id", d.ID, "error", err)
		return nil
	}

	n, ok := Compose(evt)
	if !ok {
		slog.DebugContext(ctx, "borrow event ignored", "type", evt.Type)
		return nil
	}
	if err := h.sender.Send(ctx, n); err != nil {
		return apperrors.Wrap(err, "发送提醒失败")
	}
	return nil
}

// Compose 按事件类型生成提醒;不需要提醒的事件返回false
func Compose(evt borrow.Event) (Notification, bool) {
	n := Notification{UserID: evt.UserID, TicketNo: evt.TicketNo}
	books := len(evt.CopyIDs)

	switch evt.Type {
	case borrow.EventTicketCreated:
		n.Subject = "预约成功"
		n.Body = fmt.Sprintf("借阅单%s已为您保留%d本图书,请尽快到馆取书。", evt.TicketNo, books)
	case borrow.EventTicketConfirmed:
		n.Subject = "取书成功"
		n.Body = fmt.Sprintf("借阅单%s共%d本,请于%s前归还。", evt.TicketNo, books, evt.DueDate.Format(dateLayout))
	case borrow.EventTicketExpired:
		n.Subject = "预约已过期"
		n.Body = fmt.Sprintf("借阅单%s超时未取,预约已自动取消。", evt.TicketNo)
	case borrow.EventTicketReturned:
		n.Subject = "归还成功"
		n.Body = fmt.Sprintf("借阅单%s的%d本图书已归还,感谢使用。", evt.TicketNo, books)
	default:
		// 读者主动取消,无需提醒
		return Notification{}, false
	}
	return n, true
}
