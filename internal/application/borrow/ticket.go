package borrow

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/borrow"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// TicketUseCase 借阅单状态流转(到馆取书、归还、取消)
//
// 每次流转在一个事务内完成:锁借阅单 → 校验状态 → 副本状态条件更新 → 借阅单状态条件更新,
// 副本与借阅单状态始终一起变化。
type TicketUseCase struct {
	tickets borrow.Repository
	copies  bookcopy.Repository
	tx      TxManager
	after   *afterCommit
	policy  Policy
	now     func() time.Time
}

// NewTicketUseCase 创建借阅单流转用例
func NewTicketUseCase(
	tickets borrow.Repository,
	copies bookcopy.Repository,
	tx TxManager,
	publisher borrow.EventPublisher,
	cache bookcopy.SnapshotCache,
	policy Policy,
) *TicketUseCase {
	return &TicketUseCase{
		tickets: tickets,
		copies:  copies,
		tx:      tx,
		after:   &afterCommit{publisher: publisher, cache: cache, now: time.Now},
		policy:  policy,
		now:     time.Now,
	}
}

// transition 描述一次借阅单流转及其对副本的影响
type transition struct {
	name     string
	event    string
	copyFrom bookcopy.Status
	copyTo   bookcopy.Status
	apply    func(t *borrow.Ticket, now time.Time) error
}

// Confirm 到馆取书:PENDING → ACTIVE,副本 RESERVED → BORROWED,借期从取书当天起算
func (uc *TicketUseCase) Confirm(ctx context.Context, ticketID uint) (*TicketDTO, error) {
	return uc.run(ctx, ticketID, 0, transition{
		name:     "borrow.ConfirmPickup",
		event:    borrow.EventTicketConfirmed,
		copyFrom: bookcopy.StatusReserved,
		copyTo:   bookcopy.StatusBorrowed,
		apply: func(t *borrow.Ticket, now time.Time) error {
			return t.Confirm(now, uc.policy.LoanPeriod)
		},
	})
}

// Return 归还:ACTIVE → RETURNED,副本 BORROWED → AVAILABLE
func (uc *TicketUseCase) Return(ctx context.Context, ticketID uint) (*TicketDTO, error) {
	return uc.run(ctx, ticketID, 0, transition{
		name:     "borrow.Return",
		event:    borrow.EventTicketReturned,
		copyFrom: bookcopy.StatusBorrowed,
		copyTo:   bookcopy.StatusAvailable,
		apply: func(t *borrow.Ticket, now time.Time) error {
			return t.Return(now)
		},
	})
}

// Cancel 读者取消预约:PENDING → CANCELLED,副本 RESERVED → AVAILABLE
// 只能取消自己的借阅单;他人的借阅单按不存在处理
func (uc *TicketUseCase) Cancel(ctx context.Context, userID, ticketID uint) (*TicketDTO, error) {
	if userID == 0 {
		return nil, borrow.ErrInvalidUser
	}
	return uc.run(ctx, ticketID, userID, cancelTransition("borrow.Cancel", borrow.EventTicketCancelled))
}

// expire 超时未取,由清理任务调用
func (uc *TicketUseCase) expire(ctx context.Context, ticketID uint) (*TicketDTO, error) {
	return uc.run(ctx, ticketID, 0, cancelTransition("borrow.Expire", borrow.EventTicketExpired))
}

func cancelTransition(name, event string) transition {
	return transition{
		name:     name,
		event:    event,
		copyFrom: bookcopy.StatusReserved,
		copyTo:   bookcopy.StatusAvailable,
		apply: func(t *borrow.Ticket, now time.Time) error {
			return t.Cancel(now)
		},
	}
}

// run 执行流转;owner非0时校验归属
func (uc *TicketUseCase) run(ctx context.Context, ticketID, owner uint, tr transition) (dto *TicketDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, tr.name)
	defer func() { tracing.EndSpan(span, err) }()
	span.SetAttributes(attribute.Int64("ticket_id", int64(ticketID)))

	if ticketID == 0 {
		return nil, borrow.ErrTicketNotFound
	}

	var ticket *borrow.Ticket
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		t, err := uc.tickets.LockByID(txCtx, ticketID)
		if err != nil {
			return err
		}
		if owner != 0 && !t.IsOwnedBy(owner) {
			return borrow.ErrTicketNotFound
		}

		from := t.Status
		if err := tr.apply(t, uc.now()); err != nil {
			return err
		}

		copyIDs := t.CopyIDs()
		if len(copyIDs) > 0 {
			affected, err := uc.copies.TransitionStatus(txCtx, copyIDs, tr.copyFrom, tr.copyTo)
			if err != nil {
				return err
			}
			if affected != int64(len(copyIDs)) {
				// 副本被馆员单独改过状态(如登记丢失),不能整单流转
				return apperrors.ErrConflict.WithErr(bookcopy.ErrInvalidStatusTransition)
			}
		}

		if err := uc.tickets.UpdateStatus(txCtx, t, from); err != nil {
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TicketTransitionsTotal.WithLabelValues(string(ticket.Status)).Inc()
	uc.after.run(ctx, tr.event, ticket)

	slog.InfoContext(ctx, "ticket transitioned",
		"ticket_no", ticket.Number(),
		"status", ticket.Status,
		"event", tr.event,
	)
	return toTicketDTO(ticket), nil
}
