package borrow

import (
	"time"
)

// TicketStatus 借阅单状态
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "PENDING"   // 已预约,待到馆取书
	TicketStatusActive    TicketStatus = "ACTIVE"    // 已取书,借阅中
	TicketStatusReturned  TicketStatus = "RETURNED"  // 已归还
	TicketStatusCancelled TicketStatus = "CANCELLED" // 已取消(读者取消或超时未取)
)

// Label 中文描述
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusPending:
		return "待取书"
	case TicketStatusActive:
		return "借阅中"
	case TicketStatusReturned:
		return "已归还"
	case TicketStatusCancelled:
		return "已取消"
	default:
		return "未知状态"
	}
}

// IsOpen 未结束的借阅单(PENDING/ACTIVE)仍占用副本
func (s TicketStatus) IsOpen() bool {
	return s == TicketStatusPending || s == TicketStatusActive
}

// DefaultLoanPeriod 默认借期
const DefaultLoanPeriod = 14 * 24 * time.Hour

// Ticket 借阅单(聚合根)
// 一次结算生成一张借阅单,Lines逐条绑定具体副本
type Ticket struct {
	ID         uint
	UserID     uint
	Status     TicketStatus
	BorrowDate time.Time  // 结算时间;到馆确认时重置为取书时间
	DueDate    time.Time  // BorrowDate + 借期
	ReturnedAt *time.Time // 归还时间
	Lines      []Line
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Line 借阅明细:借阅单 → 具体副本
type Line struct {
	ID        uint
	TicketID  uint
	CopyID    uint
	BookID    uint
	CreatedAt time.Time
}

// NewTicket 创建待取书借阅单(工厂方法)
func NewTicket(userID uint, now time.Time, loanPeriod time.Duration) *Ticket {
	return &Ticket{
		UserID:     userID,
		Status:     TicketStatusPending,
		BorrowDate: now,
		DueDate:    now.Add(loanPeriod),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Number 借阅单号,读者到馆出示
func (t *Ticket) Number() string {
	return TicketNumber(t.ID)
}

// CanTransitionTo 状态机
//
//	PENDING → ACTIVE | CANCELLED
//	ACTIVE  → RETURNED
func (t *Ticket) CanTransitionTo(target TicketStatus) bool {
	switch t.Status {
	case TicketStatusPending:
		return target == TicketStatusActive || target == TicketStatusCancelled
	case TicketStatusActive:
		return target == TicketStatusReturned
	default:
		return false
	}
}

func (t *Ticket) transitionTo(target TicketStatus, now time.Time) error {
	if !t.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	t.Status = target
	t.UpdatedAt = now
	return nil
}

// Confirm 到馆取书:借期从取书时间重新起算
func (t *Ticket) Confirm(now time.Time, loanPeriod time.Duration) error {
	if err := t.transitionTo(TicketStatusActive, now); err != nil {
		return err
	}
	t.BorrowDate = now
	t.DueDate = now.Add(loanPeriod)
	return nil
}

// Return 归还
func (t *Ticket) Return(now time.Time) error {
	if err := t.transitionTo(TicketStatusReturned, now); err != nil {
		return err
	}
	t.ReturnedAt = &now
	return nil
}

// Cancel 取消预约
func (t *Ticket) Cancel(now time.Time) error {
	return t.transitionTo(TicketStatusCancelled, now)
}

// IsOwnedBy 权限校验,防止读者操作他人借阅单
func (t *Ticket) IsOwnedBy(userID uint) bool {
	return t.UserID == userID
}

// IsOverdue 借阅中且已过应还日期
func (t *Ticket) IsOverdue(now time.Time) bool {
	return t.Status == TicketStatusActive && now.After(t.DueDate)
}

// CopyIDs 借阅单占用的副本ID
func (t *Ticket) CopyIDs() []uint {
	ids := make([]uint, len(t.Lines))
	for i, l := range t.Lines {
		ids[i] = l.CopyID
	}
	return ids
}

// BookIDs 借阅单涉及的书目ID(去重,保持首次出现顺序)
func (t *Ticket) BookIDs() []uint {
	seen := make(map[uint]struct{}, len(t.Lines))
	var ids []uint
	for _, l := range t.Lines {
		if _, ok := seen[l.BookID]; ok {
			continue
		}
		seen[l.BookID] = struct{}{}
		ids = append(ids, l.BookID)
	}
	return ids
}
