package bookcopy

import (
	"time"
)

// Status 副本状态
// 教学要点:
// 1. 使用string存储(与数据库ENUM/VARCHAR一致,日志可读)
// 2. 任一时刻一个副本只有一个状态
// 3. 状态变化必须经过CanTransition校验,并在同一事务内以条件更新落库
type Status string

const (
	StatusAvailable Status = "AVAILABLE" // 在架可借
	StatusReserved  Status = "RESERVED"  // 已预约(软锁,等待到馆取书)
	StatusBorrowed  Status = "BORROWED"  // 已借出
	StatusLost      Status = "LOST"      // 丢失
	StatusWithdrawn Status = "WITHDRAWN" // 已下架
)

// Label 中文描述(方便日志输出)
func (s Status) Label() string {
	switch s {
	case StatusAvailable:
		return "可借"
	case StatusReserved:
		return "已预约"
	case StatusBorrowed:
		return "已借出"
	case StatusLost:
		return "丢失"
	case StatusWithdrawn:
		return "已下架"
	default:
		return "未知状态"
	}
}

// IsValid 是否为合法状态
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// transitions 副本状态机
//
//	AVAILABLE → RESERVED(借书车结算) → BORROWED(到馆确认) → AVAILABLE(归还)
//
// 进入RESERVED只能从AVAILABLE出发;进入BORROWED只能从AVAILABLE(现场借阅)
// 或RESERVED(到馆确认)出发。WITHDRAWN是终态。
var transitions = map[Status][]Status{
	StatusAvailable: {StatusReserved, StatusBorrowed, StatusLost, StatusWithdrawn},
	StatusReserved:  {StatusBorrowed, StatusAvailable, StatusLost},
	StatusBorrowed:  {StatusAvailable, StatusLost},
	StatusLost:      {StatusAvailable, StatusWithdrawn},
	StatusWithdrawn: {},
}

// CanTransition 检查状态流转是否合法
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Copy 馆藏副本实体
// 一本实体书对应一行。预约和借出都以副本为粒度,
// 借阅明细引用具体副本ID而不是"某书目N本",这是避免一本书被承诺给两个人的关键。
type Copy struct {
	ID        uint
	BookID    uint   // 所属书目
	Barcode   string // 馆藏条码
	Status    Status
	CreatedAt time.Time // 入藏时间,结算时按它先进先出挑选副本
	UpdatedAt time.Time
}

// TransitionTo 状态转换
func (c *Copy) TransitionTo(target Status) error {
	if !CanTransition(c.Status, target) {
		return ErrInvalidStatusTransition
	}
	c.Status = target
	c.UpdatedAt = time.Now()
	return nil
}

// IsAvailable 是否在架可借
func (c *Copy) IsAvailable() bool {
	return c.Status == StatusAvailable
}
