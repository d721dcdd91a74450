package cart

import (
	"time"
)

// Line 借书车条目:读者想借某书目N本的意向
//
// 业务规则:
// 1. 每个(读者,书目)最多一行,重复加入累加数量
// 2. 条目只是意向,不锁定也不扣减任何副本;数量可以暂时超过可借数,结算时才校验
type Line struct {
	ID        uint
	UserID    uint
	BookID    uint
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SnapshotItem 借书车展示项(条目+书目信息+可借数量快照)
type SnapshotItem struct {
	ID               uint      `json:"id"`
	BookID           uint      `json:"book_id"`
	Quantity         int       `json:"quantity"`
	Title            string    `json:"title"`
	Author           string    `json:"author"`
	CoverURL         string    `json:"cover_url"`
	AvailableCount   int       `json:"available_count"`
	ExceedsAvailable bool      `json:"exceeds_available"` // 前端据此提示"可借数量不足"
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Summary 借书车汇总
type Summary struct {
	TotalItems int `json:"total_items"` // 不同书目数
	TotalBooks int `json:"total_books"` // 总本数
}

// Snapshot 借书车快照
type Snapshot struct {
	Items   []SnapshotItem `json:"items"`
	Summary Summary        `json:"summary"`
}

// Summarize 计算汇总
func Summarize(items []SnapshotItem) Summary {
	s := Summary{TotalItems: len(items)}
	for _, it := range items {
		s.TotalBooks += it.Quantity
	}
	return s
}
