package book

import (
	"time"
)

// Book 图书（书目）实体
// 设计说明:
// 1. Book描述一个书目(title)，不代表实体书；实体书是copy包里的Copy
// 2. 借阅预约以副本为粒度，书目只用于展示和存在性校验
// 3. 书目的增删改属于编目子系统，本服务只读
type Book struct {
	ID          uint
	ISBN        string
	Title       string
	Author      string
	Publisher   string
	CoverURL    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayTitle 展示用书名，未知书目给出占位
func (b *Book) DisplayTitle() string {
	if b == nil || b.Title == "" {
		return "未知图书"
	}
	return b.Title
}
