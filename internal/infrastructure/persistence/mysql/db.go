package mysql

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 开发环境打印SQL;auto_migrate开启时自动建表
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true, // 唯一索引冲突翻译为gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	slog.Info("database connected", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

	// 生产环境应使用版本化的迁移脚本
	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}
	return db, nil
}

// AutoMigrate 自动迁移表结构(集成测试也会调用)
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookModel{},
		&CopyModel{},
		&CartLineModel{},
		&BorrowTicketModel{},
		&BorrowLineModel{},
	)
}

// BookModel 书目
// 书目由编目子系统维护,本服务只读
type BookModel struct {
	ID          uint           `gorm:"primaryKey"`
	ISBN        string         `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title       string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author      string         `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Publisher   string         `gorm:"size:100;not null;comment:出版社"`
	CoverURL    string         `gorm:"size:500;comment:封面图片URL"`
	Description string         `gorm:"type:text;comment:简介"`
	CreatedAt   time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// CopyModel 馆藏副本(一本实体书)
// idx_pick 覆盖"某书目AVAILABLE副本按入藏时间挑选"的加锁查询,
// 同时让FOR UPDATE只锁住命中的行,不退化为锁全表
type CopyModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"index:idx_pick,priority:1;not null;comment:书目ID"`
	Barcode   string    `gorm:"uniqueIndex;size:32;not null;comment:条码"`
	Status    string    `gorm:"index:idx_pick,priority:2;size:16;not null;default:AVAILABLE;comment:状态(AVAILABLE/RESERVED/BORROWED/LOST/WITHDRAWN)"`
	CreatedAt time.Time `gorm:"index:idx_pick,priority:3;comment:入藏时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CopyModel) TableName() string {
	return "book_copies"
}

// CartLineModel 借书车条目,每个(读者,书目)唯一
type CartLineModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:uk_user_book,priority:1;not null;comment:读者ID"`
	BookID    uint      `gorm:"uniqueIndex:uk_user_book,priority:2;not null;comment:书目ID"`
	Quantity  int       `gorm:"not null;comment:意向数量"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CartLineModel) TableName() string {
	return "cart_lines"
}

// BorrowTicketModel 借阅单
type BorrowTicketModel struct {
	ID         uint              `gorm:"primaryKey"`
	UserID     uint              `gorm:"index;not null;comment:读者ID"`
	Status     string            `gorm:"index:idx_status_created,priority:1;size:16;not null;comment:状态(PENDING/ACTIVE/RETURNED/CANCELLED)"`
	BorrowDate time.Time         `gorm:"not null;comment:借阅日期"`
	DueDate    time.Time         `gorm:"not null;comment:应还日期"`
	ReturnedAt *time.Time        `gorm:"comment:归还时间"`
	Lines      []BorrowLineModel `gorm:"foreignKey:TicketID"`
	CreatedAt  time.Time         `gorm:"index:idx_status_created,priority:2;comment:创建时间"`
	UpdatedAt  time.Time         `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BorrowTicketModel) TableName() string {
	return "borrow_tickets"
}

// BorrowLineModel 借阅明细,一行对应一个副本
type BorrowLineModel struct {
	ID        uint      `gorm:"primaryKey"`
	TicketID  uint      `gorm:"index;not null;comment:借阅单ID"`
	CopyID    uint      `gorm:"index;not null;comment:副本ID"`
	BookID    uint      `gorm:"not null;comment:书目ID(冗余,便于统计)"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (BorrowLineModel) TableName() string {
	return "borrow_lines"
}
