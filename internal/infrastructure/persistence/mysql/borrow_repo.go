package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/borrow"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// borrowRepository 借阅单仓储(MySQL)
// 借阅单与明细是聚合关系,查询时一起加载
type borrowRepository struct {
	db *gorm.DB
}

// NewBorrowRepository 创建借阅单仓储
func NewBorrowRepository(db *gorm.DB) borrow.Repository {
	return &borrowRepository{db: db}
}

// Create 创建借阅单头,回填ID
func (r *borrowRepository) Create(ctx context.Context, t *borrow.Ticket) error {
	model := &BorrowTicketModel{
		UserID:     t.UserID,
		Status:     string(t.Status),
		BorrowDate: t.BorrowDate,
		DueDate:    t.DueDate,
		ReturnedAt: t.ReturnedAt,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return translateError(err, "创建借阅单失败")
	}
	t.ID = model.ID
	t.CreatedAt = model.CreatedAt
	t.UpdatedAt = model.UpdatedAt
	return nil
}

// AddLines 批量写入明细,回填ID
func (r *borrowRepository) AddLines(ctx context.Context, ticketID uint, lines []borrow.Line) error {
	if len(lines) == 0 {
		return nil
	}
	models := make([]BorrowLineModel, len(lines))
	for i, l := range lines {
		models[i] = BorrowLineModel{
			TicketID:  ticketID,
			CopyID:    l.CopyID,
			BookID:    l.BookID,
			CreatedAt: l.CreatedAt,
		}
	}
	if err := getDB(ctx, r.db).Create(&models).Error; err != nil {
		return translateError(err, "写入借阅明细失败")
	}
	for i := range lines {
		lines[i].ID = models[i].ID
		lines[i].TicketID = ticketID
	}
	return nil
}

// FindByID 查询借阅单(含明细)
func (r *borrowRepository) FindByID(ctx context.Context, id uint) (*borrow.Ticket, error) {
	var model BorrowTicketModel
	err := getDB(ctx, r.db).Preload("Lines", orderLines).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrow.ErrTicketNotFound
		}
		return nil, translateError(err, "查询借阅单失败")
	}
	return toTicketEntity(&model), nil
}

// LockByID 悲观锁查询借阅单,必须在事务内调用
// 只锁借阅单行;明细随后普通查询(明细在借阅单创建后不再变化)
func (r *borrowRepository) LockByID(ctx context.Context, id uint) (*borrow.Ticket, error) {
	db := getDB(ctx, r.db)

	var model BorrowTicketModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrow.ErrTicketNotFound
		}
		return nil, translateError(err, "锁定借阅单失败")
	}

	if err := orderLines(db.Where("ticket_id = ?", id)).Find(&model.Lines).Error; err != nil {
		return nil, translateError(err, "查询借阅明细失败")
	}
	return toTicketEntity(&model), nil
}

// ListByUserID 分页查询读者的借阅单,最新的在前
func (r *borrowRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*borrow.Ticket, int64, error) {
	var (
		models []BorrowTicketModel
		total  int64
	)

	query := getDB(ctx, r.db).Model(&BorrowTicketModel{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "查询借阅单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Lines", orderLines).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, translateError(err, "查询借阅单列表失败")
	}

	tickets := make([]*borrow.Ticket, len(models))
	for i := range models {
		tickets[i] = toTicketEntity(&models[i])
	}
	return tickets, total, nil
}

// UpdateStatus 条件更新状态和日期
//
//	UPDATE borrow_tickets SET status = ?, ... WHERE id = ? AND status = ?
//
// 状态已不是from时返回Conflict
func (r *borrowRepository) UpdateStatus(ctx context.Context, t *borrow.Ticket, from borrow.TicketStatus) error {
	result := getDB(ctx, r.db).Model(&BorrowTicketModel{}).
		Where("id = ? AND status = ?", t.ID, string(from)).
		Updates(map[string]interface{}{
			"status":      string(t.Status),
			"borrow_date": t.BorrowDate,
			"due_date":    t.DueDate,
			"returned_at": t.ReturnedAt,
			"updated_at":  t.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "更新借阅单状态失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// ListPendingBefore 创建时间早于cutoff的PENDING借阅单ID,最早的在前
func (r *borrowRepository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uint, error) {
	var ids []uint
	err := getDB(ctx, r.db).Model(&BorrowTicketModel{}).
		Where("status = ? AND created_at < ?", string(borrow.TicketStatusPending), cutoff).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, translateError(err, "查询待取书借阅单失败")
	}
	return ids, nil
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// toTicketEntity GORM模型 → 领域实体
func toTicketEntity(model *BorrowTicketModel) *borrow.Ticket {
	lines := make([]borrow.Line, len(model.Lines))
	for i, l := range model.Lines {
		lines[i] = borrow.Line{
			ID:        l.ID,
			TicketID:  l.TicketID,
			CopyID:    l.CopyID,
			BookID:    l.BookID,
			CreatedAt: l.CreatedAt,
		}
	}
	return &borrow.Ticket{
		ID:         model.ID,
		UserID:     model.UserID,
		Status:     borrow.TicketStatus(model.Status),
		BorrowDate: model.BorrowDate,
		DueDate:    model.DueDate,
		ReturnedAt: model.ReturnedAt,
		Lines:      lines,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
