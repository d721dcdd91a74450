package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/cart"
)

// cartRepository 借书车仓储(MySQL)
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建借书车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

// AddQuantity 累加数量,不存在则插入
//
//	INSERT INTO cart_lines (...) VALUES (...)
//	ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity), updated_at = VALUES(updated_at)
//
// 依赖uk_user_book唯一索引,并发加车也不会产生两行
func (r *cartRepository) AddQuantity(ctx context.Context, userID, bookID uint, delta int) (*cart.Line, error) {
	now := time.Now()
	model := &CartLineModel{
		UserID:    userID,
		BookID:    bookID,
		Quantity:  delta,
		CreatedAt: now,
		UpdatedAt: now,
	}

	db := getDB(ctx, r.db)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + VALUES(quantity)"),
			"updated_at": now,
		}),
	}).Create(model).Error
	if err != nil {
		return nil, translateError(err, "加入借书车失败")
	}

	return r.Find(ctx, userID, bookID)
}

// SetQuantity 覆盖数量
func (r *cartRepository) SetQuantity(ctx context.Context, userID, bookID uint, quantity int) (*cart.Line, error) {
	result := getDB(ctx, r.db).Model(&CartLineModel{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, translateError(result.Error, "更新借书车失败")
	}
	// 0行可能是不存在,也可能是值未变化(MySQL只统计实际改变的行),交给Find区分
	return r.Find(ctx, userID, bookID)
}

// Delete 删除条目,不存在时静默成功
func (r *cartRepository) Delete(ctx context.Context, userID, bookID uint) error {
	err := getDB(ctx, r.db).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&CartLineModel{}).Error
	return translateError(err, "删除借书车条目失败")
}

// DeleteByUser 清空读者的借书车
func (r *cartRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := getDB(ctx, r.db).Where("user_id = ?", userID).Delete(&CartLineModel{})
	if result.Error != nil {
		return 0, translateError(result.Error, "清空借书车失败")
	}
	return result.RowsAffected, nil
}

// ListByUser 查询借书车条目,最近加入的在前
func (r *cartRepository) ListByUser(ctx context.Context, userID uint) ([]*cart.Line, error) {
	var models []CartLineModel
	err := getDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, translateError(err, "查询借书车失败")
	}

	lines := make([]*cart.Line, len(models))
	for i := range models {
		lines[i] = toCartLine(&models[i])
	}
	return lines, nil
}

// Find 查询单个条目
func (r *cartRepository) Find(ctx context.Context, userID, bookID uint) (*cart.Line, error) {
	var model CartLineModel
	err := getDB(ctx, r.db).Where("user_id = ? AND book_id = ?", userID, bookID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrCartItemNotFound
		}
		return nil, translateError(err, "查询借书车失败")
	}
	return toCartLine(&model), nil
}

func toCartLine(m *CartLineModel) *cart.Line {
	return &cart.Line{
		ID:        m.ID,
		UserID:    m.UserID,
		BookID:    m.BookID,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
