package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/bookcopy"
)

// copyRepository 馆藏副本仓储(MySQL)
type copyRepository struct {
	db *gorm.DB
}

// NewCopyRepository 创建副本仓储
func NewCopyRepository(db *gorm.DB) bookcopy.Repository {
	return &copyRepository{db: db}
}

// CountAvailable 统计某书目AVAILABLE副本数
// 在事务内调用时读到的是该事务的一致性快照
func (r *copyRepository) CountAvailable(ctx context.Context, bookID uint) (int, error) {
	var n int64
	err := getDB(ctx, r.db).Model(&CopyModel{}).
		Where("book_id = ? AND status = ?", bookID, string(bookcopy.StatusAvailable)).
		Count(&n).Error
	if err != nil {
		return 0, translateError(err, "统计可借副本失败")
	}
	return int(n), nil
}

type bookCount struct {
	BookID uint
	N      int
}

// CountAvailableByBookIDs 批量统计,没有可借副本的书目值为0
func (r *copyRepository) CountAvailableByBookIDs(ctx context.Context, bookIDs []uint) (map[uint]int, error) {
	result := make(map[uint]int, len(bookIDs))
	if len(bookIDs) == 0 {
		return result, nil
	}

	var rows []bookCount
	err := getDB(ctx, r.db).Model(&CopyModel{}).
		Select("book_id, COUNT(*) AS n").
		Where("book_id IN ? AND status = ?", bookIDs, string(bookcopy.StatusAvailable)).
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "统计可借副本失败")
	}

	for _, id := range bookIDs {
		result[id] = 0
	}
	for _, row := range rows {
		result[row.BookID] = row.N
	}
	return result, nil
}

// CountByStatus 某书目各状态的副本数
func (r *copyRepository) CountByStatus(ctx context.Context, bookID uint) (map[bookcopy.Status]int, error) {
	var rows []struct {
		Status string
		N      int
	}
	err := getDB(ctx, r.db).Model(&CopyModel{}).
		Select("status, COUNT(*) AS n").
		Where("book_id = ?", bookID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "统计副本状态失败")
	}

	result := make(map[bookcopy.Status]int, len(rows))
	for _, row := range rows {
		result[bookcopy.Status(row.Status)] = row.N
	}
	return result, nil
}

// LockAvailable 按入藏时间挑选并锁定最多limit个AVAILABLE副本
//
//	SELECT * FROM book_copies
//	WHERE book_id = ? AND status = 'AVAILABLE'
//	ORDER BY created_at, id LIMIT ? FOR UPDATE
//
// 必须在事务内调用。返回行数少于limit说明副本已被其他事务抢先。
func (r *copyRepository) LockAvailable(ctx context.Context, bookID uint, limit int) ([]*bookcopy.Copy, error) {
	var models []CopyModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("book_id = ? AND status = ?", bookID, string(bookcopy.StatusAvailable)).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, translateError(err, "锁定副本失败")
	}
	return toCopyEntities(models), nil
}

// FindByIDs 批量查询
func (r *copyRepository) FindByIDs(ctx context.Context, ids []uint) ([]*bookcopy.Copy, error) {
	if len(ids) == 0 {
		return []*bookcopy.Copy{}, nil
	}
	var models []CopyModel
	if err := getDB(ctx, r.db).Where("id IN ?", ids).Order("id ASC").Find(&models).Error; err != nil {
		return nil, translateError(err, "查询副本失败")
	}
	return toCopyEntities(models), nil
}

// TransitionStatus 条件更新状态,只更新当前处于from状态的副本,返回实际更新行数
//
//	UPDATE book_copies SET status = ? WHERE id IN ? AND status = ?
func (r *copyRepository) TransitionStatus(ctx context.Context, ids []uint, from, to bookcopy.Status) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if !bookcopy.CanTransition(from, to) {
		return 0, bookcopy.ErrInvalidStatusTransition
	}

	result := getDB(ctx, r.db).Model(&CopyModel{}).
		Where("id IN ? AND status = ?", ids, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, translateError(result.Error, "更新副本状态失败")
	}
	return result.RowsAffected, nil
}

func toCopyEntities(models []CopyModel) []*bookcopy.Copy {
	copies := make([]*bookcopy.Copy, len(models))
	for i, m := range models {
		copies[i] = &bookcopy.Copy{
			ID:        m.ID,
			BookID:    m.BookID,
			Barcode:   m.Barcode,
			Status:    bookcopy.Status(m.Status),
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		}
	}
	return copies
}
