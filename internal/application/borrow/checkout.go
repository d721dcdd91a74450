package borrow

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/cart"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// CheckoutUseCase 借书车结算用例
// 把读者的借阅意向转换成对具体副本的预约,并生成借阅单。
//
// 核心问题:同一本书的最后几个副本被多个读者同时结算
// 解决方案:两段式校验
//  1. 预检查:事务内统计AVAILABLE副本数,不足时立即返回全部缺口(对用户友好,但只是建议性的)
//  2. 锁定挑选:SELECT ... FOR UPDATE按入藏时间挑选副本,这一步才是正确性的唯一保证;
//     拿到的行数少于需要的数量,说明被并发事务抢先,整体回滚并返回Conflict
//
// 不要为了性能去掉第2步的锁,也不要把第1步的计数当成事实来源。
type CheckoutUseCase struct {
	tickets borrow.Repository
	copies  bookcopy.Repository
	carts   cart.Repository
	books   book.Repository
	tx      TxManager
	after   *afterCommit
	policy  Policy
	now     func() time.Time
}

// NewCheckoutUseCase 创建结算用例;cache和publisher可以为nil
func NewCheckoutUseCase(
	tickets borrow.Repository,
	copies bookcopy.Repository,
	carts cart.Repository,
	books book.Repository,
	tx TxManager,
	publisher borrow.EventPublisher,
	cache bookcopy.SnapshotCache,
	policy Policy,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		tickets: tickets,
		copies:  copies,
		carts:   carts,
		books:   books,
		tx:      tx,
		after:   &afterCommit{publisher: publisher, cache: cache, now: time.Now},
		policy:  policy,
		now:     time.Now,
	}
}

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	UserID uint
	Items  []CheckoutItem
}

// CheckoutItem 结算明细
type CheckoutItem struct {
	BookID   uint
	Quantity int
}

// ReservedCopy 已预约的副本
type ReservedCopy struct {
	CopyID uint   `json:"copy_id"`
	BookID uint   `json:"book_id"`
	Title  string `json:"book_title"`
}

// CheckoutResponse 结算结果
type CheckoutResponse struct {
	TicketID       uint           `json:"ticket_id"`
	TicketNo       string         `json:"ticket_no"`
	Status         string         `json:"status"`
	BorrowDate     string         `json:"borrow_date"`
	DueDate        string         `json:"due_date"`
	PickupDeadline string         `json:"pickup_deadline"`
	ReservedCopies []ReservedCopy `json:"reserved_copies"`
	Note           string         `json:"note"`
}

// Execute 执行结算
//
// 失败时不产生任何持久化变化:副本状态、借阅台账、借书车全部保持原样。
func (uc *CheckoutUseCase) Execute(ctx context.Context, req CheckoutRequest) (resp *CheckoutResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "borrow.Checkout")
	start := time.Now()
	metrics.CheckoutsInProgress.Inc()
	defer func() {
		metrics.CheckoutsInProgress.Dec()
		metrics.CheckoutDuration.Observe(time.Since(start).Seconds())
		metrics.CheckoutsTotal.WithLabelValues(checkoutResult(err)).Inc()
		tracing.EndSpan(span, err)
	}()

	// ========================================
	// 事务外:参数校验与书目存在性
	// ========================================
	items, err := normalizeItems(req, uc.policy)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("user_id", int64(req.UserID)),
		attribute.Int("item_count", len(items)),
	)

	bookIDs := make([]uint, len(items))
	for i, it := range items {
		bookIDs[i] = it.BookID
	}
	books, err := uc.books.FindByIDs(ctx, bookIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range bookIDs {
		if _, ok := books[id]; !ok {
			return nil, apperrors.New(apperrors.ErrCodeBookNotFound, fmt.Sprintf("图书不存在(ID:%d)", id))
		}
	}

	now := uc.now()
	var (
		ticket   *borrow.Ticket
		reserved []ReservedCopy
	)

	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		// ========================================
		// 步骤1:预检查(建议性),收集全部缺口
		// ========================================
		var shortfalls []borrow.Shortfall
		for _, it := range items {
			available, err := uc.copies.CountAvailable(txCtx, it.BookID)
			if err != nil {
				return err
			}
			if it.Quantity > available {
				shortfalls = append(shortfalls,
					borrow.NewShortfall(it.BookID, books[it.BookID].DisplayTitle(), it.Quantity, available))
			}
		}
		if len(shortfalls) > 0 {
			return borrow.NewInsufficientStockError(shortfalls)
		}

		// ========================================
		// 步骤2:创建借阅单(PENDING)
		// ========================================
		t := borrow.NewTicket(req.UserID, now, uc.policy.LoanPeriod)
		if err := uc.tickets.Create(txCtx, t); err != nil {
			return err
		}

		// ========================================
		// 步骤3:按入藏时间挑选并锁定副本
		// ========================================
		// items已按book_id升序,所有结算以相同顺序加锁,降低死锁概率
		lines := make([]borrow.Line, 0, totalQuantity(items))
		copyIDs := make([]uint, 0, cap(lines))
		picked := make([]ReservedCopy, 0, cap(lines))
		for _, it := range items {
			copies, err := uc.copies.LockAvailable(txCtx, it.BookID, it.Quantity)
			if err != nil {
				return err
			}
			if len(copies) < it.Quantity {
				slog.WarnContext(ctx, "checkout lost copy race",
					"user_id", req.UserID,
					"book_id", it.BookID,
					"requested", it.Quantity,
					"locked", len(copies),
				)
				return borrow.ErrCopyRaced
			}
			for _, c := range copies {
				lines = append(lines, borrow.Line{TicketID: t.ID, CopyID: c.ID, BookID: it.BookID, CreatedAt: now})
				copyIDs = append(copyIDs, c.ID)
				picked = append(picked, ReservedCopy{CopyID: c.ID, BookID: it.BookID, Title: books[it.BookID].DisplayTitle()})
			}
		}

		// ========================================
		// 步骤4:写明细,副本AVAILABLE → RESERVED
		// ========================================
		if err := uc.tickets.AddLines(txCtx, t.ID, lines); err != nil {
			return err
		}
		affected, err := uc.copies.TransitionStatus(txCtx, copyIDs, bookcopy.StatusAvailable, bookcopy.StatusReserved)
		if err != nil {
			return err
		}
		if affected != int64(len(copyIDs)) {
			return borrow.ErrCopyRaced
		}

		// ========================================
		// 步骤5:整车清空
		// ========================================
		if _, err := uc.carts.DeleteByUser(txCtx, req.UserID); err != nil {
			return err
		}

		t.Lines = lines
		ticket = t
		reserved = picked
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CopiesReservedTotal.Add(float64(len(reserved)))
	uc.after.run(ctx, borrow.EventTicketCreated, ticket)

	slog.InfoContext(ctx, "checkout succeeded",
		"user_id", req.UserID,
		"ticket_no", ticket.Number(),
		"copies", len(reserved),
	)

	pickupDeadline := ticket.CreatedAt.Add(uc.policy.PickupWindow)
	return &CheckoutResponse{
		TicketID:       ticket.ID,
		TicketNo:       ticket.Number(),
		Status:         string(ticket.Status),
		BorrowDate:     ticket.BorrowDate.Format(dateLayout),
		DueDate:        ticket.DueDate.Format(dateLayout),
		PickupDeadline: pickupDeadline.Format(dateLayout),
		ReservedCopies: reserved,
		Note:           fmt.Sprintf("请在%s前到馆出示借阅单号取书,逾期将自动取消", pickupDeadline.Format(dateLayout)),
	}, nil
}

const dateLayout = "2006-01-02"

// normalizeItems 校验并合并同一书目的多行,按book_id升序
// 合并后的数量不超过MaxQuantityPerLine;未配置上限时也不允许累加溢出
func normalizeItems(req CheckoutRequest, policy Policy) ([]CheckoutItem, error) {
	if req.UserID == 0 {
		return nil, borrow.ErrInvalidUser
	}
	if len(req.Items) == 0 {
		return nil, borrow.ErrEmptyItems
	}

	merged := make(map[uint]int, len(req.Items))
	for _, it := range req.Items {
		if it.BookID == 0 {
			return nil, book.ErrInvalidBookID
		}
		if it.Quantity < 1 {
			return nil, borrow.ErrInvalidQuantity
		}
		sum := merged[it.BookID]
		if sum > math.MaxInt-it.Quantity {
			return nil, borrow.ErrQuantityExceeded
		}
		sum += it.Quantity
		if policy.MaxQuantityPerLine > 0 && sum > policy.MaxQuantityPerLine {
			return nil, borrow.ErrQuantityExceeded
		}
		merged[it.BookID] = sum
	}
	if policy.MaxItems > 0 && len(merged) > policy.MaxItems {
		return nil, borrow.ErrTooManyItems
	}

	items := make([]CheckoutItem, 0, len(merged))
	for id, q := range merged {
		items = append(items, CheckoutItem{BookID: id, Quantity: q})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].BookID < items[j].BookID })
	return items, nil
}

func totalQuantity(items []CheckoutItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case apperrors.IsInsufficientStock(err):
		return metrics.ResultInsufficientStock
	case apperrors.IsConflict(err):
		return metrics.ResultConflict
	case apperrors.IsInvalidArgument(err), apperrors.IsNotFound(err):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
