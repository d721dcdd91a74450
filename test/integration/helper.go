//go:build integration

package integration

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appborrow "github.com/xiebiao/library/internal/application/borrow"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
)

// 集成测试直接连接MySQL,验证行锁和事务回滚的真实行为
//
//	LIBRARY_TEST_MYSQL_DSN="root:root@tcp(127.0.0.1:3306)/library_test?charset=utf8mb4&parseTime=true&loc=Local" \
//	  go test -tags=integration ./test/integration/...
const dsnEnv = "LIBRARY_TEST_MYSQL_DSN"

type env struct {
	db       *gorm.DB
	checkout *appborrow.CheckoutUseCase
	tickets  *appborrow.TicketUseCase
	query    *appborrow.QueryUseCase
}

func setup(t *testing.T) *env {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("未设置%s,跳过集成测试", dsnEnv)
	}

	db, err := gorm.Open(gormmysql.Open(dsn+"&innodb_lock_wait_timeout=5"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, mysql.AutoMigrate(db))

	books := mysql.NewBookRepository(db)
	copies := mysql.NewCopyRepository(db)
	carts := mysql.NewCartRepository(db)
	tickets := mysql.NewBorrowRepository(db)
	tx := mysql.NewTxManager(db)
	policy := appborrow.DefaultPolicy()

	return &env{
		db:       db,
		checkout: appborrow.NewCheckoutUseCase(tickets, copies, carts, books, tx, borrow.NopPublisher{}, nil, policy),
		tickets:  appborrow.NewTicketUseCase(tickets, copies, tx, borrow.NopPublisher{}, nil, policy),
		query:    appborrow.NewQueryUseCase(tickets, books),
	}
}

// seedBook 创建书目和n个AVAILABLE副本
func (e *env) seedBook(t *testing.T, title string, n int) uint {
	t.Helper()
	stamp := time.Now().UnixNano()

	b := mysql.BookModel{
		ISBN:      fmt.Sprintf("978%010d", stamp%10000000000),
		Title:     title,
		Author:    "测试作者",
		Publisher: "测试出版社",
	}
	require.NoError(t, e.db.Create(&b).Error)

	for i := 0; i < n; i++ {
		c := mysql.CopyModel{
			BookID:  b.ID,
			Barcode: fmt.Sprintf("T%d-%d", stamp, i),
			Status:  "AVAILABLE",
		}
		require.NoError(t, e.db.Create(&c).Error)
	}
	return b.ID
}

func (e *env) seedCart(t *testing.T, userID, bookID uint, quantity int) {
	t.Helper()
	require.NoError(t, e.db.Create(&mysql.CartLineModel{UserID: userID, BookID: bookID, Quantity: quantity}).Error)
}

func (e *env) countCopies(t *testing.T, bookID uint, status string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&mysql.CopyModel{}).Where("book_id = ? AND status = ?", bookID, status).Count(&n).Error)
	return n
}

func (e *env) countCart(t *testing.T, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&mysql.CartLineModel{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

// uniqueUser 避免重复运行时读者数据互相影响
func uniqueUser() uint {
	return uint(time.Now().UnixNano()%1_000_000_000) + 1
}
