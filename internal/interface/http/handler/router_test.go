package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appborrow "github.com/xiebiao/library/internal/application/borrow"
	appcart "github.com/xiebiao/library/internal/application/cart"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/cart"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
)

// ---- stubs ----

type stubCart struct {
	snapshot *cart.Snapshot
	added    []uint
}

func (s *stubCart) AddItem(_ context.Context, _, bookID uint, quantity int) (*appcart.AddItemResponse, error) {
	s.added = append(s.added, bookID)
	return &appcart.AddItemResponse{BookID: bookID, Quantity: quantity, Cart: s.snapshot}, nil
}

func (s *stubCart) UpdateQuantity(context.Context, uint, uint, int) (*cart.Snapshot, error) {
	return nil, cart.ErrCartItemNotFound
}

func (s *stubCart) RemoveItem(context.Context, uint, uint) (*cart.Snapshot, error) {
	return s.snapshot, nil
}

func (s *stubCart) Clear(context.Context, uint) error { return nil }

func (s *stubCart) Get(context.Context, uint) (*cart.Snapshot, error) {
	return s.snapshot, nil
}

type stubCheckout struct {
	got appborrow.CheckoutRequest
	err error
}

func (s *stubCheckout) Execute(_ context.Context, req appborrow.CheckoutRequest) (*appborrow.CheckoutResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &appborrow.CheckoutResponse{TicketID: 1, TicketNo: "BRW-000001", Status: "PENDING"}, nil
}

type stubTickets struct {
	confirmed []uint
}

func (s *stubTickets) Confirm(_ context.Context, id uint) (*appborrow.TicketDTO, error) {
	s.confirmed = append(s.confirmed, id)
	return &appborrow.TicketDTO{ID: id, Status: "ACTIVE"}, nil
}

func (s *stubTickets) Return(_ context.Context, id uint) (*appborrow.TicketDTO, error) {
	return &appborrow.TicketDTO{ID: id, Status: "RETURNED"}, nil
}

func (s *stubTickets) Cancel(_ context.Context, userID, id uint) (*appborrow.TicketDTO, error) {
	return &appborrow.TicketDTO{ID: id, UserID: userID, Status: "CANCELLED"}, nil
}

type stubQuery struct{}

func (stubQuery) Get(_ context.Context, userID, id uint) (*appborrow.TicketDTO, error) {
	return &appborrow.TicketDTO{ID: id, UserID: userID}, nil
}

func (stubQuery) GetByNumber(_ context.Context, no string) (*appborrow.TicketDTO, error) {
	return &appborrow.TicketDTO{ID: 123, TicketNo: no}, nil
}

func (stubQuery) List(context.Context, uint, int, int) ([]*appborrow.TicketDTO, int64, error) {
	return []*appborrow.TicketDTO{{ID: 1}}, 1, nil
}

type memBlacklist struct {
	revoked map[string]time.Duration
}

func (m *memBlacklist) Revoke(_ context.Context, id string, ttl time.Duration) error {
	m.revoked[id] = ttl
	return nil
}

func (m *memBlacklist) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := m.revoked[id]
	return ok, nil
}

// ---- helpers ----

type env struct {
	router    *gin.Engine
	jwt       *jwt.Manager
	cart      *stubCart
	checkout  *stubCheckout
	tickets   *stubTickets
	blacklist *memBlacklist
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e := &env{
		jwt:       jwt.NewManager("test-secret", "library"),
		cart:      &stubCart{snapshot: &cart.Snapshot{}},
		checkout:  &stubCheckout{},
		tickets:   &stubTickets{},
		blacklist: &memBlacklist{revoked: map[string]time.Duration{}},
	}
	e.router = NewRouter(Handlers{
		Book:   NewBookHandler(nil, nil),
		Cart:   NewCartHandler(e.cart),
		Borrow: NewBorrowHandler(e.checkout, e.tickets, stubQuery{}, e.cart),
		Auth:   NewAuthHandler(e.blacklist),
	}, middleware.NewAuthMiddleware(e.jwt, e.blacklist), RouterOptions{ServiceName: "library-test"})
	return e
}

func (e *env) token(t *testing.T, userID uint, role string) string {
	t.Helper()
	tok, err := e.jwt.GenerateToken(userID, role, time.Hour)
	require.NoError(t, err)
	return tok
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *env) do(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

// ---- tests ----

func TestAuthGuard(t *testing.T) {
	e := newEnv(t)

	t.Run("未携带Token", func(t *testing.T) {
		_, resp := e.do(t, http.MethodGet, "/api/v1/cart", "", nil)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, resp.Code)
	})

	t.Run("Token格式错误", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), "40101")
	})

	t.Run("读者不能访问服务台", func(t *testing.T) {
		_, resp := e.do(t, http.MethodPost, "/api/v1/desk/borrows/5/confirm", e.token(t, 7, jwt.RoleReader), nil)
		assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)
		assert.Empty(t, e.tickets.confirmed)
	})

	t.Run("馆员确认取书", func(t *testing.T) {
		_, resp := e.do(t, http.MethodPost, "/api/v1/desk/borrows/5/confirm", e.token(t, 1, jwt.RoleLibrarian), nil)
		assert.Equal(t, 0, resp.Code)
		assert.Equal(t, []uint{5}, e.tickets.confirmed)
	})

	t.Run("注销后Token失效", func(t *testing.T) {
		tok := e.token(t, 7, jwt.RoleReader)

		_, resp := e.do(t, http.MethodPost, "/api/v1/auth/logout", tok, nil)
		require.Equal(t, 0, resp.Code)
		require.Len(t, e.blacklist.revoked, 1)
		for _, ttl := range e.blacklist.revoked {
			assert.Greater(t, ttl, 59*time.Minute)
		}

		_, resp = e.do(t, http.MethodGet, "/api/v1/cart", tok, nil)
		assert.Equal(t, apperrors.ErrCodeTokenExpired, resp.Code)
	})
}

func TestCheckoutHandler(t *testing.T) {
	t.Run("按请求明细结算", func(t *testing.T) {
		e := newEnv(t)
		status, resp := e.do(t, http.MethodPost, "/api/v1/borrows", e.token(t, 7, jwt.RoleReader), map[string]any{
			"items": []map[string]any{{"book_id": 2, "quantity": 1}, {"book_id": 1, "quantity": 2}},
		})

		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, 0, resp.Code)
		assert.Equal(t, uint(7), e.checkout.got.UserID)
		assert.Equal(t, []appborrow.CheckoutItem{{BookID: 2, Quantity: 1}, {BookID: 1, Quantity: 2}}, e.checkout.got.Items)
	})

	t.Run("明细为空时结算整个借书车", func(t *testing.T) {
		e := newEnv(t)
		e.cart.snapshot = &cart.Snapshot{Items: []cart.SnapshotItem{{BookID: 3, Quantity: 2}}}

		_, resp := e.do(t, http.MethodPost, "/api/v1/borrows", e.token(t, 7, jwt.RoleReader), map[string]any{})

		assert.Equal(t, 0, resp.Code)
		assert.Equal(t, []appborrow.CheckoutItem{{BookID: 3, Quantity: 2}}, e.checkout.got.Items)
	})

	t.Run("可借不足时返回缺口列表", func(t *testing.T) {
		e := newEnv(t)
		e.checkout.err = apperrors.ErrInsufficientStock.WithDetails([]borrow.Shortfall{
			{BookID: 1, Title: "Go语言实战", Requested: 2, Available: 1},
		})

		status, resp := e.do(t, http.MethodPost, "/api/v1/borrows", e.token(t, 7, jwt.RoleReader), map[string]any{
			"items": []map[string]any{{"book_id": 1, "quantity": 2}},
		})

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, resp.Code)
		var shortfalls []borrow.Shortfall
		require.NoError(t, json.Unmarshal(resp.Data, &shortfalls))
		require.Len(t, shortfalls, 1)
		assert.Equal(t, 1, shortfalls[0].Available)
	})

	t.Run("数量非法被绑定拦截", func(t *testing.T) {
		e := newEnv(t)
		_, resp := e.do(t, http.MethodPost, "/api/v1/borrows", e.token(t, 7, jwt.RoleReader), map[string]any{
			"items": []map[string]any{{"book_id": 1, "quantity": 0}},
		})
		assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
		assert.Zero(t, e.checkout.got.UserID, "不应调用结算")
	})
}

func TestBorrowQueries(t *testing.T) {
	e := newEnv(t)
	reader := e.token(t, 7, jwt.RoleReader)

	t.Run("列表分页默认值", func(t *testing.T) {
		_, resp := e.do(t, http.MethodGet, "/api/v1/borrows", reader, nil)
		require.Equal(t, 0, resp.Code)
		var page struct {
			Total    int64 `json:"total"`
			Page     int   `json:"page"`
			PageSize int   `json:"page_size"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 20, page.PageSize)
	})

	t.Run("非法ID", func(t *testing.T) {
		_, resp := e.do(t, http.MethodGet, "/api/v1/borrows/abc", reader, nil)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)
	})

	t.Run("取消使用当前读者身份", func(t *testing.T) {
		_, resp := e.do(t, http.MethodPost, "/api/v1/borrows/9/cancel", reader, nil)
		require.Equal(t, 0, resp.Code)
		var dto appborrow.TicketDTO
		require.NoError(t, json.Unmarshal(resp.Data, &dto))
		assert.Equal(t, uint(7), dto.UserID)
		assert.Equal(t, "CANCELLED", dto.Status)
	})

	t.Run("服务台按单号查询", func(t *testing.T) {
		_, resp := e.do(t, http.MethodGet, "/api/v1/desk/borrows/lookup?ticket_no=BRW-000123", e.token(t, 1, jwt.RoleLibrarian), nil)
		require.Equal(t, 0, resp.Code)
		assert.Contains(t, string(resp.Data), "BRW-000123")
	})
}

func TestCartHandler(t *testing.T) {
	e := newEnv(t)
	reader := e.token(t, 7, jwt.RoleReader)

	t.Run("加入借书车返回201", func(t *testing.T) {
		status, resp := e.do(t, http.MethodPost, "/api/v1/cart/items", reader, map[string]any{"book_id": 4, "quantity": 1})
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, 0, resp.Code)
		assert.Equal(t, []uint{4}, e.cart.added)
	})

	t.Run("修改不存在的条目", func(t *testing.T) {
		_, resp := e.do(t, http.MethodPut, "/api/v1/cart/items/4", reader, map[string]any{"quantity": 3})
		assert.Equal(t, apperrors.ErrCodeCartItemNotFound, resp.Code)
	})

	t.Run("修改数量缺少quantity", func(t *testing.T) {
		_, resp := e.do(t, http.MethodPut, "/api/v1/cart/items/4", reader, map[string]any{})
		assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
	})
}

func TestPing(t *testing.T) {
	e := newEnv(t)
	_, resp := e.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, 0, resp.Code)
}
