package borrow

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/cart"
)

// ========================================
// 内存存储(仅测试使用)
// 事务通过txMu串行化,出错时整体恢复快照,模拟数据库的原子提交
// ========================================

type memStore struct {
	txMu   sync.Mutex
	dataMu sync.Mutex

	books   map[uint]*book.Book
	copies  map[uint]*bookcopy.Copy
	carts   map[[2]uint]*cart.Line
	tickets map[uint]*borrow.Ticket

	copySeq, ticketSeq, lineSeq, cartSeq uint

	// 测试钩子
	beforeLock     func(s *memStore, bookID uint) // 在LockAvailable取数前调用(已持有dataMu)
	failDeleteCart error
}

func newMemStore() *memStore {
	return &memStore{
		books:   map[uint]*book.Book{},
		copies:  map[uint]*bookcopy.Copy{},
		carts:   map[[2]uint]*cart.Line{},
		tickets: map[uint]*borrow.Ticket{},
	}
}

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// addBook 新增书目及n个AVAILABLE副本,副本入藏时间递增
func (s *memStore) addBook(id uint, title string, n int) []uint {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.books[id] = &book.Book{ID: id, Title: title, Author: "作者" + title}
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		s.copySeq++
		s.copies[s.copySeq] = &bookcopy.Copy{
			ID:        s.copySeq,
			BookID:    id,
			Status:    bookcopy.StatusAvailable,
			CreatedAt: baseTime.Add(time.Duration(s.copySeq) * time.Minute),
		}
		ids = append(ids, s.copySeq)
	}
	return ids
}

// addCopyAt 给已有书目追加一个指定入藏时间的AVAILABLE副本
func (s *memStore) addCopyAt(bookID uint, createdAt time.Time) uint {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.copySeq++
	s.copies[s.copySeq] = &bookcopy.Copy{
		ID:        s.copySeq,
		BookID:    bookID,
		Status:    bookcopy.StatusAvailable,
		CreatedAt: createdAt,
	}
	return s.copySeq
}

func (s *memStore) putCart(userID, bookID uint, qty int) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.cartSeq++
	s.carts[[2]uint{userID, bookID}] = &cart.Line{ID: s.cartSeq, UserID: userID, BookID: bookID, Quantity: qty}
}

func (s *memStore) copyStatus(id uint) bookcopy.Status {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return s.copies[id].Status
}

func (s *memStore) setCopyStatus(id uint, st bookcopy.Status) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.copies[id].Status = st
}

func (s *memStore) countStatus(bookID uint, st bookcopy.Status) int {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	n := 0
	for _, c := range s.copies {
		if c.BookID == bookID && c.Status == st {
			n++
		}
	}
	return n
}

func (s *memStore) cartSize(userID uint) int {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	n := 0
	for k := range s.carts {
		if k[0] == userID {
			n++
		}
	}
	return n
}

func (s *memStore) ticketCount() int {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return len(s.tickets)
}

// openTicketsReferencing 引用某副本的未结束借阅单数
func (s *memStore) openTicketsReferencing(copyID uint) int {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	n := 0
	for _, t := range s.tickets {
		if !t.Status.IsOpen() {
			continue
		}
		for _, l := range t.Lines {
			if l.CopyID == copyID {
				n++
			}
		}
	}
	return n
}

// ---------- 事务 ----------

type snapshot struct {
	copies  map[uint]bookcopy.Copy
	carts   map[[2]uint]cart.Line
	tickets map[uint]borrow.Ticket
	seqs    [4]uint
}

func (s *memStore) snapshot() snapshot {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	snap := snapshot{
		copies:  make(map[uint]bookcopy.Copy, len(s.copies)),
		carts:   make(map[[2]uint]cart.Line, len(s.carts)),
		tickets: make(map[uint]borrow.Ticket, len(s.tickets)),
		seqs:    [4]uint{s.copySeq, s.ticketSeq, s.lineSeq, s.cartSeq},
	}
	for k, v := range s.copies {
		snap.copies[k] = *v
	}
	for k, v := range s.carts {
		snap.carts[k] = *v
	}
	for k, v := range s.tickets {
		t := *v
		t.Lines = append([]borrow.Line(nil), v.Lines...)
		snap.tickets[k] = t
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.copies = make(map[uint]*bookcopy.Copy, len(snap.copies))
	for k, v := range snap.copies {
		c := v
		s.copies[k] = &c
	}
	s.carts = make(map[[2]uint]*cart.Line, len(snap.carts))
	for k, v := range snap.carts {
		l := v
		s.carts[k] = &l
	}
	s.tickets = make(map[uint]*borrow.Ticket, len(snap.tickets))
	for k, v := range snap.tickets {
		t := v
		s.tickets[k] = &t
	}
	s.copySeq, s.ticketSeq, s.lineSeq, s.cartSeq = snap.seqs[0], snap.seqs[1], snap.seqs[2], snap.seqs[3]
}

func (s *memStore) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ---------- book.Repository ----------

type memBooks struct{ s *memStore }

func (r memBooks) FindByID(_ context.Context, id uint) (*book.Book, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	b, ok := r.s.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (r memBooks) FindByIDs(_ context.Context, ids []uint) (map[uint]*book.Book, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	out := make(map[uint]*book.Book, len(ids))
	for _, id := range ids {
		if b, ok := r.s.books[id]; ok {
			cp := *b
			out[id] = &cp
		}
	}
	return out, nil
}

func (r memBooks) List(_ context.Context, p book.ListParams) ([]*book.Book, int64, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	var out []*book.Book
	for _, b := range r.s.books {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ---------- bookcopy.Repository ----------

type memCopies struct{ s *memStore }

func (r memCopies) CountAvailable(_ context.Context, bookID uint) (int, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	n := 0
	for _, c := range r.s.copies {
		if c.BookID == bookID && c.Status == bookcopy.StatusAvailable {
			n++
		}
	}
	return n, nil
}

func (r memCopies) CountAvailableByBookIDs(ctx context.Context, bookIDs []uint) (map[uint]int, error) {
	out := make(map[uint]int, len(bookIDs))
	for _, id := range bookIDs {
		n, _ := r.CountAvailable(ctx, id)
		out[id] = n
	}
	return out, nil
}

func (r memCopies) CountByStatus(_ context.Context, bookID uint) (map[bookcopy.Status]int, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	out := map[bookcopy.Status]int{}
	for _, c := range r.s.copies {
		if c.BookID == bookID {
			out[c.Status]++
		}
	}
	return out, nil
}

func (r memCopies) LockAvailable(_ context.Context, bookID uint, limit int) ([]*bookcopy.Copy, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	if r.s.beforeLock != nil {
		r.s.beforeLock(r.s, bookID)
	}
	var out []*bookcopy.Copy
	for _, c := range r.s.copies {
		if c.BookID == bookID && c.Status == bookcopy.StatusAvailable {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memCopies) FindByIDs(_ context.Context, ids []uint) ([]*bookcopy.Copy, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	var out []*bookcopy.Copy
	for _, id := range ids {
		if c, ok := r.s.copies[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memCopies) TransitionStatus(_ context.Context, ids []uint, from, to bookcopy.Status) (int64, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	var n int64
	for _, id := range ids {
		if c, ok := r.s.copies[id]; ok && c.Status == from {
			c.Status = to
			n++
		}
	}
	return n, nil
}

// ---------- cart.Repository ----------

type memCarts struct{ s *memStore }

func (r memCarts) AddQuantity(_ context.Context, userID, bookID uint, delta int) (*cart.Line, error) {
	return nil, errors.New("not used")
}

func (r memCarts) SetQuantity(_ context.Context, userID, bookID uint, quantity int) (*cart.Line, error) {
	return nil, errors.New("not used")
}

func (r memCarts) Find(_ context.Context, userID, bookID uint) (*cart.Line, error) {
	return nil, errors.New("not used")
}

func (r memCarts) Delete(_ context.Context, userID, bookID uint) error {
	return errors.New("not used")
}

func (r memCarts) DeleteByUser(_ context.Context, userID uint) (int64, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	if r.s.failDeleteCart != nil {
		return 0, r.s.failDeleteCart
	}
	var n int64
	for k := range r.s.carts {
		if k[0] == userID {
			delete(r.s.carts, k)
			n++
		}
	}
	return n, nil
}

func (r memCarts) ListByUser(_ context.Context, userID uint) ([]*cart.Line, error) {
	return nil, errors.New("not used")
}

// ---------- borrow.Repository ----------

type memTickets struct{ s *memStore }

func cloneTicket(t *borrow.Ticket) *borrow.Ticket {
	cp := *t
	cp.Lines = append([]borrow.Line(nil), t.Lines...)
	return &cp
}

func (r memTickets) Create(_ context.Context, t *borrow.Ticket) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	r.s.ticketSeq++
	t.ID = r.s.ticketSeq
	r.s.tickets[t.ID] = cloneTicket(t)
	return nil
}

func (r memTickets) AddLines(_ context.Context, ticketID uint, lines []borrow.Line) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	t, ok := r.s.tickets[ticketID]
	if !ok {
		return borrow.ErrTicketNotFound
	}
	for i := range lines {
		r.s.lineSeq++
		lines[i].ID = r.s.lineSeq
		lines[i].TicketID = ticketID
		t.Lines = append(t.Lines, lines[i])
	}
	return nil
}

func (r memTickets) FindByID(_ context.Context, id uint) (*borrow.Ticket, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, borrow.ErrTicketNotFound
	}
	return cloneTicket(t), nil
}

func (r memTickets) LockByID(ctx context.Context, id uint) (*borrow.Ticket, error) {
	return r.FindByID(ctx, id)
}

func (r memTickets) ListByUserID(_ context.Context, userID uint, page, pageSize int) ([]*borrow.Ticket, int64, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	var all []*borrow.Ticket
	for _, t := range r.s.tickets {
		if t.UserID == userID {
			all = append(all, cloneTicket(t))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []*borrow.Ticket{}, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r memTickets) UpdateStatus(_ context.Context, t *borrow.Ticket, from borrow.TicketStatus) error {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	cur, ok := r.s.tickets[t.ID]
	if !ok {
		return borrow.ErrTicketNotFound
	}
	if cur.Status != from {
		return borrow.ErrCopyRaced
	}
	cur.Status = t.Status
	cur.BorrowDate = t.BorrowDate
	cur.DueDate = t.DueDate
	cur.ReturnedAt = t.ReturnedAt
	cur.UpdatedAt = t.UpdatedAt
	return nil
}

func (r memTickets) ListPendingBefore(_ context.Context, cutoff time.Time, limit int) ([]uint, error) {
	r.s.dataMu.Lock()
	defer r.s.dataMu.Unlock()
	var ids []uint
	for _, t := range r.s.tickets {
		if t.Status == borrow.TicketStatusPending && t.CreatedAt.Before(cutoff) {
			ids = append(ids, t.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// ---------- 事件与缓存 ----------

type recordingPublisher struct {
	mu     sync.Mutex
	events []borrow.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt borrow.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []uint
}

func (c *recordingCache) GetMany(context.Context, []uint) (map[uint]int, error) {
	return map[uint]int{}, nil
}

func (c *recordingCache) SetMany(context.Context, map[uint]int) error { return nil }

func (c *recordingCache) Invalidate(_ context.Context, ids ...uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ids...)
	return nil
}

// ---------- 组装 ----------

type fixture struct {
	store     *memStore
	publisher *recordingPublisher
	cache     *recordingCache
	checkout  *CheckoutUseCase
	tickets   *TicketUseCase
	query     *QueryUseCase
	clock     *time.Time
}

func newFixture() *fixture {
	s := newMemStore()
	pub := &recordingPublisher{}
	cache := &recordingCache{}
	now := baseTime.Add(24 * time.Hour)
	f := &fixture{store: s, publisher: pub, cache: cache, clock: &now}
	clock := func() time.Time { return *f.clock }

	policy := DefaultPolicy()
	f.checkout = NewCheckoutUseCase(memTickets{s}, memCopies{s}, memCarts{s}, memBooks{s}, s, pub, cache, policy)
	f.checkout.now = clock
	f.tickets = NewTicketUseCase(memTickets{s}, memCopies{s}, s, pub, cache, policy)
	f.tickets.now = clock
	f.query = NewQueryUseCase(memTickets{s}, memBooks{s})
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}
