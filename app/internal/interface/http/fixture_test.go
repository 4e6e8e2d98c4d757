package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domcategory "example.com/voltcart/app/internal/domain/category"
	domorder "example.com/voltcart/app/internal/domain/order"
	dompayment "example.com/voltcart/app/internal/domain/payment"
	domproduct "example.com/voltcart/app/internal/domain/product"
	domrecon "example.com/voltcart/app/internal/domain/reconciliation"
	domuser "example.com/voltcart/app/internal/domain/user"
	"example.com/voltcart/app/internal/infra/security"
	authuc "example.com/voltcart/app/internal/usecase/auth"
	cartuc "example.com/voltcart/app/internal/usecase/cart"
	categoryuc "example.com/voltcart/app/internal/usecase/category"
	checkoutuc "example.com/voltcart/app/internal/usecase/checkout"
	orderuc "example.com/voltcart/app/internal/usecase/order"
	productuc "example.com/voltcart/app/internal/usecase/product"
	reconuc "example.com/voltcart/app/internal/usecase/reconciliation"
	useruc "example.com/voltcart/app/internal/usecase/user"
)

// --- In-memory repositories ---

type fakeProductRepo struct {
	products map[int64]*domproduct.Product
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, domproduct.ErrProductNotFound
	}
	cloned := p.Clone()
	return &cloned, nil
}

func (f *fakeProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	var out []*domproduct.Product
	for _, id := range ids {
		if p, err := f.GetByID(ctx, id); err == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	var out []*domproduct.Product
	for _, p := range f.products {
		if filter.OnlyActive && !p.IsActive {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		cloned := p.Clone()
		out = append(out, &cloned)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	var maxID int64
	for id := range f.products {
		if id > maxID {
			maxID = id
		}
	}
	p.ID = maxID + 1
	stored := p.Clone()
	f.products[p.ID] = &stored
	return p, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	if _, ok := f.products[p.ID]; !ok {
		return nil, domproduct.ErrProductNotFound
	}
	stored := p.Clone()
	f.products[p.ID] = &stored
	return p, nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return domproduct.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

type fakeCategoryRepo struct {
	categories map[int64]*domcategory.Category
	products   map[int64]*domproduct.Product
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id int64) (*domcategory.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, domcategory.ErrCategoryNotFound
	}
	cloned := *c
	return &cloned, nil
}

func (f *fakeCategoryRepo) List(ctx context.Context, filter domcategory.ListFilter) ([]*domcategory.Category, error) {
	var out []*domcategory.Category
	for _, c := range f.categories {
		if filter.OnlyActive && !c.IsActive {
			continue
		}
		cloned := *c
		out = append(out, &cloned)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCategoryRepo) slugTaken(slug string, ignoreID int64) bool {
	for id, c := range f.categories {
		if id != ignoreID && c.Slug == slug {
			return true
		}
	}
	return false
}

func (f *fakeCategoryRepo) Create(ctx context.Context, c *domcategory.Category) (*domcategory.Category, error) {
	if f.slugTaken(c.Slug, 0) {
		return nil, domcategory.ErrCategorySlugExists
	}
	var maxID int64
	for id := range f.categories {
		if id > maxID {
			maxID = id
		}
	}
	c.ID = maxID + 1
	stored := *c
	f.categories[c.ID] = &stored
	return c, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, c *domcategory.Category) (*domcategory.Category, error) {
	if _, ok := f.categories[c.ID]; !ok {
		return nil, domcategory.ErrCategoryNotFound
	}
	if f.slugTaken(c.Slug, c.ID) {
		return nil, domcategory.ErrCategorySlugExists
	}
	stored := *c
	f.categories[c.ID] = &stored
	return c, nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.categories[id]; !ok {
		return domcategory.ErrCategoryNotFound
	}
	for _, p := range f.products {
		if p.CategoryID == id {
			return domcategory.ErrCategoryInUse
		}
	}
	delete(f.categories, id)
	return nil
}

// fakeUserRepo hands out copies so handlers never mutate the shared test users.
type fakeUserRepo struct {
	mu    sync.Mutex
	users []*domuser.User
}

func (f *fakeUserRepo) find(match func(u *domuser.User) bool) (*domuser.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domuser.User, error) {
	return f.find(func(u *domuser.User) bool { return u.ID == id })
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domuser.User, error) {
	return f.find(func(u *domuser.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domuser.User) (*domuser.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var maxID int64
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, domuser.ErrEmailAlreadyUsed
		}
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	u.ID = maxID + 1
	stored := *u
	f.users = append(f.users, &stored)
	return u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domuser.User) (*domuser.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.users {
		if existing.ID == u.ID {
			stored := *u
			f.users[i] = &stored
			return u, nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, filter domuser.ListFilter) ([]*domuser.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domuser.User
	for _, u := range f.users {
		if filter.RoleCode != nil && u.RoleCode != *filter.RoleCode {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(filter.Search)) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakePasswordChecker stands in for bcrypt on both sides: Hash prefixes and
// Compare checks the prefix.
type fakePasswordChecker struct{}

func (fakePasswordChecker) Hash(password string) (string, error) {
	if len(password) < domuser.MinPasswordLength {
		return "", domuser.ErrPasswordTooShort
	}
	return "hash:" + password, nil
}

func (fakePasswordChecker) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[int64]*domorder.Order
	nextID    int64
	recordErr error
	records   []domorder.Record
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*domorder.Order), nextID: 1}
}

func (f *fakeOrderRepo) RecordOrder(ctx context.Context, rec domorder.Record) (*domorder.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	o := &domorder.Order{
		ID:               f.nextID,
		UserID:           rec.UserID,
		SessionID:        rec.SessionID,
		IdempotencyKey:   rec.IdempotencyKey,
		PaymentReference: rec.PaymentReference,
		Status:           domorder.StatusPaid,
		TotalAmount:      rec.TotalAmount,
		Items:            rec.Items,
		CreatedAt:        time.Now(),
	}
	f.orders[o.ID] = o
	f.nextID++
	return o, nil
}

func (f *fakeOrderRepo) seed(o *domorder.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
	if o.ID >= f.nextID {
		f.nextID = o.ID + 1
	}
}

func (f *fakeOrderRepo) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domorder.Order
	for _, o := range f.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	o.Status = status
	return o, nil
}

func (f *fakeOrderRepo) Stats(ctx context.Context) ([]domorder.StatusStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byStatus := map[domorder.Status]*domorder.StatusStats{}
	for _, o := range f.orders {
		s, ok := byStatus[o.Status]
		if !ok {
			s = &domorder.StatusStats{Status: o.Status, Revenue: decimal.Zero}
			byStatus[o.Status] = s
		}
		s.Count++
		s.Revenue = s.Revenue.Add(o.TotalAmount)
	}
	var out []domorder.StatusStats
	for _, s := range byStatus {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

type fakeReconRepo struct {
	mu      sync.Mutex
	entries map[int64]*domrecon.Entry
	nextID  int64
}

func newFakeReconRepo() *fakeReconRepo {
	return &fakeReconRepo{entries: make(map[int64]*domrecon.Entry), nextID: 1}
}

func (f *fakeReconRepo) Create(ctx context.Context, e *domrecon.Entry) (*domrecon.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	cp.ID = f.nextID
	f.nextID++
	f.entries[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeReconRepo) GetByID(ctx context.Context, id int64) (*domrecon.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, domrecon.ErrEntryNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeReconRepo) List(ctx context.Context, filter domrecon.ListFilter) ([]*domrecon.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domrecon.Entry
	for _, e := range f.entries {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeReconRepo) Resolve(ctx context.Context, id int64, resolvedBy, note string) (*domrecon.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, domrecon.ErrEntryNotFound
	}
	if e.Status != domrecon.StatusOpen {
		return nil, domrecon.ErrAlreadyResolved
	}
	now := time.Now()
	e.Status = domrecon.StatusResolved
	e.ResolvedAt = &now
	e.ResolvedBy = resolvedBy
	e.Note = note
	cp := *e
	return &cp, nil
}

func (f *fakeReconRepo) HasOpenForSession(ctx context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.SessionID == sessionID && e.Status == domrecon.StatusOpen {
			return true, nil
		}
	}
	return false, nil
}

type fakePaymentGateway struct {
	mu       sync.Mutex
	auth     *dompayment.Authorization
	err      error
	requests []dompayment.Request
}

func (f *fakePaymentGateway) Authorize(ctx context.Context, req dompayment.Request) (*dompayment.Authorization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.auth != nil {
		return f.auth, nil
	}
	return &dompayment.Authorization{
		Reference:   "pay_1",
		Status:      dompayment.StatusSucceeded,
		AmountMinor: req.AmountMinor,
	}, nil
}

// --- Fixture ---

type testEnv struct {
	api        *API
	router     chi.Router
	tokens     *security.JWTService
	products   *fakeProductRepo
	categories *fakeCategoryRepo
	users      *fakeUserRepo
	orders     *fakeOrderRepo
	recon      *fakeReconRepo
	payments   *fakePaymentGateway
	carts      *cartuc.Service
}

var (
	testCustomer = &domuser.User{ID: 100, Name: "Test Customer", Email: "customer@example.com", PasswordHash: "hash:secret123", RoleCode: domuser.RoleCodeCustomer, IsActive: true}
	testAdmin    = &domuser.User{ID: 1, Name: "Test Admin", Email: "admin@example.com", PasswordHash: "hash:secret123", RoleCode: domuser.RoleCodeAdmin, IsActive: true}
	testSuper    = &domuser.User{ID: 2, Name: "Test Super", Email: "super@example.com", PasswordHash: "hash:secret123", RoleCode: domuser.RoleCodeSuperAdmin, IsActive: true}
	testDisabled = &domuser.User{ID: 3, Name: "Gone", Email: "gone@example.com", PasswordHash: "hash:secret123", RoleCode: domuser.RoleCodeCustomer}
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	products := &fakeProductRepo{products: map[int64]*domproduct.Product{
		1: {ID: 1, Name: "LED Bulb 9W", Price: decimal.RequireFromString("100"), Stock: 40, CategoryID: 1, ImageRefs: []string{"bulb.png"}, IsActive: true},
		2: {ID: 2, Name: "Extension Board", Price: decimal.RequireFromString("50"), Stock: 10, CategoryID: 2, IsActive: true},
		3: {ID: 3, Name: "Discontinued Fan", Price: decimal.RequireFromString("1200"), CategoryID: 1, IsActive: false},
	}}
	categories := &fakeCategoryRepo{categories: map[int64]*domcategory.Category{
		1: {ID: 1, Name: "Lighting", Slug: "lighting", IsActive: true},
		2: {ID: 2, Name: "Power", Slug: "power", IsActive: true},
		3: {ID: 3, Name: "Archive", Slug: "archive", IsActive: false},
	}, products: products.products}
	users := &fakeUserRepo{users: []*domuser.User{testCustomer, testAdmin, testSuper, testDisabled}}
	orders := newFakeOrderRepo()
	recon := newFakeReconRepo()
	payments := &fakePaymentGateway{}

	tokens := security.NewJWTService("test-secret", time.Hour)
	categorySvc := categoryuc.NewService(categories)
	cartSvc := cartuc.NewService(products)
	reconSvc := reconuc.NewService(recon)

	api := NewAPI(Dependencies{
		AuthService:     authuc.NewService(users, fakePasswordChecker{}, tokens),
		CategoryService: categorySvc,
		ProductService:  productuc.NewService(products, categorySvc),
		CategoryAdmin:   categoryuc.NewAdminService(categories, categories),
		ProductAdmin:    productuc.NewAdminService(products, products, categories),
		UserService:     useruc.NewService(users, fakePasswordChecker{}),
		CartService:     cartSvc,
		CheckoutService: checkoutuc.NewService(checkoutuc.Dependencies{
			Carts:      cartSvc,
			Payments:   payments,
			Orders:     orders,
			Reconciler: reconSvc,
		}),
		OrderService:          orderuc.NewService(orders),
		ReconciliationService: reconSvc,
		TokenService:          tokens,
	})

	return &testEnv{
		api:        api,
		router:     api.Router(),
		tokens:     tokens,
		products:   products,
		categories: categories,
		users:      users,
		orders:     orders,
		recon:      recon,
		payments:   payments,
		carts:      cartSvc,
	}
}

func (e *testEnv) token(t *testing.T, u *domuser.User, sessionID string) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(u, sessionID)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func newAuthenticatedRequest(method, path, token string, body any) *http.Request {
	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
