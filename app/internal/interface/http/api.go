package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	domcart "example.com/voltcart/app/internal/domain/cart"
	domcategory "example.com/voltcart/app/internal/domain/category"
	domcheckout "example.com/voltcart/app/internal/domain/checkout"
	domorder "example.com/voltcart/app/internal/domain/order"
	dompayment "example.com/voltcart/app/internal/domain/payment"
	domproduct "example.com/voltcart/app/internal/domain/product"
	domrecon "example.com/voltcart/app/internal/domain/reconciliation"
	domuser "example.com/voltcart/app/internal/domain/user"
	authuc "example.com/voltcart/app/internal/usecase/auth"
	cartuc "example.com/voltcart/app/internal/usecase/cart"
	categoryuc "example.com/voltcart/app/internal/usecase/category"
	checkoutuc "example.com/voltcart/app/internal/usecase/checkout"
	orderuc "example.com/voltcart/app/internal/usecase/order"
	productuc "example.com/voltcart/app/internal/usecase/product"
	reconuc "example.com/voltcart/app/internal/usecase/reconciliation"
	useruc "example.com/voltcart/app/internal/usecase/user"
)

// HealthCheck pings one backing dependency.
type HealthCheck func(ctx context.Context) error

type API struct {
	authSvc       *authuc.Service
	categorySvc   *categoryuc.Service
	productSvc    *productuc.Service
	categoryAdmin *categoryuc.AdminService
	productAdmin  *productuc.AdminService
	userSvc       *useruc.Service
	cartSvc       *cartuc.Service
	checkoutSvc   *checkoutuc.Service
	orderSvc      *orderuc.Service
	reconSvc      *reconuc.Service
	validator     *validator.Validate
	tokenSvc      authuc.TokenService
	checks        map[string]HealthCheck
}

type Dependencies struct {
	AuthService           *authuc.Service
	CategoryService       *categoryuc.Service
	ProductService        *productuc.Service
	CategoryAdmin         *categoryuc.AdminService
	ProductAdmin          *productuc.AdminService
	UserService           *useruc.Service
	CartService           *cartuc.Service
	CheckoutService       *checkoutuc.Service
	OrderService          *orderuc.Service
	ReconciliationService *reconuc.Service
	TokenService          authuc.TokenService
	HealthChecks          map[string]HealthCheck
}

func NewAPI(deps Dependencies) *API {
	validate := validator.New()
	return &API{
		authSvc:       deps.AuthService,
		categorySvc:   deps.CategoryService,
		productSvc:    deps.ProductService,
		categoryAdmin: deps.CategoryAdmin,
		productAdmin:  deps.ProductAdmin,
		userSvc:       deps.UserService,
		cartSvc:       deps.CartService,
		checkoutSvc:   deps.CheckoutService,
		orderSvc:      deps.OrderService,
		reconSvc:      deps.ReconciliationService,
		tokenSvc:      deps.TokenService,
		checks:        deps.HealthChecks,
		validator:     validate,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.AllowContentType("application/json", "text/plain"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", a.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)
		r.Post("/auth/signup", a.handleSignup)
		r.Get("/products", a.handleListProducts)
		r.Get("/products/{id}", a.handleGetProduct)
		r.Get("/categories", a.handleListCategories)
		r.Get("/categories/{id}", a.handleGetCategory)

		r.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)
			pr.Get("/me", a.handleMe)

			pr.Route("/me/cart", func(cr chi.Router) {
				cr.Get("/", a.handleGetCart)
				cr.Delete("/", a.handleClearCart)
				cr.Post("/items", a.handleAddCartItem)
				cr.Put("/items/{productID}", a.handleUpdateCartItem)
				cr.Delete("/items/{productID}", a.handleRemoveCartItem)
			})

			pr.Post("/me/checkout", a.handleCheckout)
			pr.Get("/me/checkout", a.handleGetCheckout)

			pr.Get("/me/orders", a.handleListMyOrders)
			pr.Get("/me/orders/{id}", a.handleGetMyOrder)
		})

		r.Group(func(ar chi.Router) {
			ar.Use(a.authMiddleware)
			ar.Use(a.requireRoles(domuser.RoleCodeAdmin, domuser.RoleCodeSuperAdmin))

			ar.Route("/admin", func(admin chi.Router) {
				admin.Route("/categories", func(rr chi.Router) {
					rr.Get("/", a.handleAdminListCategories)
					rr.Post("/", a.handleAdminCreateCategory)
					rr.Get("/{id}", a.handleAdminGetCategory)
					rr.Put("/{id}", a.handleAdminUpdateCategory)
					rr.Delete("/{id}", a.handleAdminDeleteCategory)
				})

				admin.Route("/products", func(rr chi.Router) {
					rr.Get("/", a.handleAdminListProducts)
					rr.Post("/", a.handleAdminCreateProduct)
					rr.Get("/{id}", a.handleAdminGetProduct)
					rr.Put("/{id}", a.handleAdminUpdateProduct)
					rr.Delete("/{id}", a.handleAdminDeleteProduct)
				})

				admin.Route("/users", func(rr chi.Router) {
					rr.Get("/", a.handleListUsers)
					rr.Post("/", a.handleCreateUser)
					rr.Get("/{id}", a.handleGetUser)
					rr.Patch("/{id}", a.handleUpdateUser)
				})

				admin.Route("/orders", func(rr chi.Router) {
					rr.Get("/", a.handleListOrders)
					rr.Get("/stats", a.handleOrderStats)
					rr.Get("/{id}", a.handleGetOrder)
					rr.Patch("/{id}", a.handleUpdateOrderStatus)
				})

				admin.Route("/reconciliations", func(rr chi.Router) {
					rr.Get("/", a.handleListReconciliations)
					rr.Get("/{id}", a.handleGetReconciliation)
					rr.Post("/{id}/resolve", a.handleResolveReconciliation)
				})
			})
		})
	})

	return r
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	result := make(map[string]string, len(a.checks))
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			result[name] = err.Error()
			continue
		}
		result[name] = "ok"
	}
	writeJSON(w, status, result)
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func mapUser(u *domuser.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"role_code": u.RoleCode,
		"is_active": u.IsActive,
	}
}

func mapCategory(c *domcategory.Category) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"image":       c.ImageRef,
		"position":    c.Position,
	}
}

func mapProduct(p *domproduct.Product) map[string]any {
	images := p.ImageRefs
	if images == nil {
		images = []string{}
	}
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.StringFixed(2),
		"stock":       p.Stock,
		"category_id": p.CategoryID,
		"images":      images,
	}
}

func mapLineItems(items []domcart.LineItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"product_id": item.Product.ID,
			"name":       item.Product.Name,
			"price":      item.Product.Price.StringFixed(2),
			"image":      item.Product.PrimaryImage(),
			"quantity":   item.Quantity,
			"subtotal":   item.Subtotal().StringFixed(2),
		})
	}
	return out
}

func mapCart(view *cartuc.View) map[string]any {
	return map[string]any{
		"items":       mapLineItems(view.Items),
		"total_items": view.Totals.TotalItems,
		"total_price": view.Totals.TotalPrice.StringFixed(2),
	}
}

func mapOrder(o *domorder.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID,
			"name":       item.Name,
			"price":      item.UnitPrice.StringFixed(2),
			"quantity":   item.Quantity,
			"image":      item.Image,
		})
	}

	return map[string]any{
		"id":                o.ID,
		"user_id":           o.UserID,
		"status":            o.Status,
		"payment_reference": o.PaymentReference,
		"total_amount":      o.TotalAmount.StringFixed(2),
		"created_at":        o.CreatedAt,
		"items":             items,
	}
}

func mapAttempt(at *domcheckout.Attempt) map[string]any {
	out := map[string]any{
		"id":          at.ID,
		"state":       at.State,
		"amount":      dompayment.FromMinorUnits(at.AmountMinor).StringFixed(2),
		"currency":    at.Currency,
		"total_items": at.Snapshot.Totals.TotalItems,
		"items":       mapLineItems(at.Snapshot.Items),
		"started_at":  at.StartedAt,
		"updated_at":  at.UpdatedAt,
	}
	if at.FailedFrom != "" {
		out["failed_from"] = at.FailedFrom
	}
	if at.PaymentReference != "" {
		out["payment_reference"] = at.PaymentReference
	}
	if at.Order != nil {
		out["order"] = mapOrder(at.Order)
	}
	if at.Err != nil {
		out["error"] = at.Err.Error()
		out["kind"] = at.Kind()
	}
	return out
}

func mapReconciliation(e *domrecon.Entry) map[string]any {
	return map[string]any{
		"id":                e.ID,
		"attempt_id":        e.AttemptID,
		"session_id":        e.SessionID,
		"user_id":           e.UserID,
		"idempotency_key":   e.IdempotencyKey,
		"payment_reference": e.PaymentReference,
		"amount":            dompayment.FromMinorUnits(e.AmountMinor).StringFixed(2),
		"currency":          e.Currency,
		"reason":            e.Reason,
		"status":            e.Status,
		"created_at":        e.CreatedAt,
		"resolved_at":       e.ResolvedAt,
		"resolved_by":       e.ResolvedBy,
		"note":              e.Note,
	}
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domuser.ErrInvalidCredential),
		errors.Is(err, domuser.ErrInvalidRoleCode),
		errors.Is(err, domuser.ErrInvalidName),
		errors.Is(err, domuser.ErrPasswordTooShort),
		errors.Is(err, domcart.ErrNegativeQuantity),
		errors.Is(err, domcategory.ErrCategoryInvalidName),
		errors.Is(err, domcategory.ErrCategoryInvalidSlug),
		errors.Is(err, domproduct.ErrInvalidPrice),
		errors.Is(err, domproduct.ErrProductInvalidName),
		errors.Is(err, domproduct.ErrInvalidStock),
		errors.Is(err, domproduct.ErrUnknownCategory),
		errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domrecon.ErrNoteRequired):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domrecon.ErrAlreadyResolved),
		errors.Is(err, domcategory.ErrCategorySlugExists),
		errors.Is(err, domcategory.ErrCategoryInUse),
		errors.Is(err, domuser.ErrEmailAlreadyUsed),
		errors.Is(err, domproduct.ErrCatalogReadOnly):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domuser.ErrCannotAssignRole):
		respondError(w, http.StatusForbidden, err)
	case errors.Is(err, domuser.ErrUserNotFound),
		errors.Is(err, domcategory.ErrCategoryNotFound),
		errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domorder.ErrOrderNotFound),
		errors.Is(err, domrecon.ErrEntryNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domuser.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err)
	case domcheckout.KindOf(err) == domcheckout.KindNetwork:
		respondError(w, http.StatusServiceUnavailable, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}
