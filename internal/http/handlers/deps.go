package handlers

import (
	"shopfront/internal/config"
	"shopfront/internal/payment"
	"shopfront/internal/services"
)

type Deps struct {
	Sessions *services.SessionRegistry
	Auth     *services.AuthService

	AuthHandler      *AuthHandler
	UserHandler      *UserHandler
	ProductHandler   *ProductHandler
	CategoryHandler  *CategoryHandler
	SearchHandler    *SearchHandler
	InventoryHandler *InventoryHandler
	CartHandler      *CartHandler
	WishlistHandler  *WishlistHandler
	CheckoutHandler  *CheckoutHandler
	PaymentHandler   *PaymentHandler
	OrderHandler     *OrderHandler
	AdminHandler     *AdminHandler
}

// NewDeps wires services and handlers over the given stores. sessions may be
// nil, in which case session bindings live in memory; gw may be nil, which
// disables the gateway payment path.
func NewDeps(users services.UserStore, products services.ProductStore, sessions services.SessionStore, gw payment.Gateway, cfg config.Config) *Deps {
	reg := services.NewSessionRegistry(users, sessions, cfg.CartSyncWait)
	authSvc := &services.AuthService{Users: users, Sessions: reg}
	catalogSvc := services.NewCatalogService(products)
	invSvc := services.NewInventoryService(products)
	orderSvc := services.NewOrderService(users, invSvc, gw, cfg.Currency)
	adminOrders := services.NewAdminOrderService(users, products, invSvc)
	adminUsers := &services.AdminUserService{Users: users, Sessions: reg}

	return &Deps{
		Sessions: reg,
		Auth:     authSvc,

		AuthHandler:      &AuthHandler{Auth: authSvc},
		UserHandler:      &UserHandler{Users: users, Admin: adminUsers},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		CartHandler:      &CartHandler{Catalog: catalogSvc},
		WishlistHandler:  &WishlistHandler{Catalog: catalogSvc},
		CheckoutHandler:  &CheckoutHandler{Orders: orderSvc},
		PaymentHandler:   &PaymentHandler{Orders: orderSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
		AdminHandler:     &AdminHandler{Orders: adminOrders, Users: adminUsers, Inv: invSvc},
	}
}
