package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/middleware"
	"storefront/services"
	"storefront/views"
)

// PageController renders the two HTML pages. Each request is one page load:
// the cart is hydrated and the views present on that page are attached.
type PageController struct {
	carts         *services.CartService
	products      *services.ProductService
	notifications *services.NotificationService
	renderer      *views.Renderer
	logger        *zap.Logger
}

func NewPageController(carts *services.CartService, products *services.ProductService, notifications *services.NotificationService, renderer *views.Renderer, logger *zap.Logger) *PageController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageController{
		carts:         carts,
		products:      products,
		notifications: notifications,
		renderer:      renderer,
		logger:        logger,
	}
}

func (ctrl *PageController) Index(c *gin.Context) {
	products, err := ctrl.products.GetAllProducts(c.Request.Context())
	if err != nil {
		ctrl.logger.Error("list products", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load products")
		return
	}

	ctrl.render(c, "Магазин", &views.Page{
		Header: views.NewHeaderBadge(ctrl.renderer),
		Grid:   views.NewProductGrid(ctrl.renderer, products),
	})
}

func (ctrl *PageController) CartPage(c *gin.Context) {
	ctrl.render(c, "Корзина", &views.Page{
		Header: views.NewHeaderBadge(ctrl.renderer),
		Cart:   views.NewCartPage(ctrl.renderer),
	})
}

func (ctrl *PageController) render(c *gin.Context, title string, page *views.Page) {
	visitorID := middleware.VisitorID(c)
	store := ctrl.carts.Open(c.Request.Context(), visitorID)
	detach := page.Attach(store)
	defer detach()

	if err := page.Err(); err != nil {
		ctrl.logger.Error("render page", zap.String("title", title), zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to render page")
		return
	}

	c.HTML(http.StatusOK, "layout", layoutData{
		Title:         title,
		Header:        page.HeaderHTML(),
		Body:          page.Body(),
		Notifications: ctrl.notifications.Active(visitorID),
	})
}
