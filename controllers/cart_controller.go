package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/middleware"
	"storefront/models"
	"storefront/repositories"
	"storefront/services"
	"storefront/views"
)

type CartController struct {
	carts         *services.CartService
	products      *services.ProductService
	notifications *services.NotificationService
	renderer      *views.Renderer
	logger        *zap.Logger
}

func NewCartController(carts *services.CartService, products *services.ProductService, notifications *services.NotificationService, renderer *views.Renderer, logger *zap.Logger) *CartController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartController{
		carts:         carts,
		products:      products,
		notifications: notifications,
		renderer:      renderer,
		logger:        logger,
	}
}

// open starts the page session of this request: a hydrated store with the
// header and cart views attached. Requests from the catalog page also get
// the product grid.
func (ctrl *CartController) open(c *gin.Context) (*services.CartStore, *views.Page, func()) {
	store := ctrl.carts.Open(c.Request.Context(), middleware.VisitorID(c))
	page := &views.Page{
		Header: views.NewHeaderBadge(ctrl.renderer),
		Cart:   views.NewCartPage(ctrl.renderer),
	}
	if refererPath(c) == "/" {
		products, err := ctrl.products.GetAllProducts(c.Request.Context())
		if err != nil {
			ctrl.logger.Warn("product grid unavailable", zap.Error(err))
		} else {
			page.Grid = views.NewProductGrid(ctrl.renderer, products)
		}
	}
	return store, page, page.Attach(store)
}

func cartResponse(store *services.CartStore, page *views.Page) models.CartResponse {
	return models.CartResponse{
		Cart:  store.Snapshot(),
		Views: page.Fragments(),
	}
}

// @Summary Get cart
// @Description Get the visitor's cart with totals and rendered fragments
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response{data=models.CartResponse}
// @Router /api/cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	store, page, detach := ctrl.open(c)
	defer detach()

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Cart retrieved",
		Data:    cartResponse(store, page),
	})
}

// @Summary Add item
// @Description Add one unit of a catalog product to the cart
// @Tags Cart
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body models.AddItemRequest true "Product to add"
// @Success 200 {object} models.Response{data=models.CartResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	product, err := ctrl.products.GetProductByID(c.Request.Context(), req.ProductID)
	if errors.Is(err, repositories.ErrProductNotFound) {
		respondError(c, http.StatusNotFound, services.ErrMsgProductNotFound, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load product", err)
		return
	}

	ctrl.dispatch(c, services.AddAction(product.ID, product.Title, product.Price, product.Image), "Item added to cart")
}

// @Summary Set quantity
// @Description Set the absolute quantity of a cart item; zero or less removes it
// @Tags Cart
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path string true "Item ID"
// @Param request body models.UpdateQuantityRequest true "New quantity"
// @Success 200 {object} models.Response{data=models.CartResponse}
// @Failure 400 {object} models.ErrorResponse
// @Router /api/cart/items/{id} [patch]
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	var req models.UpdateQuantityRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctrl.dispatch(c, services.SetQuantityAction(c.Param("id"), *req.Quantity), "Quantity updated")
}

// @Summary Increment quantity
// @Tags Cart
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.Response{data=models.CartResponse}
// @Router /api/cart/items/{id}/increment [post]
func (ctrl *CartController) Increment(c *gin.Context) {
	ctrl.dispatch(c, services.IncrementAction(c.Param("id")), "Quantity updated")
}

// @Summary Decrement quantity
// @Description Decrement the quantity of a cart item; reaching zero removes it
// @Tags Cart
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.Response{data=models.CartResponse}
// @Router /api/cart/items/{id}/decrement [post]
func (ctrl *CartController) Decrement(c *gin.Context) {
	ctrl.dispatch(c, services.DecrementAction(c.Param("id")), "Quantity updated")
}

// @Summary Remove item
// @Tags Cart
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.Response{data=models.CartResponse}
// @Router /api/cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	ctrl.dispatch(c, services.RemoveAction(c.Param("id")), "Item removed from cart")
}

func (ctrl *CartController) dispatch(c *gin.Context, action services.Action, message string) {
	store, page, detach := ctrl.open(c)
	defer detach()

	if _, err := store.Dispatch(c.Request.Context(), action); err != nil {
		ctrl.logger.Error("cart action failed",
			zap.String("action", action.Type.String()),
			zap.String("visitor_id", middleware.VisitorID(c)),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "Failed to update cart", err)
		return
	}

	if wantsHTML(c) {
		redirectBack(c, "/cart")
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: message,
		Data:    cartResponse(store, page),
	})
}

// @Summary Checkout
// @Description Place an order for the whole cart and clear it
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response{data=models.CheckoutResponse}
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/cart/checkout [post]
func (ctrl *CartController) Checkout(c *gin.Context) {
	store, page, detach := ctrl.open(c)
	defer detach()

	result, err := store.Dispatch(c.Request.Context(), services.CheckoutAction())
	if err != nil {
		ctrl.logger.Error("checkout failed",
			zap.String("visitor_id", middleware.VisitorID(c)),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "Failed to place order", err)
		return
	}
	checkout := result.Checkout

	if !checkout.Confirmed() {
		if wantsHTML(c) {
			redirectBack(c, "/cart")
			return
		}
		respondError(c, http.StatusConflict, checkout.Message, nil)
		return
	}

	if wantsHTML(c) {
		c.HTML(http.StatusOK, "layout", layoutData{
			Title:           checkout.Message,
			RedirectTo:      checkout.RedirectTo,
			RedirectSeconds: seconds(checkout.RedirectAfter),
			Header:          page.HeaderHTML(),
			Body:            page.Body(),
			Notifications:   ctrl.notifications.Active(middleware.VisitorID(c)),
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: checkout.Message,
		Data: models.CheckoutResponse{
			Status:          checkout.Status.String(),
			RedirectTo:      checkout.RedirectTo,
			RedirectAfterMs: checkout.RedirectAfter.Milliseconds(),
			OrderID:         checkout.Order.ID,
			Cart:            store.Snapshot(),
		},
	})
}
