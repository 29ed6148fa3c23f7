package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/models"
	"storefront/services"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// @Summary Active notifications
// @Description Confirmation messages currently shown to the visitor, oldest first
// @Tags Notifications
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Notification}
// @Router /api/notifications [get]
func (ctrl *NotificationController) GetActive(c *gin.Context) {
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Notifications retrieved",
		Data:    ctrl.notifications.Active(middleware.VisitorID(c)),
	})
}
