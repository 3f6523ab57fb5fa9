package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smartcanteen/canteen-app/middlewares"
	"github.com/smartcanteen/canteen-app/models"
	"github.com/smartcanteen/canteen-app/services"
	"github.com/smartcanteen/canteen-app/utils"
)

type OrderController struct {
	DB     *gorm.DB
	Events services.OrderEventPublisher
}

func NewOrderController(db *gorm.DB, events services.OrderEventPublisher) *OrderController {
	return &OrderController{DB: db, Events: events}
}

// CreateOrder -> place a new order with status 'placed'.
//
// The whole order is created in one transaction: every line item resolves
// against the catalog, captures the current unit price, or nothing is
// persisted at all.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	type ItemReq struct {
		MenuItemID uint `json:"menu_item_id"`
		Quantity   int  `json:"quantity"`
	}

	type ReqBody struct {
		StudentID           uint      `json:"student_id"`
		SpecialInstructions string    `json:"special_instructions"`
		Items               []ItemReq `json:"items" binding:"required"`
	}

	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		middlewares.RecordOrderOperation("place", false)
		utils.RespondError(c, utils.InvalidInputf("invalid request body: %v", err))
		return
	}

	if body.StudentID == 0 {
		middlewares.RecordOrderOperation("place", false)
		utils.RespondError(c, utils.InvalidInputf("student_id is required"))
		return
	}
	if len(body.Items) == 0 {
		middlewares.RecordOrderOperation("place", false)
		utils.RespondError(c, utils.InvalidInputf("order must contain at least one item"))
		return
	}
	for _, it := range body.Items {
		if it.Quantity < 1 {
			middlewares.RecordOrderOperation("place", false)
			utils.RespondError(c, utils.InvalidInputf("quantity for menu item %d must be at least 1", it.MenuItemID))
			return
		}
	}

	token, err := utils.GenerateToken(6)
	if err != nil {
		middlewares.RecordOrderOperation("place", false)
		utils.RespondError(c, err)
		return
	}

	now := time.Now()
	order := models.Order{
		StudentID:           body.StudentID,
		Token:               token,
		Status:              models.StatusPlaced,
		SpecialInstructions: body.SpecialInstructions,
		OrderedAt:           now,
		StatusChangedAt:     now,
	}

	err = oc.DB.Transaction(func(tx *gorm.DB) error {
		var total float64
		var items []models.OrderItem

		for _, it := range body.Items {
			var menuItem models.MenuItem
			if err := tx.First(&menuItem, it.MenuItemID).Error; err != nil {
				return utils.NotFoundf("menu item %d not found", it.MenuItemID)
			}
			if !menuItem.Available {
				return utils.ItemUnavailablef("menu item '%s' is not available", menuItem.Name)
			}

			items = append(items, models.OrderItem{
				MenuItemID: menuItem.ID,
				Quantity:   it.Quantity,
				UnitPrice:  menuItem.Price,
			})
			total += float64(it.Quantity) * menuItem.Price
		}

		order.Items = items
		order.TotalAmount = total
		return tx.Create(&order).Error
	})
	if err != nil {
		middlewares.RecordOrderOperation("place", false)
		utils.RespondError(c, err)
		return
	}

	middlewares.RecordOrderOperation("place", true)
	services.PublishAsync(oc.Events, services.OrderEvent{
		OrderID:   order.ID,
		StudentID: order.StudentID,
		Type:      services.EventOrderPlaced,
		Status:    order.Status,
		Total:     order.TotalAmount,
		Occurred:  now,
	})

	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// GetOrderByID -> detail of one order, line items included.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, utils.InvalidInputf("invalid order id"))
		return
	}

	var order models.Order
	if err := oc.DB.Preload("Items").Preload("Items.MenuItem").First(&order, id).Error; err != nil {
		utils.RespondError(c, utils.NotFoundf("order %d not found", id))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetStudentOrders -> a student's full order history, oldest first,
// terminal orders included.
func (oc *OrderController) GetStudentOrders(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		utils.RespondError(c, utils.InvalidInputf("invalid student id"))
		return
	}

	var orders []models.Order
	if err := oc.DB.Preload("Items").Preload("Items.MenuItem").
		Where("student_id = ?", studentID).
		Order("ordered_at asc, id asc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order history", orders)
}

// TrackOrder -> lightweight status lookup by pickup token, with the
// order's position in the queue of still-active orders.
func (oc *OrderController) TrackOrder(c *gin.Context) {
	token := c.Param("token")

	var order models.Order
	if err := oc.DB.Where("token = ?", token).First(&order).Error; err != nil {
		utils.RespondError(c, utils.NotFoundf("no order for token %s", token))
		return
	}

	var queuePos int64
	if order.Status.Active() {
		if err := oc.DB.Model(&models.Order{}).
			Where("ordered_at <= ? AND status IN ?", order.OrderedAt,
				[]models.OrderStatus{models.StatusPlaced, models.StatusAccepted, models.StatusPreparing}).
			Count(&queuePos).Error; err != nil {
			utils.RespondError(c, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Order status", gin.H{
		"order_id":       order.ID,
		"token":          order.Token,
		"status":         order.Status,
		"queue_position": queuePos,
	})
}
