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

type StaffController struct {
	DB     *gorm.DB
	Events services.OrderEventPublisher
}

func NewStaffController(db *gorm.DB, events services.OrderEventPublisher) *StaffController {
	return &StaffController{DB: db, Events: events}
}

// GetAllOrders -> dashboard listing, filterable by status and student,
// oldest first so the kitchen works the queue top-down.
func (sc *StaffController) GetAllOrders(c *gin.Context) {
	query := sc.DB.Preload("Items").Preload("Items.MenuItem")

	if status := c.Query("status"); status != "" && status != "all" {
		if !models.OrderStatus(status).Valid() {
			utils.RespondError(c, utils.InvalidInputf("unknown status '%s'", status))
			return
		}
		query = query.Where("status = ?", status)
	}

	if student := c.Query("student_id"); student != "" {
		studentID, err := strconv.Atoi(student)
		if err != nil {
			utils.RespondError(c, utils.InvalidInputf("invalid student_id"))
			return
		}
		query = query.Where("student_id = ?", studentID)
	}

	var orders []models.Order
	if err := query.Order("ordered_at asc, id asc").Find(&orders).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// UpdateOrderStatus -> move one order along the status pipeline.
//
// The UPDATE is guarded by the status we read, so two staff racing on the
// same order cannot both win: the loser's update matches zero rows and is
// reported as a conflict. Nothing besides status and its timestamp changes.
func (sc *StaffController) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		middlewares.RecordOrderOperation("transition", false)
		utils.RespondError(c, utils.InvalidInputf("invalid order id"))
		return
	}

	type ReqBody struct {
		NewStatus string `json:"new_status" binding:"required"`
	}
	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		middlewares.RecordOrderOperation("transition", false)
		utils.RespondError(c, utils.InvalidInputf("invalid request body: %v", err))
		return
	}

	newStatus := models.OrderStatus(body.NewStatus)
	if !newStatus.Valid() {
		middlewares.RecordOrderOperation("transition", false)
		utils.RespondError(c, utils.InvalidInputf("unknown status '%s'", body.NewStatus))
		return
	}

	var order models.Order
	if err := sc.DB.First(&order, id).Error; err != nil {
		middlewares.RecordOrderOperation("transition", false)
		utils.RespondError(c, utils.NotFoundf("order %d not found", id))
		return
	}

	if !order.Status.CanTransitionTo(newStatus) {
		middlewares.RecordOrderOperation("transition", false)
		utils.RespondError(c, utils.InvalidTransitionf("cannot transition order %d from %s to %s", id, order.Status, newStatus))
		return
	}

	now := time.Now()
	res := sc.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(map[string]interface{}{
			"status":            newStatus,
			"status_changed_at": now,
			"updated_at":        now,
		})
	if res.Error != nil {
		middlewares.RecordOrderOperation("transition", false)
		utils.RespondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		// Someone else moved the order between our read and update.
		middlewares.RecordOrderOperation("transition", false)
		utils.RespondError(c, utils.Conflictf("order %d was updated concurrently, refresh and retry", id))
		return
	}

	order.Status = newStatus
	order.StatusChangedAt = now
	order.UpdatedAt = now

	middlewares.RecordOrderOperation("transition", true)
	services.PublishAsync(sc.Events, services.OrderEvent{
		OrderID:   order.ID,
		StudentID: order.StudentID,
		Type:      services.EventOrderStatusChanged,
		Status:    newStatus,
		Total:     order.TotalAmount,
		Occurred:  now,
	})

	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// GetDashboardStats -> per-status counts plus today's volume and revenue.
func (sc *StaffController) GetDashboardStats(c *gin.Context) {
	var stats struct {
		StatusCounts map[string]int64 `json:"status_counts"`
		TodayOrders  int64            `json:"today_orders"`
		TodayRevenue float64          `json:"today_revenue"`
		ActiveOrders int64            `json:"active_orders"`
	}
	stats.StatusCounts = make(map[string]int64)

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := sc.DB.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	for _, row := range counts {
		stats.StatusCounts[row.Status] = row.Count
	}

	// Midnight in the server's timezone, not UTC: the canteen's "today"
	// is the local business day.
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := sc.DB.Model(&models.Order{}).
		Where("ordered_at >= ?", startOfDay).
		Count(&stats.TodayOrders).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	// Cancelled orders never earned anything.
	row := sc.DB.Model(&models.Order{}).
		Where("ordered_at >= ? AND status != ?", startOfDay, models.StatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Row()
	if err := row.Scan(&stats.TodayRevenue); err != nil {
		utils.RespondError(c, err)
		return
	}

	stats.ActiveOrders = stats.StatusCounts[string(models.StatusPlaced)] +
		stats.StatusCounts[string(models.StatusAccepted)] +
		stats.StatusCounts[string(models.StatusPreparing)]

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}
