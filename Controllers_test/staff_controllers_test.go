package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smartcanteen/canteen-app/controllers"
	"github.com/smartcanteen/canteen-app/middlewares"
	"github.com/smartcanteen/canteen-app/models"
	"github.com/smartcanteen/canteen-app/services"
	"github.com/smartcanteen/canteen-app/utils"
)

func setupTestDBForStaff(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.MenuItem{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupStaffRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	staffCtrl := controllers.NewStaffController(db, services.NoopPublisher{})
	r.GET("/staff/orders", staffCtrl.GetAllOrders)
	r.PATCH("/staff/orders/:order_id/status", staffCtrl.UpdateOrderStatus)
	r.GET("/staff/dashboard/stats", staffCtrl.GetDashboardStats)
	return r
}

func seedOrder(db *gorm.DB, studentID uint, token string, status models.OrderStatus, orderedAt time.Time, total float64) models.Order {
	order := models.Order{
		StudentID:       studentID,
		Token:           token,
		Status:          status,
		TotalAmount:     total,
		OrderedAt:       orderedAt,
		StatusChangedAt: orderedAt,
	}
	db.Create(&order)
	return order
}

func transition(t *testing.T, r *gin.Engine, orderID string, newStatus string) *httptest.ResponseRecorder {
	raw, err := json.Marshal(map[string]string{"new_status": newStatus})
	assert.NoError(t, err)
	req, err := http.NewRequest("PATCH", "/staff/orders/"+orderID+"/status", bytes.NewBuffer(raw))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatusTransitionHappyPath(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff(t)
	r := setupStaffRouter(db)
	seedOrder(db, 42, "HAPPY1", models.StatusPlaced, time.Now(), 10.00)

	for _, next := range []string{"accepted", "preparing", "ready", "completed"} {
		w := transition(t, r, "1", next)
		assert.Equalf(t, http.StatusOK, w.Code, "transition to %s: %s", next, w.Body.String())
	}

	var order models.Order
	assert.NoError(t, db.First(&order, 1).Error)
	assert.Equal(t, models.StatusCompleted, order.Status)
}

func TestStatusTransitionRejectsSkippingSteps(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff(t)
	r := setupStaffRouter(db)
	seedOrder(db, 42, "SKIP01", models.StatusPlaced, time.Now(), 10.00)

	// placed -> ready skips accepted and preparing
	w := transition(t, r, "1", "ready")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidTransition")

	// status unchanged
	var order models.Order
	assert.NoError(t, db.First(&order, 1).Error)
	assert.Equal(t, models.StatusPlaced, order.Status)
}

func TestTerminalStatusesRejectAllTransitions(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff(t)
	r := setupStaffRouter(db)
	seedOrder(db, 1, "TERM01", models.StatusCompleted, time.Now(), 5.00)
	seedOrder(db, 2, "TERM02", models.StatusCancelled, time.Now(), 5.00)

	w := transition(t, r, "1", "preparing")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidTransition")

	w = transition(t, r, "2", "placed")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancellationOnlyBeforePreparing(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff(t)
	r := setupStaffRouter(db)
	seedOrder(db, 1, "CANC01", models.StatusPlaced, time.Now(), 5.00)
	seedOrder(db, 2, "CANC02", models.StatusAccepted, time.Now(), 5.00)
	seedOrder(db, 3, "CANC03", models.StatusPreparing, time.Now(), 5.00)

	w := transition(t, r, "1", "cancelled")
	assert.Equal(t, http.StatusOK, w.Code)

	w = transition(t, r, "2", "cancelled")
	assert.Equal(t, http.StatusOK, w.Code)

	// Once the kitchen started, cancellation is off the table.
	w = transition(t, r, "3", "cancelled")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidTransition")
}

func TestTransitionValidation(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff(t)
	r := setupStaffRouter(db)
	seedOrder(db, 1, "VALI01", models.StatusPlaced, time.Now(), 5.00)

	// Unknown order
	w := transition(t, r, "999", "accepted")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NotFound")

	// Unknown status value
	w = transition(t, r, "1", "vaporized")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidInput")
}

func TestTransitionTouchesOnlyStatusFields(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff(t)
	r := setupStaffRouter(db)
	order := seedOrder(db, 42, "ONLY01", models.StatusPlaced, time.Now().Add(-time.Hour), 12.34)

	w := transition(t, r, "1", "accepted")
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Order
	assert.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.StatusAccepted, got.Status)
	assert.Equal(t, order.StudentID, got.StudentID)
	assert.Equal(t, order.Token, got.Token)
	assert.InDelta(t, order.TotalAmount, got.TotalAmount, 0.0001)
	assert.WithinDuration(t, order.OrderedAt, got.OrderedAt, time.Second)
	assert.True(t, got.StatusChangedAt.After(order.StatusChangedAt))
}

func TestConcurrentTransitionLosesWithZeroRows(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff(t)
	seedOrder(db, 42, "RACE01", models.StatusPlaced, time.Now(), 5.00)

	// Another staff member wins the race between our read and our update.
	db.Model(&models.Order{}).Where("id = ?", 1).Update("status", models.StatusAccepted)

	// Our guarded update carries the stale expected status and must match
	// zero rows; the handler reports this as Conflict.
	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", 1, models.StatusPlaced).
		Update("status", models.StatusCancelled)
	assert.NoError(t, res.Error)
	assert.Equal(t, int64(0), res.RowsAffected)

	var order models.Order
	assert.NoError(t, db.First(&order, 1).Error)
	assert.Equal(t, models.StatusAccepted, order.Status)
}

func TestGetAllOrdersFiltering(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff(t)
	r := setupStaffRouter(db)

	base := time.Now().Add(-time.Hour)
	seedOrder(db, 1, "FILT01", models.StatusPlaced, base.Add(2*time.Minute), 5.00)
	seedOrder(db, 2, "FILT02", models.StatusReady, base.Add(time.Minute), 6.00)
	seedOrder(db, 1, "FILT03", models.StatusPlaced, base, 7.00)

	// All orders, ordered_at ascending
	w := doJSON(t, r, "GET", "/staff/orders?status=all", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []models.Order `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 3)
	assert.Equal(t, "FILT03", resp.Data[0].Token)
	assert.Equal(t, "FILT02", resp.Data[1].Token)
	assert.Equal(t, "FILT01", resp.Data[2].Token)

	// Filter by status
	w = doJSON(t, r, "GET", "/staff/orders?status=placed", nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)

	// Filter by student
	w = doJSON(t, r, "GET", "/staff/orders?student_id=2", nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "FILT02", resp.Data[0].Token)

	// Unknown status filter
	w = doJSON(t, r, "GET", "/staff/orders?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardStats(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff(t)
	r := setupStaffRouter(db)

	now := time.Now()
	seedOrder(db, 1, "STAT01", models.StatusPlaced, now, 5.00)
	seedOrder(db, 2, "STAT02", models.StatusPreparing, now, 6.00)
	seedOrder(db, 3, "STAT03", models.StatusCancelled, now, 7.00)

	w := doJSON(t, r, "GET", "/staff/dashboard/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			StatusCounts map[string]int64 `json:"status_counts"`
			TodayOrders  int64            `json:"today_orders"`
			TodayRevenue float64          `json:"today_revenue"`
			ActiveOrders int64            `json:"active_orders"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.StatusCounts["placed"])
	assert.Equal(t, int64(1), resp.Data.StatusCounts["preparing"])
	assert.Equal(t, int64(3), resp.Data.TodayOrders)
	assert.InDelta(t, 11.00, resp.Data.TodayRevenue, 0.0001)
	assert.Equal(t, int64(2), resp.Data.ActiveOrders)
}

func TestDashboardStatsUsesLocalDayBoundary(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForStaff(t)
	r := setupStaffRouter(db)

	now := time.Now()
	localMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	seedOrder(db, 1, "TODAY1", models.StatusPlaced, localMidnight.Add(15*time.Minute), 5.00)
	seedOrder(db, 2, "YESTER", models.StatusCompleted, localMidnight.Add(-15*time.Minute), 9.00)

	w := doJSON(t, r, "GET", "/staff/dashboard/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TodayOrders  int64   `json:"today_orders"`
			TodayRevenue float64 `json:"today_revenue"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// The order from just before local midnight belongs to yesterday.
	assert.Equal(t, int64(1), resp.Data.TodayOrders)
	assert.InDelta(t, 5.00, resp.Data.TodayRevenue, 0.0001)
}

func TestStaffKeyMiddleware(t *testing.T) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.StaffKeyRequired("sekrit"))
	r.GET("/guarded", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// Missing key
	req, _ := http.NewRequest("GET", "/guarded", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Wrong key
	req, _ = http.NewRequest("GET", "/guarded", nil)
	req.Header.Set("X-Staff-Key", "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Correct key
	req, _ = http.NewRequest("GET", "/guarded", nil)
	req.Header.Set("X-Staff-Key", "sekrit")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
