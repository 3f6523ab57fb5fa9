package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smartcanteen/canteen-app/models"
	"github.com/smartcanteen/canteen-app/services"
	"github.com/smartcanteen/canteen-app/utils"
)

type MenuController struct {
	DB    *gorm.DB
	Cache *services.MenuCache
}

func NewMenuController(db *gorm.DB, cache *services.MenuCache) *MenuController {
	return &MenuController{DB: db, Cache: cache}
}

type menuItemReq struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Price           *float64 `json:"price"`
	Description     string   `json:"description"`
	Available       *bool    `json:"available"`
	PreparationTime *int     `json:"preparation_time"`
}

func (r *menuItemReq) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return utils.InvalidInputf("name must not be empty")
	}
	if r.Price == nil {
		return utils.InvalidInputf("price is required")
	}
	if *r.Price < 0 {
		return utils.InvalidInputf("price must not be negative")
	}
	return nil
}

// GetAvailableMenu -> the student-facing listing, cached when redis is up.
func (mc *MenuController) GetAvailableMenu(c *gin.Context) {
	if items, ok := mc.Cache.GetAvailableMenu(c.Request.Context()); ok {
		utils.RespondJSON(c, http.StatusOK, "List of available menu items", items)
		return
	}

	var items []models.MenuItem
	if err := mc.DB.Where("available = ?", true).Order("id asc").Find(&items).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	mc.Cache.SetAvailableMenu(c.Request.Context(), items)
	utils.RespondJSON(c, http.StatusOK, "List of available menu items", items)
}

// GetAllMenuItems -> staff listing, disabled items included.
func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	var items []models.MenuItem
	if err := mc.DB.Order("id asc").Find(&items).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// GetMenuItemByID
func (mc *MenuController) GetMenuItemByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, utils.InvalidInputf("invalid menu item id"))
		return
	}

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, utils.NotFoundf("menu item %d not found", id))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

// CreateMenuItem (staff)
func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	var req menuItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInputf("invalid request body: %v", err))
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, err)
		return
	}

	item := models.MenuItem{
		Name:            strings.TrimSpace(req.Name),
		Category:        req.Category,
		Price:           *req.Price,
		Description:     req.Description,
		Available:       true,
		PreparationTime: 15,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	if req.PreparationTime != nil {
		item.PreparationTime = *req.PreparationTime
	}

	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	mc.Cache.Invalidate(c.Request.Context())
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// UpdateMenuItem (staff) -> replaces the item's editable fields.
// Existing orders keep the price they captured at placement.
func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, utils.InvalidInputf("invalid menu item id"))
		return
	}

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, utils.NotFoundf("menu item %d not found", id))
		return
	}

	var req menuItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInputf("invalid request body: %v", err))
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, err)
		return
	}

	item.Name = strings.TrimSpace(req.Name)
	item.Category = req.Category
	item.Price = *req.Price
	item.Description = req.Description
	if req.Available != nil {
		item.Available = *req.Available
	}
	if req.PreparationTime != nil {
		item.PreparationTime = *req.PreparationTime
	}

	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	mc.Cache.Invalidate(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// DeleteMenuItem (staff). An item referenced by any order is part of order
// history and is never physically deleted; it is disabled instead.
func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, utils.InvalidInputf("invalid menu item id"))
		return
	}

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, utils.NotFoundf("menu item %d not found", id))
		return
	}

	var refs int64
	if err := mc.DB.Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&refs).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	if refs > 0 {
		if err := mc.DB.Model(&item).Update("available", false).Error; err != nil {
			utils.RespondError(c, err)
			return
		}
		mc.Cache.Invalidate(c.Request.Context())
		utils.RespondJSON(c, http.StatusOK, "Menu item is referenced by orders, disabled instead", gin.H{"item_id": id, "available": false})
		return
	}

	if err := mc.DB.Delete(&models.MenuItem{}, id).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	mc.Cache.Invalidate(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", gin.H{"item_id": id})
}
