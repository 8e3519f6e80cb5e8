package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge/foodbridge/models"
	"github.com/foodbridge/foodbridge/services"
	"github.com/foodbridge/foodbridge/utils"
)

// AdminController serves the moderation dashboard. All routes are behind
// the admin role gate.
type AdminController struct {
	db    *gorm.DB
	food  *services.FoodService
	waste *services.WasteFoodService
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(db *gorm.DB, food *services.FoodService, waste *services.WasteFoodService) *AdminController {
	return &AdminController{db: db, food: food, waste: waste}
}

// ListUsers returns all registered users, newest first.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	var users []models.User
	if err := a.db.Order("created_at DESC").Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to fetch users")
		return
	}
	utils.Success(ctx, gin.H{"items": users})
}

// DeleteUser soft-deletes a user account.
func (a *AdminController) DeleteUser(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid user id")
		return
	}
	res := a.db.Delete(&models.User{}, userID)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to delete user")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40480, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "user deleted"})
}

// ListFoodPosts returns every food post regardless of status.
func (a *AdminController) ListFoodPosts(ctx *gin.Context) {
	posts, err := a.food.All()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to fetch food posts")
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

// DeleteFoodPost removes a food post.
func (a *AdminController) DeleteFoodPost(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40081, "invalid post id")
		return
	}
	if err := a.food.Delete(postID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40481, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to delete post")
		return
	}
	utils.CacheDelete(utils.FoodAvailableCacheKey)
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// ListWasteFoodPosts returns every waste food listing regardless of status.
func (a *AdminController) ListWasteFoodPosts(ctx *gin.Context) {
	listings, err := a.waste.All()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to fetch waste food listings")
		return
	}
	utils.Success(ctx, gin.H{"items": listings})
}

// DeleteWasteFoodPost removes a waste food listing.
func (a *AdminController) DeleteWasteFoodPost(ctx *gin.Context) {
	listingID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid listing id")
		return
	}
	if err := a.waste.Delete(listingID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40482, "listing not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50085, "failed to delete listing")
		return
	}
	utils.CacheDelete(utils.WasteAvailableCacheKey)
	utils.Success(ctx, gin.H{"message": "listing deleted"})
}

// Stats returns aggregate counts for the admin dashboard.
func (a *AdminController) Stats(ctx *gin.Context) {
	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}

	var userCount int64
	if err := a.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to compute stats")
		return
	}

	type roleCount struct {
		Role  string `json:"role"`
		Count int64  `json:"count"`
	}
	var usersByRole []roleCount
	if err := a.db.Model(&models.User{}).
		Select("role, count(*) as count").
		Group("role").
		Scan(&usersByRole).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to compute stats")
		return
	}

	var foodByStatus []statusCount
	if err := a.db.Model(&models.FoodPost{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&foodByStatus).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to compute stats")
		return
	}

	var wasteByStatus []statusCount
	if err := a.db.Model(&models.WasteFoodPost{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&wasteByStatus).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to compute stats")
		return
	}

	utils.Success(ctx, gin.H{
		"users":               userCount,
		"users_by_role":       usersByRole,
		"food_by_status":      foodByStatus,
		"wastefood_by_status": wasteByStatus,
	})
}
