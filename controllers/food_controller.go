package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge/foodbridge/models"
	"github.com/foodbridge/foodbridge/realtime"
	"github.com/foodbridge/foodbridge/services"
	"github.com/foodbridge/foodbridge/utils"
)

// FoodController exposes the donation workflow: donors create posts,
// volunteers claim them, and donors confirm delivery with the OTP the
// volunteer discloses in person. Every state transition is broadcast to
// all connected realtime clients.
type FoodController struct {
	db  *gorm.DB
	svc *services.FoodService
	hub *realtime.Hub
}

// NewFoodController creates a new FoodController instance.
func NewFoodController(db *gorm.DB, svc *services.FoodService, hub *realtime.Hub) *FoodController {
	return &FoodController{db: db, svc: svc, hub: hub}
}

// Create lets a donor post surplus food. Accepts multipart form data with
// an optional image.
func (f *FoodController) Create(ctx *gin.Context) {
	donorID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	foodType := utils.Sanitize(strings.TrimSpace(ctx.PostForm("foodType")))
	quantity := utils.Sanitize(strings.TrimSpace(ctx.PostForm("quantity")))
	freshness := strings.TrimSpace(ctx.PostForm("freshnessDuration"))
	pickup := utils.Sanitize(strings.TrimSpace(ctx.PostForm("pickupLocation")))
	if foodType == "" || quantity == "" || freshness == "" || pickup == "" {
		utils.Error(ctx, http.StatusBadRequest, 40020, "foodType, quantity, freshnessDuration and pickupLocation are required")
		return
	}

	var imageURL string
	if file, err := ctx.FormFile("image"); err == nil && file != nil {
		url, err := saveUploadedImage(ctx, file)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40021, "invalid image upload")
			return
		}
		imageURL = url
	}

	post, err := f.svc.Create(donorID, services.CreateFoodInput{
		FoodType:          foodType,
		Quantity:          quantity,
		FreshnessDuration: freshness,
		PickupLocation:    pickup,
		Latitude:          parseCoord(ctx.PostForm("latitude")),
		Longitude:         parseCoord(ctx.PostForm("longitude")),
		ImageURL:          imageURL,
	})
	if err != nil {
		utils.Sugar.Errorf("create food post failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create food post")
		return
	}

	utils.CacheDelete(utils.FoodAvailableCacheKey)
	// Denormalized snapshot with donor contact; volunteers render it
	// without a follow-up fetch.
	f.hub.Broadcast(realtime.EventNewFoodPost, post)

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"post": post})
}

// Available lists claimable posts for volunteers.
func (f *FoodController) Available(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(utils.FoodAvailableCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := f.svc.Available()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to fetch available food")
		return
	}

	payload := gin.H{"items": posts}
	utils.CacheSetJSON(utils.FoodAvailableCacheKey, responseWrapper{Code: 0, Message: "success", Data: payload}, time.Minute)
	utils.Success(ctx, payload)
}

// MyPosts lists the donor's own posts, excluding expired ones.
func (f *FoodController) MyPosts(ctx *gin.Context) {
	donorID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}
	posts, err := f.svc.ByDonor(donorID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to fetch posts")
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

// claimedFoodView is the volunteer-facing projection of a claimed post.
// The shallower OTP field overrides the model's `json:"-"` so the stored
// pickup code stays retrievable by the volunteer who holds the claim;
// donor views, admin listings and broadcasts keep marshaling the bare
// model and never carry it.
type claimedFoodView struct {
	models.FoodPost
	OTP *string `json:"otp,omitempty"`
}

// MyClaims lists the volunteer's claimed and delivered posts, including
// each stored pickup code. A volunteer who loses the claim response can
// reread the code here until the handoff is verified.
func (f *FoodController) MyClaims(ctx *gin.Context) {
	volunteerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}
	posts, err := f.svc.ByClaimer(volunteerID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to fetch claimed food")
		return
	}
	items := make([]claimedFoodView, 0, len(posts))
	for i := range posts {
		items = append(items, claimedFoodView{FoodPost: posts[i], OTP: posts[i].OTP})
	}
	utils.Success(ctx, gin.H{"items": items})
}

// Claim reserves an available post for the calling volunteer. The
// response carries the OTP and the donor's contact summary; the OTP is
// shown to the volunteer only and travels to the donor by word of mouth
// at pickup.
func (f *FoodController) Claim(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid post id")
		return
	}
	volunteerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	post, err := f.svc.Claim(postID, volunteerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40430, "food not found")
		case errors.Is(err, services.ErrConflict):
			utils.Error(ctx, http.StatusBadRequest, 40031, "food already claimed")
		default:
			utils.Sugar.Errorf("claim food post %d failed: %v", postID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to claim food")
		}
		return
	}

	var volunteer models.User
	if err := f.db.First(&volunteer, volunteerID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load volunteer")
		return
	}

	utils.CacheDelete(utils.FoodAvailableCacheKey)
	f.hub.Broadcast(realtime.EventFoodClaimed, gin.H{
		"foodId":    post.ID,
		"donorId":   post.DonorID,
		"volunteer": volunteer.Public(),
		"status":    post.Status,
	})

	utils.Success(ctx, gin.H{
		"postId":         post.ID,
		"foodType":       post.FoodType,
		"pickupLocation": post.PickupLocation,
		"latitude":       post.Latitude,
		"longitude":      post.Longitude,
		"otp":            *post.OTP,
		"donor":          post.Donor.Public(),
	})
}

// VerifyOTP completes a delivery. Only the owning donor may call it, and
// only while the post is claimed; the supplied code must match the stored
// one exactly. A mismatch leaves the post claimed so the donor can retry.
func (f *FoodController) VerifyOTP(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid post id")
		return
	}
	donorID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	var req struct {
		OTP string `json:"otp" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "otp is required")
		return
	}

	post, err := f.svc.VerifyCompletion(postID, donorID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40440, "food not found")
		case errors.Is(err, services.ErrForbidden):
			utils.Error(ctx, http.StatusForbidden, 40340, "not authorized")
		case errors.Is(err, services.ErrConflict):
			utils.Error(ctx, http.StatusBadRequest, 40042, "food not in claimed status")
		case errors.Is(err, services.ErrInvalidOTP):
			utils.Error(ctx, http.StatusBadRequest, 40043, "invalid OTP")
		default:
			utils.Sugar.Errorf("verify otp for post %d failed: %v", postID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to verify OTP")
		}
		return
	}

	f.hub.Broadcast(realtime.EventFoodCompleted, gin.H{
		"foodId":  post.ID,
		"donorId": post.DonorID,
	})

	var volunteer interface{}
	if post.ClaimedBy != nil {
		volunteer = post.ClaimedBy.Public()
	}
	utils.Success(ctx, gin.H{
		"message": "delivery completed successfully",
		"food": gin.H{
			"id":        post.ID,
			"status":    post.Status,
			"volunteer": volunteer,
		},
	})
}
