package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge/foodbridge/models"
	"github.com/foodbridge/foodbridge/realtime"
	"github.com/foodbridge/foodbridge/services"
	"github.com/foodbridge/foodbridge/utils"
)

// WasteFoodController exposes the secondary marketplace where expired or
// waste food is sold for animal feed. Any authenticated user can list or
// buy; the reserve/sell machine mirrors the donation workflow without an OTP.
type WasteFoodController struct {
	db  *gorm.DB
	svc *services.WasteFoodService
	hub *realtime.Hub
}

// NewWasteFoodController creates a new WasteFoodController instance.
func NewWasteFoodController(db *gorm.DB, svc *services.WasteFoodService, hub *realtime.Hub) *WasteFoodController {
	return &WasteFoodController{db: db, svc: svc, hub: hub}
}

// Create lists waste food for sale. Multipart form with optional image.
func (w *WasteFoodController) Create(ctx *gin.Context) {
	sellerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	foodType := utils.Sanitize(strings.TrimSpace(ctx.PostForm("foodType")))
	quantity := utils.Sanitize(strings.TrimSpace(ctx.PostForm("quantity")))
	pickup := utils.Sanitize(strings.TrimSpace(ctx.PostForm("pickupLocation")))
	priceRaw := strings.TrimSpace(ctx.PostForm("price"))
	if foodType == "" || quantity == "" || pickup == "" || priceRaw == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "foodType, quantity, price and pickupLocation are required")
		return
	}
	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil || price < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid price")
		return
	}

	var imageURL string
	if file, err := ctx.FormFile("image"); err == nil && file != nil {
		url, err := saveUploadedImage(ctx, file)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40052, "invalid image upload")
			return
		}
		imageURL = url
	}

	listing, err := w.svc.Create(sellerID, services.CreateWasteFoodInput{
		FoodType:       foodType,
		Quantity:       quantity,
		Price:          price,
		Description:    utils.Sanitize(ctx.PostForm("description")),
		PickupLocation: pickup,
		Latitude:       parseCoord(ctx.PostForm("latitude")),
		Longitude:      parseCoord(ctx.PostForm("longitude")),
		ImageURL:       imageURL,
	})
	if err != nil {
		utils.Sugar.Errorf("create waste food listing failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create waste food listing")
		return
	}

	utils.CacheDelete(utils.WasteAvailableCacheKey)
	w.hub.Broadcast(realtime.EventNewWasteFoodPost, listing)

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"listing": listing})
}

// Available lists purchasable waste food for farmers.
func (w *WasteFoodController) Available(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(utils.WasteAvailableCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	listings, err := w.svc.Available()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to fetch available waste food")
		return
	}

	payload := gin.H{"items": listings}
	utils.CacheSetJSON(utils.WasteAvailableCacheKey, responseWrapper{Code: 0, Message: "success", Data: payload}, time.Minute)
	utils.Success(ctx, payload)
}

// MyListings lists the seller's own listings.
func (w *WasteFoodController) MyListings(ctx *gin.Context) {
	sellerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}
	listings, err := w.svc.BySeller(sellerID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to fetch listings")
		return
	}
	utils.Success(ctx, gin.H{"items": listings})
}

// MyPurchases lists the buyer's reserved and bought listings.
func (w *WasteFoodController) MyPurchases(ctx *gin.Context) {
	buyerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}
	listings, err := w.svc.ByBuyer(buyerID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to fetch purchases")
		return
	}
	utils.Success(ctx, gin.H{"items": listings})
}

// Buy reserves an available listing for the calling buyer.
func (w *WasteFoodController) Buy(ctx *gin.Context) {
	listingID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid listing id")
		return
	}
	buyerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	listing, err := w.svc.Reserve(listingID, buyerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40460, "waste food not found")
		case errors.Is(err, services.ErrConflict):
			utils.Error(ctx, http.StatusBadRequest, 40061, "already sold or reserved")
		default:
			utils.Sugar.Errorf("reserve waste food %d failed: %v", listingID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to reserve waste food")
		}
		return
	}

	var buyer models.User
	if err := w.db.First(&buyer, buyerID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to load buyer")
		return
	}

	utils.CacheDelete(utils.WasteAvailableCacheKey)
	w.hub.Broadcast(realtime.EventWasteFoodReserved, gin.H{
		"wasteFoodId": listing.ID,
		"sellerId":    listing.SellerID,
		"buyer":       buyer.Public(),
		"status":      listing.Status,
	})

	utils.Success(ctx, gin.H{
		"message": "successfully reserved",
		"wasteFood": gin.H{
			"id":             listing.ID,
			"foodType":       listing.FoodType,
			"price":          listing.Price,
			"pickupLocation": listing.PickupLocation,
			"seller":         listing.Seller.Public(),
		},
	})
}

// Complete marks a reserved listing as sold. Seller only.
func (w *WasteFoodController) Complete(ctx *gin.Context) {
	listingID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid listing id")
		return
	}
	sellerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	listing, err := w.svc.Complete(listingID, sellerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40470, "waste food not found")
		case errors.Is(err, services.ErrForbidden):
			utils.Error(ctx, http.StatusForbidden, 40370, "not authorized")
		case errors.Is(err, services.ErrConflict):
			utils.Error(ctx, http.StatusBadRequest, 40071, "not in reserved status")
		default:
			utils.Sugar.Errorf("complete waste food %d failed: %v", listingID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to complete transaction")
		}
		return
	}

	w.hub.Broadcast(realtime.EventWasteFoodSold, gin.H{
		"wasteFoodId": listing.ID,
		"sellerId":    listing.SellerID,
	})

	utils.Success(ctx, gin.H{
		"message": "transaction completed successfully",
		"wasteFood": gin.H{
			"id":     listing.ID,
			"status": listing.Status,
		},
	})
}
