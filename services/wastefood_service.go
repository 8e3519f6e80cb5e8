package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/foodbridge/foodbridge/models"
)

// WasteFoodService owns the waste-food listing lifecycle:
// available -> reserved -> sold. It mirrors FoodService's guarded
// transitions but carries no OTP: payment on pickup is the handoff proof.
type WasteFoodService struct {
	db *gorm.DB
}

// NewWasteFoodService creates a WasteFoodService.
func NewWasteFoodService(db *gorm.DB) *WasteFoodService {
	return &WasteFoodService{db: db}
}

// CreateWasteFoodInput carries the seller-entered fields for a new listing.
type CreateWasteFoodInput struct {
	FoodType       string
	Quantity       string
	Price          float64
	Description    string
	PickupLocation string
	Latitude       *float64
	Longitude      *float64
	ImageURL       string
}

// Create persists a new available listing.
func (s *WasteFoodService) Create(sellerID uint, in CreateWasteFoodInput) (*models.WasteFoodPost, error) {
	listing := models.WasteFoodPost{
		SellerID:       sellerID,
		FoodType:       in.FoodType,
		Quantity:       in.Quantity,
		Price:          in.Price,
		Description:    in.Description,
		PickupLocation: in.PickupLocation,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		ImageURL:       in.ImageURL,
		Status:         models.WasteStatusAvailable,
	}
	if err := s.db.Create(&listing).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("Seller").First(&listing, listing.ID).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// Reserve marks an available listing as reserved by a buyer. The
// transition is a conditional UPDATE so concurrent buyers cannot both win.
func (s *WasteFoodService) Reserve(listingID, buyerID uint) (*models.WasteFoodPost, error) {
	var listing models.WasteFoodPost
	if err := s.db.Preload("Seller").First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if listing.Status != models.WasteStatusAvailable {
		return nil, ErrConflict
	}

	res := s.db.Model(&models.WasteFoodPost{}).
		Where("id = ? AND status = ?", listingID, models.WasteStatusAvailable).
		Updates(map[string]interface{}{
			"status":   models.WasteStatusReserved,
			"buyer_id": buyerID,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}

	listing.Status = models.WasteStatusReserved
	listing.BuyerID = &buyerID
	return &listing, nil
}

// Complete marks a reserved listing as sold. Only the seller may close it.
func (s *WasteFoodService) Complete(listingID, sellerID uint) (*models.WasteFoodPost, error) {
	var listing models.WasteFoodPost
	if err := s.db.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, ErrForbidden
	}
	if listing.Status != models.WasteStatusReserved {
		return nil, ErrConflict
	}

	res := s.db.Model(&models.WasteFoodPost{}).
		Where("id = ? AND status = ?", listingID, models.WasteStatusReserved).
		Update("status", models.WasteStatusSold)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}

	listing.Status = models.WasteStatusSold
	return &listing, nil
}

// Available lists purchasable waste food with seller contacts, newest first.
func (s *WasteFoodService) Available() ([]models.WasteFoodPost, error) {
	var listings []models.WasteFoodPost
	err := s.db.Where("status = ?", models.WasteStatusAvailable).
		Preload("Seller").
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

// BySeller lists a seller's listings, newest first.
func (s *WasteFoodService) BySeller(sellerID uint) ([]models.WasteFoodPost, error) {
	var listings []models.WasteFoodPost
	err := s.db.Where("seller_id = ?", sellerID).
		Preload("Buyer").
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

// ByBuyer lists a buyer's reserved and bought listings, newest first.
func (s *WasteFoodService) ByBuyer(buyerID uint) ([]models.WasteFoodPost, error) {
	var listings []models.WasteFoodPost
	err := s.db.Where("buyer_id = ? AND status IN ?", buyerID,
		[]string{models.WasteStatusReserved, models.WasteStatusSold}).
		Preload("Seller").
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

// All lists every listing regardless of status, for the admin dashboard.
func (s *WasteFoodService) All() ([]models.WasteFoodPost, error) {
	var listings []models.WasteFoodPost
	err := s.db.Preload("Seller").Preload("Buyer").
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

// Delete removes a listing. Administrative operation.
func (s *WasteFoodService) Delete(listingID uint) error {
	res := s.db.Delete(&models.WasteFoodPost{}, listingID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
