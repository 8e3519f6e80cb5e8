package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/foodbridge/foodbridge/models"
	"github.com/foodbridge/foodbridge/utils"
)

// FoodService owns the food post lifecycle:
// available -> claimed -> completed, with the side exit available -> expired.
// Every transition is a single conditional UPDATE guarded on the current
// status, so two racing callers can never both win.
type FoodService struct {
	db               *gorm.DB
	freshnessDefault time.Duration
}

// NewFoodService creates a FoodService. freshnessDefault is applied when a
// donor-entered freshness duration cannot be parsed.
func NewFoodService(db *gorm.DB, freshnessDefault time.Duration) *FoodService {
	if freshnessDefault <= 0 {
		freshnessDefault = 24 * time.Hour
	}
	return &FoodService{db: db, freshnessDefault: freshnessDefault}
}

// CreateFoodInput carries the donor-entered fields for a new post.
type CreateFoodInput struct {
	FoodType          string
	Quantity          string
	FreshnessDuration string
	PickupLocation    string
	Latitude          *float64
	Longitude         *float64
	ImageURL          string
}

// Create persists a new available post. The freshness deadline is computed
// once from the raw duration string and never recomputed afterwards.
func (s *FoodService) Create(donorID uint, in CreateFoodInput) (*models.FoodPost, error) {
	now := time.Now()
	post := models.FoodPost{
		DonorID:            donorID,
		FoodType:           in.FoodType,
		Quantity:           in.Quantity,
		FreshnessDuration:  in.FreshnessDuration,
		FreshnessExpiresAt: utils.CalculateExpiration(in.FreshnessDuration, now, s.freshnessDefault),
		PickupLocation:     in.PickupLocation,
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		ImageURL:           in.ImageURL,
		Status:             models.FoodStatusAvailable,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	// Reload with the donor relation so callers can build denormalized
	// payloads without a follow-up fetch.
	if err := s.db.Preload("Donor").First(&post, post.ID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Claim reserves an available post for a volunteer and mints its pickup
// OTP. Exactly one of two concurrent claims succeeds: the transition is a
// conditional UPDATE on status=available checked via RowsAffected.
// The OTP is returned to the claiming volunteer only.
func (s *FoodService) Claim(postID, volunteerID uint) (*models.FoodPost, error) {
	var post models.FoodPost
	if err := s.db.Preload("Donor").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.Status != models.FoodStatusAvailable {
		return nil, ErrConflict
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return nil, err
	}

	res := s.db.Model(&models.FoodPost{}).
		Where("id = ? AND status = ?", postID, models.FoodStatusAvailable).
		Updates(map[string]interface{}{
			"status":        models.FoodStatusClaimed,
			"claimed_by_id": volunteerID,
			"otp":           otp,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race: someone claimed it (or the sweeper expired it)
		// between the read and the guarded write.
		return nil, ErrConflict
	}

	post.Status = models.FoodStatusClaimed
	post.ClaimedByID = &volunteerID
	post.OTP = &otp
	return &post, nil
}

// VerifyCompletion closes the loop: the owning donor types in the OTP the
// volunteer disclosed in person. An exact string match transitions the post
// to completed; a mismatch leaves it claimed so verification can be retried.
func (s *FoodService) VerifyCompletion(postID, donorID uint, suppliedOTP string) (*models.FoodPost, error) {
	var post models.FoodPost
	if err := s.db.Preload("ClaimedBy").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.DonorID != donorID {
		return nil, ErrForbidden
	}
	if post.Status != models.FoodStatusClaimed {
		return nil, ErrConflict
	}
	if post.OTP == nil || *post.OTP != suppliedOTP {
		return nil, ErrInvalidOTP
	}

	res := s.db.Model(&models.FoodPost{}).
		Where("id = ? AND status = ?", postID, models.FoodStatusClaimed).
		Update("status", models.FoodStatusCompleted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}

	post.Status = models.FoodStatusCompleted
	return &post, nil
}

// SweepExpired transitions every stale available post to expired in one
// batch. The predicate excludes claimed and completed posts, so the sweep
// races harmlessly with Claim. Returns the number of posts transitioned.
func (s *FoodService) SweepExpired(now time.Time) (int64, error) {
	res := s.db.Model(&models.FoodPost{}).
		Where("status = ? AND freshness_expires_at <= ?", models.FoodStatusAvailable, now).
		Update("status", models.FoodStatusExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Available lists claimable posts with donor contact details, newest first.
func (s *FoodService) Available() ([]models.FoodPost, error) {
	var posts []models.FoodPost
	err := s.db.Where("status = ?", models.FoodStatusAvailable).
		Preload("Donor").
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// ByDonor lists a donor's posts, excluding expired ones, newest first.
func (s *FoodService) ByDonor(donorID uint) ([]models.FoodPost, error) {
	var posts []models.FoodPost
	err := s.db.Where("donor_id = ? AND status IN ?", donorID,
		[]string{models.FoodStatusAvailable, models.FoodStatusClaimed, models.FoodStatusCompleted}).
		Preload("ClaimedBy").
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// ByClaimer lists the posts a volunteer has claimed or delivered, newest first.
func (s *FoodService) ByClaimer(volunteerID uint) ([]models.FoodPost, error) {
	var posts []models.FoodPost
	err := s.db.Where("claimed_by_id = ? AND status IN ?", volunteerID,
		[]string{models.FoodStatusClaimed, models.FoodStatusCompleted}).
		Preload("Donor").
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// Get loads a single post with both relations.
func (s *FoodService) Get(postID uint) (*models.FoodPost, error) {
	var post models.FoodPost
	if err := s.db.Preload("Donor").Preload("ClaimedBy").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// All lists every post regardless of status, for the admin dashboard.
func (s *FoodService) All() ([]models.FoodPost, error) {
	var posts []models.FoodPost
	err := s.db.Preload("Donor").Preload("ClaimedBy").
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// Delete removes a post. Administrative operation; the state machine
// itself never deletes.
func (s *FoodService) Delete(postID uint) error {
	res := s.db.Delete(&models.FoodPost{}, postID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
