package models

import "time"

// FoodPost status values. Transitions only move forward:
// available -> claimed -> completed, with the side exit available -> expired.
const (
	FoodStatusAvailable = "available"
	FoodStatusClaimed   = "claimed"
	FoodStatusCompleted = "completed"
	FoodStatusExpired   = "expired"
)

// FoodPost is a surplus-food offer created by a donor.
//
// ClaimedByID and OTP are set together when a volunteer claims the post.
// The OTP proves physical handoff: it is handed to the claiming volunteer
// only and must never appear in any donor-facing response until the donor
// types it back in for verification. FreshnessExpiresAt is fixed at
// creation and never recomputed.
type FoodPost struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	DonorID            uint      `gorm:"index;not null" json:"donor_id"`
	FoodType           string    `gorm:"size:100;not null" json:"food_type"`
	Quantity           string    `gorm:"size:50;not null" json:"quantity"`
	FreshnessDuration  string    `gorm:"size:50;not null" json:"freshness_duration"`
	FreshnessExpiresAt time.Time `gorm:"index;not null" json:"freshness_expires_at"`
	PickupLocation     string    `gorm:"type:text;not null" json:"pickup_location"`
	Latitude           *float64  `json:"latitude"`
	Longitude          *float64  `json:"longitude"`
	ImageURL           string    `gorm:"size:255" json:"image_url"`
	Status             string    `gorm:"size:16;not null;default:'available';index" json:"status"`
	ClaimedByID        *uint     `gorm:"index" json:"claimed_by_id"`
	OTP                *string   `gorm:"column:otp;size:6" json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Donor     User  `gorm:"foreignKey:DonorID" json:"donor"`
	ClaimedBy *User `gorm:"foreignKey:ClaimedByID" json:"claimed_by,omitempty"`
}

// TableName keeps the table name used by the original schema.
func (FoodPost) TableName() string {
	return "food_posts"
}
