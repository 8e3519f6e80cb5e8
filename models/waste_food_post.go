package models

import "time"

// WasteFoodPost status values: available -> reserved -> sold.
const (
	WasteStatusAvailable = "available"
	WasteStatusReserved  = "reserved"
	WasteStatusSold      = "sold"
)

// WasteFoodPost is an expired/waste food listing sold for animal feed.
// Any authenticated user may list or buy; the state machine mirrors
// FoodPost but carries no OTP.
type WasteFoodPost struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SellerID       uint      `gorm:"index;not null" json:"seller_id"`
	FoodType       string    `gorm:"size:100;not null" json:"food_type"`
	Quantity       string    `gorm:"size:50;not null" json:"quantity"`
	Price          float64   `gorm:"not null" json:"price"`
	Description    string    `gorm:"type:text" json:"description"`
	PickupLocation string    `gorm:"type:text;not null" json:"pickup_location"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	ImageURL       string    `gorm:"size:255" json:"image_url"`
	Status         string    `gorm:"size:16;not null;default:'available';index" json:"status"`
	BuyerID        *uint     `gorm:"index" json:"buyer_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Seller User  `gorm:"foreignKey:SellerID" json:"seller"`
	Buyer  *User `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
}

// TableName keeps the table name used by the original schema.
func (WasteFoodPost) TableName() string {
	return "waste_food_posts"
}
