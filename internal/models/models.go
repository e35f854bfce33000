package models

import (
	"time"
)

type Product struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name        string `gorm:"unique;not null"              json:"name"`
	Description string `gorm:"not null"                     json:"description"`
	Price       int64  `gorm:"not null"                     json:"price"`
	Quantity    int64  `gorm:"not null;check:quantity >= 0" json:"quantity"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

// RefreshToken keys on user_id: at most one live refresh credential per user.
// Sign-in and rotation overwrite the row instead of appending.
type RefreshToken struct {
	UserID    uint      `gorm:"primaryKey"  json:"user_id"`
	Token     string    `gorm:"not null"    json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Cart struct {
	ID     uint       `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID uint       `gorm:"uniqueIndex;not null"        json:"user_id"`
	Items  []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"              json:"id"`
	CartID    uint    `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uint    `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int64   `gorm:"not null;check:quantity > 0"           json:"quantity"`
	Product   Product `gorm:"foreignKey:ProductID"                  json:"product"`
}

type Order struct {
	ID              uint        `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID          uint        `gorm:"index;not null"              json:"user_id"`
	ShippingAddress string      `gorm:"not null"                    json:"shipping_address"`
	TotalPrice      int64       `gorm:"not null"                    json:"total_price"`
	Status          OrderStatus `gorm:"not null"                    json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem holds a weak product reference: OrderPrice is snapshotted at
// placement time and never recomputed from the catalog.
type OrderItem struct {
	ID         uint  `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID    uint  `gorm:"index;not null"              json:"order_id"`
	ProductID  uint  `gorm:"not null"                    json:"product_id"`
	OrderPrice int64 `gorm:"not null"                    json:"order_price"`
	Quantity   int64 `gorm:"not null;check:quantity > 0" json:"quantity"`
}
