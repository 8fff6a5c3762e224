package models

// User is an account row. PasswordHash stores the bcrypt hash and is
// never serialized to clients.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"size:80;uniqueIndex;not null"  json:"username"`
	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null"                      json:"-"`
	IsAdmin      bool   `gorm:"default:false"                 json:"is_admin"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"size:100;not null"        json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Stock       int     `json:"stock"`
}
