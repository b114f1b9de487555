package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	AlgoBcrypt = "bcrypt"
	AlgoPBKDF2 = "pbkdf2"
)

// Profile is the user-facing business entity carrying the purchase balance.
type Profile struct {
	ID    uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Nome  string  `gorm:"size:80;not null"         json:"nome"`
	Email string  `gorm:"size:120;not null;uniqueIndex" json:"email"`
	Saldo float64 `gorm:"not null;default:0"       json:"saldo"`
}

// Account is the authentication identity. An account with role "user"
// references exactly one Profile; admin accounts have none.
type Account struct {
	ID           uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Nome         string   `gorm:"size:80;not null"         json:"nome"`
	Email        string   `gorm:"size:120;not null;uniqueIndex" json:"email"`
	Role         string   `gorm:"size:20;not null;index"   json:"role"`
	ProfileID    *uint    `gorm:"uniqueIndex"              json:"usuario_id,omitempty"`
	PasswordHash string   `gorm:"size:255;not null"        json:"-"`
	PasswordSalt *string  `gorm:"size:64"                  json:"-"`
	PasswordAlgo string   `gorm:"size:20;not null;default:bcrypt" json:"-"`
	Profile      *Profile `gorm:"foreignKey:ProfileID"     json:"-"`
}

// RefreshToken is the persisted ledger row behind a signed refresh token.
// A row is usable only while revoked is false and expires_at is in the future.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID uint      `gorm:"index;not null"           json:"account_id"`
	JTI       string    `gorm:"size:64;not null;uniqueIndex" json:"jti"`
	ExpiresAt time.Time `gorm:"not null"                 json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false"   json:"revoked"`
	CreatedAt time.Time `gorm:"not null"                 json:"created_at"`
}

type Product struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Nome      string  `gorm:"size:120;not null"        json:"nome"`
	Descricao string  `gorm:"size:300;not null;default:''" json:"descricao"`
	Preco     float64 `gorm:"not null"                 json:"preco"`
}

type Order struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileID uint        `gorm:"index;not null"           json:"usuario_id"`
	Total     float64     `gorm:"not null"                 json:"total"`
	CreatedAt time.Time   `gorm:"not null;index"           json:"created_at"`
	Profile   *Profile    `gorm:"foreignKey:ProfileID"     json:"-"`
	Items     []OrderItem `gorm:"foreignKey:OrderID"       json:"-"`
}

type OrderItem struct {
	ID        uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint     `gorm:"index;not null"           json:"order_id"`
	ProductID uint     `gorm:"index;not null"           json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID"     json:"-"`
}

// SiteConfig is a singleton row (id = 1).
type SiteConfig struct {
	ID             uint   `gorm:"primaryKey"       json:"-"`
	SiteName       string `gorm:"size:60;not null" json:"site_name"`
	Tagline        string `gorm:"size:120;not null" json:"tagline"`
	HeroTitle      string `gorm:"size:80;not null"  json:"hero_title"`
	HeroSubtitle   string `gorm:"size:180;not null" json:"hero_subtitle"`
	AccentColor    string `gorm:"size:7;not null"   json:"accent_color"`
	HighlightColor string `gorm:"size:7;not null"   json:"highlight_color"`
}
