package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category представляет категорию товаров
// Категории образуют дерево глубиной один уровень: категория с ParentID = nil
// является корневой, остальные ссылаются на корневую.
type Category struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Slug      string     `json:"slug" db:"slug"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Product представляет товар в каталоге
// Товар никогда не удаляется физически: soft delete через IsActive=false.
// Rating - производное поле: round(avg(grade), 2) по активным оценкам.
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	Slug        string    `json:"slug" gorm:"type:varchar(220);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"` // Цена в базовой валюте (USD)
	ImageURL    string    `json:"image_url" gorm:"type:varchar(500)"`
	Stock       int       `json:"stock" gorm:"not null;check:stock >= 0"`
	SupplierID  uuid.UUID `json:"supplier_id" gorm:"type:uuid;not null"` // Пользователь, создавший товар
	CategoryID  uuid.UUID `json:"category_id" gorm:"type:uuid;not null"`
	Rating      float64   `json:"rating" gorm:"type:decimal(4,2);not null;default:0"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Product) TableName() string {
	return "products"
}

// User представляет пользователя
// Флаги IsAdmin / IsSupplier определяют ветки авторизации.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	IsAdmin      bool      `json:"is_admin" gorm:"not null;default:false"`
	IsSupplier   bool      `json:"is_supplier" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// Rating представляет одну оценку товара
// Одна строка на каждое событие отправки отзыва.
type Rating struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Grade     float64   `json:"grade" gorm:"type:decimal(3,1);not null"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
}

// TableName указывает имя таблицы для GORM
func (Rating) TableName() string {
	return "ratings"
}

// Review представляет текстовый отзыв, связанный 1:1 с оценкой,
// созданной в том же запросе.
type Review struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	RatingID    uuid.UUID `json:"rating_id" gorm:"type:uuid;not null"`
	Comment     string    `json:"comment" gorm:"type:text;not null"`
	CommentDate time.Time `json:"comment_date" gorm:"column:comment_date;autoCreateTime"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
}

// TableName указывает имя таблицы для GORM
func (Review) TableName() string {
	return "reviews"
}

// ShopEvent представляет доменное событие для Kafka
type ShopEvent struct {
	EventType string      `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED, REVIEW_CREATED, RATINGS_RECONCILED
	EntityID  uuid.UUID   `json:"entity_id"`
	ProductID uuid.UUID   `json:"product_id,omitempty"`
	UserID    uuid.UUID   `json:"user_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
