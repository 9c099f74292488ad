package domain

// Course Model
type Course struct {
	ID          uint    `gorm:"primaryKey" json:"id"`                 // Primary key
	Title       string  `gorm:"unique;not null" json:"title"`         // Unique course title
	Description string  `gorm:"not null" json:"description"`          // Course description
	Price       float64 `gorm:"not null" json:"price"`                // Course price, must be strictly positive
	Purchasers  []User  `gorm:"many2many:purchased_courses" json:"-"` // Inverse side of the purchase relationship
}
