package models

import "time"

// Category groups portal links.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:100;not null"`
	Icon      string `gorm:"size:50"`
	SortOrder int    `gorm:"not null;default:0"`
	Links     []Link `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Category model.
func (Category) TableName() string {
	return "categories"
}

// Link is an internal system listed in the portal.
type Link struct {
	ID          uint   `gorm:"primaryKey"`
	CategoryID  uint   `gorm:"not null;index"`
	Title       string `gorm:"size:100;not null"`
	URL         string `gorm:"size:255;not null"`
	Description string `gorm:"size:255"`
	// AllowedGroups restricts the link to these application groups.
	// Empty means every authenticated user.
	AllowedGroups []string `gorm:"type:text;serializer:json"`
	AdminOnly     bool     `gorm:"not null;default:false"`
	Active        bool     `gorm:"not null"`
	SortOrder     int      `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the database table name for the Link model.
func (Link) TableName() string {
	return "links"
}
