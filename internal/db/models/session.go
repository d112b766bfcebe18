package models

import "time"

// Session is a server-side web session, used as session storage
// when the database engine has no gofiber storage driver.
type Session struct {
	ID        string `gorm:"primaryKey;size:64"`
	Value     []byte
	ExpiresAt *time.Time `gorm:"index"`
}

// TableName specifies the database table name for the Session model.
func (Session) TableName() string {
	return "sessions"
}
