// Package models contains database model definitions.
package models

// Setting is one entry of the key-value table. Values are opaque blobs,
// most of them JSON documents.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"unique;size:100;not null"`
	Value []byte
}
