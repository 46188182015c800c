package models

import "time"

// Post is a regular editorial post. IDs are assigned by the store on create.
// Date is a last-modified stamp: it is overwritten on every save, not only on
// create.
type Post struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Category        string    `gorm:"size:32;index;not null" json:"category"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	Image           *string   `gorm:"size:1024" json:"image"`
	Author          string    `gorm:"size:255;default:'Anonymous'" json:"author"`
	InstagramHandle *string   `gorm:"size:255" json:"instagramHandle"`
	FacebookHandle  *string   `gorm:"size:255" json:"facebookHandle"`
	Date            time.Time `gorm:"index;not null" json:"date"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}
