package models

import "time"

// SocialLink references a post on an external platform. Category is always
// "social" so downstream filtering treats both record types uniformly.
type SocialLink struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Platform        string    `gorm:"size:32;index;not null" json:"platform"`
	URL             string    `gorm:"size:1024;not null" json:"url"`
	Title           string    `gorm:"size:255" json:"title"`
	Image           *string   `gorm:"size:1024" json:"image"`
	Author          *string   `gorm:"size:255" json:"author"`
	InstagramHandle *string   `gorm:"size:255" json:"instagramHandle"`
	FacebookHandle  *string   `gorm:"size:255" json:"facebookHandle"`
	Category        string    `gorm:"size:32;default:'social'" json:"category"`
	Date            time.Time `gorm:"index;not null" json:"date"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}
