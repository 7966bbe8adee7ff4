package models

import "time"

// ActivityRecord is one member's logged activity for one calendar day.
// Monetary amounts are stored as integer cents so roll-ups stay exact.
type ActivityRecord struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"not null;uniqueIndex:uidx_activity_user_date" json:"user_id"`
	Date                time.Time `gorm:"type:date;not null;uniqueIndex:uidx_activity_user_date" json:"date"`
	Contacts            int64     `gorm:"not null;default:0" json:"contacts"`
	Appointments        int64     `gorm:"not null;default:0" json:"appointments"`
	Presentations       int64     `gorm:"not null;default:0" json:"presentations"`
	Referrals           int64     `gorm:"not null;default:0" json:"referrals"`
	Testimonials        int64     `gorm:"not null;default:0" json:"testimonials"`
	Sales               int64     `gorm:"not null;default:0" json:"sales"`
	NewFaceSold         int64     `gorm:"not null;default:0" json:"new_face_sold"`
	FactFinders         int64     `gorm:"not null;default:0" json:"fact_finders"`
	PremiumCents        int64     `gorm:"not null;default:0" json:"premium_cents"`
	BankersPremiumCents int64     `gorm:"not null;default:0" json:"bankers_premium_cents"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
