package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Banner 定义首页横幅模型
type Banner struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Image     string    `gorm:"not null" json:"image"`
	Link      string    `gorm:"not null" json:"link"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Banner) TableName() string {
	return "banners"
}

// BeforeCreate assigns the record id.
func (b *Banner) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b *Banner) RecordID() string { return b.ID }

func (b *Banner) Fields() ContentFields {
	return ContentFields{Title: b.Title, Image: b.Image, Link: b.Link, IsActive: b.IsActive}
}

func (b *Banner) Assign(f ContentFields) {
	b.Title = f.Title
	b.Image = f.Image
	b.Link = f.Link
	b.IsActive = f.IsActive
}

func (b *Banner) Timestamps() (time.Time, time.Time) { return b.CreatedAt, b.UpdatedAt }
