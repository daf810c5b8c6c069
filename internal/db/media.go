package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media 定义通用媒体条目，没有跳转链接
type Media struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Image     string    `gorm:"not null" json:"image"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Media) TableName() string {
	return "media"
}

func (m *Media) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *Media) RecordID() string { return m.ID }

func (m *Media) Fields() ContentFields {
	return ContentFields{Title: m.Title, Image: m.Image, IsActive: m.IsActive}
}

func (m *Media) Assign(f ContentFields) {
	m.Title = f.Title
	m.Image = f.Image
	m.IsActive = f.IsActive
}

func (m *Media) Timestamps() (time.Time, time.Time) { return m.CreatedAt, m.UpdatedAt }
