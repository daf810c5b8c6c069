package db

import "time"

// ContentFields is the editable shape shared by every promotional record.
// Image holds the thumbnail for gallery videos; Link is empty for media.
type ContentFields struct {
	Title    string
	Image    string
	Link     string
	IsActive bool
}

// Content is implemented by the pointer type of each content model.
type Content interface {
	RecordID() string
	Fields() ContentFields
	Assign(ContentFields)
	Timestamps() (createdAt, updatedAt time.Time)
}

// Record constrains a generic parameter to a pointer to a content model.
type Record[T any] interface {
	*T
	Content
}
