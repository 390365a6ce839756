package model

import "time"

type Task struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description *string   `gorm:"size:600" json:"description"`
	Timestamp   time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	Priority    int       `gorm:"not null;default:0" json:"priority"`
}

func (Task) TableName() string {
	return "todo"
}
