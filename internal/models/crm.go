package models

import "time"

type Client struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"not null;size:150;index"`
	Phone string `json:"phone" gorm:"size:50"`
	Email string `json:"email" gorm:"size:255"`
	Notes string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Client) TableName() string {
	return "crm_clients"
}
