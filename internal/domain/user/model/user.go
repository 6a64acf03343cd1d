package model

import (
	baseModel "github.com/Mpratama260304/MpratamaStore-sub001/pkg/model"
)

// User is a storefront customer or back-office admin.
type User struct {
	baseModel.BaseModel
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	Role         int    `gorm:"default:1" json:"role"`
}

const (
	RoleUser  = 1
	RoleAdmin = 2
)
