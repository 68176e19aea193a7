package models

import "time"

// Role controls administrative access.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// SocialLinks is the fixed set of profile link fields.
type SocialLinks struct {
	Twitter  string `json:"twitter,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Github   string `json:"github,omitempty"`
	Facebook string `json:"facebook,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`
	Youtube  string `json:"youtube,omitempty"`
}

// UserModel represents a platform account.
type UserModel struct {
	Base
	Name          string      `json:"name"      gorm:"not null"`
	Username      *string     `json:"username"  gorm:"uniqueIndex"`
	Email         string      `json:"email"     gorm:"uniqueIndex;not null"`
	Password      string      `json:"-"         gorm:"not null"`
	Role          Role        `json:"role"      gorm:"type:varchar(16);default:'user'"`
	Bio           string      `json:"bio"`
	Avatar        string      `json:"avatar"`
	Links         SocialLinks `json:"links"     gorm:"serializer:json"`
	ResetToken    string      `json:"-"         gorm:"index"`
	ResetTokenExp *time.Time  `json:"-"`
}

func (UserModel) TableName() string { return "users" }
