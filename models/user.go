package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username   string  `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Slug       string  `json:"slug" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email      string  `json:"email" gorm:"type:varchar(254);uniqueIndex;not null"`
	FirstName  string  `json:"first_name" gorm:"type:varchar(150)"`
	LastName   string  `json:"last_name" gorm:"type:varchar(150)"`
	Password   string  `json:"-"`
	IsVerified bool    `json:"is_verified" gorm:"default:false"`
	Role       string  `json:"role" gorm:"default:user"`
	GoogleID   *string `json:"-" gorm:"uniqueIndex"`
}

// FullName falls back to the username when no name is set.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Username
}

type UserView struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Slug       string `json:"slug"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	FullName   string `json:"full_name"`
	IsVerified bool   `json:"is_verified"`
	Role       string `json:"role"`
}

func (u User) View() UserView {
	return UserView{
		ID:         u.ID,
		Username:   u.Username,
		Slug:       u.Slug,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		IsVerified: u.IsVerified,
		Role:       u.Role,
	}
}
