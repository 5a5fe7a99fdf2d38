package models

import "time"

type CommentAuthor struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Slug     string `json:"slug"`
}

type StoreComment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	Author    User      `json:"-" gorm:"foreignKey:AuthorID"`
	StoreID   uint      `json:"store_id" gorm:"not null;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

type ProductComment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	Author    User      `json:"-" gorm:"foreignKey:AuthorID"`
	ProductID uint      `json:"product_id" gorm:"not null;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// CommentView is the public shape of a store or product comment.
type CommentView struct {
	ID        uint          `json:"id"`
	Author    CommentAuthor `json:"author"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"created_at"`
}

func authorOf(u User) CommentAuthor {
	return CommentAuthor{ID: u.ID, Username: u.Username, Slug: u.Slug}
}

func (c StoreComment) View() CommentView {
	return CommentView{ID: c.ID, Author: authorOf(c.Author), Text: c.Text, CreatedAt: c.CreatedAt}
}

func (c ProductComment) View() CommentView {
	return CommentView{ID: c.ID, Author: authorOf(c.Author), Text: c.Text, CreatedAt: c.CreatedAt}
}
