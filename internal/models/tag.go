package models

// TagModel is a named tag tied to a single post. Posts also carry a free-text
// tags array; the two surfaces are maintained independently.
type TagModel struct {
	Base
	Name   string     `json:"name"    gorm:"not null;index"`
	PostID string     `json:"post_id" gorm:"type:char(36);index;not null"`
	Post   *PostModel `json:"post,omitempty" gorm:"foreignKey:PostID"`
}

func (TagModel) TableName() string { return "tags" }
