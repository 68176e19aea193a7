package models

// CommentModel is a comment against a post. IsSpam is derived from the
// content by a heuristic when the comment is created and never changes
// afterwards, even if the content is edited.
type CommentModel struct {
	Base
	PostID   string     `json:"post_id"   gorm:"type:char(36);index;not null"`
	Post     *PostModel `json:"post,omitempty" gorm:"foreignKey:PostID"`
	AuthorID string     `json:"author_id" gorm:"type:char(36);index;not null"`
	Author   *UserModel `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Content  string     `json:"content"   gorm:"type:text;not null"`
	IsSpam   bool       `json:"is_spam"   gorm:"default:false"`
}

func (CommentModel) TableName() string { return "comments" }
