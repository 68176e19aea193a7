package models

// CategoryModel is a top-level taxonomy entity, not owned by any user.
type CategoryModel struct {
	Base
	Name string `json:"name" gorm:"uniqueIndex;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null"`

	Posts []PostModel `json:"posts,omitempty" gorm:"many2many:post_categories;joinForeignKey:CategoryID;joinReferences:PostID"`
}

func (CategoryModel) TableName() string { return "categories" }
