package models

// PostStatus is the publish state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// Valid reports whether s is one of the two reachable states.
func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// PostModel is a blog post with embedded engagement metrics.
// ViewCount/ShareCount/CommentCount are denormalized counters updated by
// atomic column increments; LikedBy is a membership set of user ids that is
// rewritten whole on each like toggle.
type PostModel struct {
	Base
	Title    string     `json:"title"   gorm:"not null"`
	Excerpt  string     `json:"excerpt"`
	Content  string     `json:"content" gorm:"type:longtext"`
	Status   PostStatus `json:"status"  gorm:"type:varchar(16);default:'draft';index"`
	AuthorID string     `json:"author_id" gorm:"type:char(36);index;not null"`
	Author   *UserModel `json:"author,omitempty" gorm:"foreignKey:AuthorID"`

	Categories []CategoryModel `json:"categories,omitempty" gorm:"many2many:post_categories;joinForeignKey:PostID;joinReferences:CategoryID"`
	Banner     string          `json:"banner"`
	Tags       StringArray     `json:"tags" gorm:"type:json"`

	ViewCount    int         `json:"-" gorm:"column:view_count;default:0"`
	LikedBy      StringArray `json:"-" gorm:"column:liked_by;type:json"`
	ShareCount   int         `json:"-" gorm:"column:share_count;default:0"`
	CommentCount int         `json:"-" gorm:"column:comment_count;default:0"`
}

func (PostModel) TableName() string { return "posts" }

// Metrics is the embedded metrics object expected by the API.
type Metrics struct {
	Views    int      `json:"views"`
	Likes    []string `json:"likes"`
	Shares   int      `json:"shares"`
	Comments int      `json:"comments"`
}

func (p PostModel) GetMetrics() Metrics {
	likes := p.LikedBy
	if likes == nil {
		likes = []string{}
	}
	return Metrics{
		Views:    p.ViewCount,
		Likes:    likes,
		Shares:   p.ShareCount,
		Comments: p.CommentCount,
	}
}
