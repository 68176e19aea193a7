package models

// SubscriptionModel is a directed author-follow edge. At most one edge exists
// per ordered (follower, following) pair.
type SubscriptionModel struct {
	Base
	FollowerID  string     `json:"follower_id"  gorm:"type:char(36);not null;uniqueIndex:idx_follower_following"`
	FollowingID string     `json:"following_id" gorm:"type:char(36);not null;uniqueIndex:idx_follower_following;index"`
	Follower    *UserModel `json:"follower,omitempty"  gorm:"foreignKey:FollowerID"`
	Following   *UserModel `json:"following,omitempty" gorm:"foreignKey:FollowingID"`
}

func (SubscriptionModel) TableName() string { return "subscriptions" }

// CategorySubscriptionModel is a user-watches-topic edge.
type CategorySubscriptionModel struct {
	Base
	UserID     string         `json:"user_id"     gorm:"type:char(36);not null;uniqueIndex:idx_user_category"`
	CategoryID string         `json:"category_id" gorm:"type:char(36);not null;uniqueIndex:idx_user_category"`
	Category   *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (CategorySubscriptionModel) TableName() string { return "category_subscriptions" }
