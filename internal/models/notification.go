package models

// NotificationType enumerates inbox entry kinds. Only the two lifecycle
// types are emitted today; new_follower and new_comment are declared so the
// inbox can render historical rows of those types.
type NotificationType string

const (
	NotificationPostPublished NotificationType = "post_published"
	NotificationPostDraft     NotificationType = "post_draft"
	NotificationNewFollower   NotificationType = "new_follower"
	NotificationNewComment    NotificationType = "new_comment"
)

// NotificationModel is a durable per-user inbox entry. Rows are created as a
// side effect of content lifecycle transitions and are never deleted.
type NotificationModel struct {
	Base
	UserID        string           `json:"user_id" gorm:"type:char(36);index;not null"`
	Type          NotificationType `json:"type"    gorm:"type:varchar(32);not null"`
	Message       string           `json:"message" gorm:"not null"`
	RelatedPostID *string          `json:"related_post_id" gorm:"type:char(36)"`
	RelatedPost   *PostModel       `json:"related_post,omitempty" gorm:"foreignKey:RelatedPostID"`
	RelatedUserID *string          `json:"related_user_id" gorm:"type:char(36)"`
	RelatedUser   *UserModel       `json:"related_user,omitempty" gorm:"foreignKey:RelatedUserID"`
	IsRead        bool             `json:"is_read" gorm:"default:false;index"`
}

func (NotificationModel) TableName() string { return "notifications" }
