package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Confession{},
		&Chapter{},
		&Comment{},
		&CommentLike{},
		&Like{},
		&Bookmark{},
		&Follow{},
		&Badge{},
		&UserBadge{},
		&Report{},
		&ActivityLog{},
		&ModerationLog{},
		&SystemLog{},
	}
}

// TableNames are the tables a ready deployment must have.
var TableNames = []string{
	"users", "confessions", "chapters", "comments", "comment_likes",
	"likes", "bookmarks", "follows", "badges", "user_badges",
	"reports", "activity_logs", "moderation_logs",
}
