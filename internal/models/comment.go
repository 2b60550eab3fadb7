package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Comment is a standalone comment on a post.
type Comment struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	PostID      bson.ObjectID `bson:"postId" json:"postId"`
	AuthorEmail string        `bson:"authorEmail" json:"authorEmail"`
	AuthorName  string        `bson:"authorName,omitempty" json:"authorName,omitempty"`
	Text        string        `bson:"text" json:"text"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
}

// Report flags a comment for moderator review.
type Report struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	CommentID     bson.ObjectID `bson:"commentId" json:"commentId"`
	ReporterEmail string        `bson:"reporterEmail" json:"reporterEmail"`
	Feedback      string        `bson:"feedback" json:"feedback"`
	ReportedAt    time.Time     `bson:"reportedAt" json:"reportedAt"`
}

// ReportedComment is the enriched report listing shown on the admin console.
type ReportedComment struct {
	ID            bson.ObjectID `bson:"_id" json:"_id"`
	CommentID     bson.ObjectID `bson:"commentId" json:"commentId"`
	PostID        bson.ObjectID `bson:"postId" json:"postId"`
	CommentText   string        `bson:"commentText" json:"commentText"`
	Feedback      string        `bson:"feedback" json:"feedback"`
	ReportedAt    time.Time     `bson:"reportedAt" json:"reportedAt"`
	CommentAuthor Profile       `bson:"commentAuthor" json:"commentAuthor"`
	Reporter      Profile       `bson:"reporter" json:"reporter"`
}
