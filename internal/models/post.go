// Package models contains data structures for the forum's documents and read models.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Post is a forum post stored in the posts collection.
type Post struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	AuthorEmail string        `bson:"authorEmail" json:"authorEmail"`
	AuthorName  string        `bson:"authorName,omitempty" json:"authorName,omitempty"`
	AuthorPhoto string        `bson:"authorPhoto,omitempty" json:"authorPhoto,omitempty"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Tags        []string      `bson:"tags" json:"tags"`
	UpVote      int64         `bson:"upVote" json:"upVote"`
	DownVote    int64         `bson:"downVote" json:"downVote"`
	// TotalLiked is the single counter used by the legacy voteType contract.
	TotalLiked int64 `bson:"totalLiked" json:"totalLiked"`
	Featured   bool  `bson:"featured" json:"featured"`
	// Comments holds legacy embedded comment texts; current comments live in their own collection.
	Comments  []string  `bson:"comments,omitempty" json:"comments,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Post sort orders accepted by the paginated listing.
const (
	SortNewest     = "newest"
	SortPopularity = "popularity"
)

// Legacy vote types.
const (
	VoteTypeUp   = "upvote"
	VoteTypeDown = "downvote"
)

// VoteDelta is a signed adjustment applied to a post's counters in one update.
type VoteDelta struct {
	UpVote     int64 `json:"upVote"`
	DownVote   int64 `json:"downVote"`
	TotalLiked int64 `json:"totalLiked"`
}

// IsZero reports whether the delta changes nothing.
func (d VoteDelta) IsZero() bool {
	return d.UpVote == 0 && d.DownVote == 0 && d.TotalLiked == 0
}

// VoteDifference is the popularity score used for sorting.
func (p *Post) VoteDifference() int64 {
	return p.UpVote - p.DownVote
}
