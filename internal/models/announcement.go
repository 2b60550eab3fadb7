package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Announcement is a site-wide notice published by an admin.
type Announcement struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Author      Profile       `bson:"author" json:"author"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
}

// Tag is a first-class topic label. Names are unique ignoring case.
type Tag struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string        `bson:"name" json:"name"`
	CreatedBy bson.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}
