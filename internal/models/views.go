package models

// LeaderboardEntry is one row of the users-by-post-count view.
type LeaderboardEntry struct {
	Name       string `bson:"name" json:"name"`
	Email      string `bson:"email" json:"email"`
	PhotoURL   string `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	TotalPosts int64  `bson:"totalPosts" json:"totalPosts"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPage assembles a page and derives the page count as ceil(total/limit).
func NewPage[T any](items []T, total int64, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page[T]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: pages,
	}
}

// AdminStats are the collection counts shown on the admin dashboard.
type AdminStats struct {
	Posts         int64 `json:"posts"`
	Users         int64 `json:"users"`
	Comments      int64 `json:"comments"`
	Reports       int64 `json:"reports"`
	Tags          int64 `json:"tags"`
	Announcements int64 `json:"announcements"`
}
