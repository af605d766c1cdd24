package models

// Post represents a blog post stored in the 'posts' table.
type Post struct {
	ID        int64  `db:"id" json:"id"`
	Title     string `db:"title" json:"title"`
	Content   string `db:"content" json:"content"`
	ImageURL  string `db:"image_url" json:"imageUrl"`
	Author    string `db:"author" json:"author"` // display name, not a reference to users
	Timestamp string `db:"timestamp" json:"timestamp"`
}
