package models

// explicit join model for the book/author many-to-many
type BookAuthor struct {
	BookID   string `json:"book_id" gorm:"primaryKey;type:uuid"`
	AuthorID string `json:"author_id" gorm:"primaryKey;type:uuid"`
}

func (BookAuthor) TableName() string {
	return "book_authors"
}
