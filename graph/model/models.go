package model

type Author struct {
	ID   int    `json:"authorId" gorm:"primaryKey;autoIncrement:false"`
	Name string `json:"name"`
}

type Book struct {
	ID       int    `json:"bookId" gorm:"primaryKey;autoIncrement:false"`
	Title    string `json:"title" gorm:"unique"`
	AuthorID int    `json:"authorId" gorm:"index"`
}

type Review struct {
	ID      int    `json:"reviewId" gorm:"primaryKey;autoIncrement:false"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// BookReview relates a review to the book it was written about.
type BookReview struct {
	ReviewID int `json:"reviewId" gorm:"primaryKey;autoIncrement:false"`
	BookID   int `json:"bookId" gorm:"primaryKey;autoIncrement:false;index"`
}

// AuthorReview relates a review to the author it was written about.
type AuthorReview struct {
	ReviewID int `json:"reviewId" gorm:"primaryKey;autoIncrement:false"`
	AuthorID int `json:"authorId" gorm:"primaryKey;autoIncrement:false;index"`
}
