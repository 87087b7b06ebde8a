package model

import "time"

// Widget is a widget instance currently placed on a home screen.
type Widget struct {
	ID       int       `json:"id"`
	PlacedAt time.Time `json:"placed_at"`
}

// Quote is an immutable (text, author) pair from the corpus.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// FallbackQuote is rendered whenever the corpus cannot be loaded or is empty.
var FallbackQuote = Quote{
	Text:   "The only way to do great work is to love what you do.",
	Author: "Steve Jobs",
}
