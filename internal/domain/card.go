package domain

// Card is a question/answer pair read from a markdown source before it becomes a FlashCard cell.
type Card struct {
	Question string
	Answer   string
	Context  string
}
