package quiz

import "time"

// Visibility controls who may view a published quiz.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

// QuestionType distinguishes single-choice from multiple-choice questions.
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
)

// Quiz is an authored quiz with nested questions.
type Quiz struct {
	ID            string     `json:"id"`
	AuthorID      string     `json:"author_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Visibility    Visibility `json:"visibility"`
	Published     bool       `json:"published"`
	LikeCount     int        `json:"like_count"`
	ResponseCount int        `json:"response_count"`
	Questions     []Question `json:"questions,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Question belongs to a quiz and carries its options in display order.
type Question struct {
	ID       string       `json:"id"`
	QuizID   string       `json:"quiz_id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Position int          `json:"position"`
	Options  []Option     `json:"options"`
}

// Option is one selectable answer. Correct options are only revealed to the
// quiz author; responses are scored against them server-side.
type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	Correct    bool   `json:"correct"`
	Position   int    `json:"position"`
}

// Answer records the options a respondent selected for one question.
type Answer struct {
	QuestionID string   `json:"question_id"`
	OptionIDs  []string `json:"option_ids"`
}

// Response is a respondent's scored submission. A respondent has at most one
// response per quiz; resubmitting replaces the previous one.
type Response struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quiz_id"`
	UserID      string    `json:"user_id"`
	Answers     []Answer  `json:"answers"`
	Score       int       `json:"score"` // percentage 0-100
	CompletedAt time.Time `json:"completed_at"`
}

// Comment is attached to a quiz, optionally threaded one level deep.
type Comment struct {
	ID        string    `json:"id"`
	QuizID    string    `json:"quiz_id"`
	AuthorID  string    `json:"author_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Like marks a user's like on a quiz.
type Like struct {
	QuizID    string    `json:"quiz_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
