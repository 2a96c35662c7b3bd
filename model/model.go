package model

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Caller is the authenticated identity every core operation acts on behalf of.
type Caller struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}

func (c Caller) IsAdmin() bool   { return c.Role == RoleAdmin }
func (c Caller) IsStudent() bool { return c.Role == RoleStudent }

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionScale          QuestionType = "scale"
)

type Assessment struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedBy   int64      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	Questions   []Question `json:"questions,omitempty"`
}

// AssessmentSummary is a row of the counselor's assessment index.
type AssessmentSummary struct {
	Assessment
	CreatorName    string `json:"creator_name"`
	QuestionCount  int    `json:"question_count"`
	AssignedCount  int    `json:"assigned_count"`
	CompletedCount int    `json:"completed_count"`
}

type Question struct {
	ID           int64        `json:"id"`
	AssessmentID int64        `json:"assessment_id"`
	Position     int          `json:"position"`
	Text         string       `json:"text"`
	Type         QuestionType `json:"type"`
	Options      []string     `json:"options,omitempty"`
}

type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "pending"
	StatusCompleted AssignmentStatus = "completed"
)

type Assignment struct {
	ID                    int64            `json:"id"`
	StudentID             int64            `json:"student_id"`
	StudentName           string           `json:"student_name,omitempty"`
	AssessmentID          int64            `json:"assessment_id"`
	AssessmentTitle       string           `json:"assessment_title,omitempty"`
	AssessmentDescription string           `json:"assessment_description,omitempty"`
	Status                AssignmentStatus `json:"status"`
	SubmittedAt           *time.Time       `json:"submitted_at,omitempty"`
}

type Response struct {
	ID           int64  `json:"id"`
	AssignmentID int64  `json:"assignment_id"`
	QuestionID   int64  `json:"question_id"`
	Answer       Answer `json:"answer"`
}

// ScaleReading is the display form of a scale answer.
type ScaleReading struct {
	Value   int    `json:"value"`
	Percent int    `json:"percent"`
	Tier    string `json:"tier"`
}

type ResultItem struct {
	Question Question      `json:"question"`
	Response Response      `json:"response"`
	Text     string        `json:"text"`
	Scale    *ScaleReading `json:"scale,omitempty"`
}

// Result is a completed assignment with its answers in authoring order.
type Result struct {
	Assignment
	CreatorName string       `json:"creator_name"`
	Items       []ResultItem `json:"items"`
}
