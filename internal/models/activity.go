package models

import "time"

// Session statuses recorded by the chat subsystem.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// Message sender types. Only student messages count toward engagement.
const (
	SenderStudent = "student"
	SenderAgent   = "agent"
)

// SessionFact is one chat session started inside a window, together with the
// number of student-originated messages it holds.
type SessionFact struct {
	ID              string     `db:"id" json:"id"`
	StudentID       string     `db:"student_id" json:"studentId"`
	StartedAt       time.Time  `db:"started_at" json:"startedAt"`
	EndedAt         *time.Time `db:"ended_at" json:"endedAt,omitempty"`
	Status          string     `db:"status" json:"status"`
	StudentMessages int        `db:"student_messages" json:"studentMessages"`
}

// Completed reports whether the session reached the completed status.
func (s SessionFact) Completed() bool {
	return s.Status == SessionStatusCompleted
}

// HourCount is the number of student messages sent during one hour of the day (UTC).
type HourCount struct {
	Hour  int `db:"hour" json:"hour"`
	Count int `db:"message_count" json:"messageCount"`
}

// TakeawayFact is a session takeaway attributed to the student owning the session.
type TakeawayFact struct {
	SessionID    string    `json:"sessionId"`
	StudentID    string    `json:"studentId"`
	TakeawayType string    `json:"takeawayType"`
	KeyConcepts  []string  `json:"keyConcepts"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FAQ is a global frequently asked question record.
type FAQ struct {
	ID             string    `db:"id" json:"id"`
	Category       string    `db:"category" json:"category"`
	QuestionText   string    `db:"question_text" json:"question"`
	FrequencyCount int       `db:"frequency_count" json:"frequency"`
	SuccessRate    *float64  `db:"success_rate" json:"successRate"`
	LastAsked      time.Time `db:"last_asked" json:"lastAsked"`
}

// MasteryRecord is a per-student-per-date learning snapshot.
type MasteryRecord struct {
	StudentID        string    `json:"studentId"`
	Date             time.Time `json:"date"`
	ConceptsMastered []string  `json:"conceptsMastered"`
	SuccessRate      float64   `json:"successRate"`
}

// ChatSession is a tutoring conversation owned by one student.
type ChatSession struct {
	ID              string     `json:"id"`
	StudentID       string     `json:"studentId"`
	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	Status          string     `json:"status"`
	ConceptsCovered []string   `json:"conceptsCovered,omitempty"`
}

// ChatMessage is one message inside a session.
type ChatMessage struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Timestamp  time.Time `json:"timestamp"`
	SenderType string    `json:"senderType"`
	Content    string    `json:"content"`
}

// SessionTakeaway is a post-session annotation.
type SessionTakeaway struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	TakeawayType string    `json:"takeawayType"`
	KeyConcepts  []string  `json:"keyConcepts"`
	CreatedAt    time.Time `json:"createdAt"`
}
