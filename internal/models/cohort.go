package models

import "time"

// Teacher is a tutor supervising a fixed list of students.
type Teacher struct {
	ID         string   `db:"id" json:"id"`
	Name       string   `db:"name" json:"name"`
	StudentIDs []string `db:"-" json:"studentIds"`
}

// Student is a learner identity with its display name.
type Student struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Cohort is the authoritative set of students supervised by a teacher. The
// order of Students follows the teacher's roster.
type Cohort struct {
	TeacherID   string    `json:"teacherId"`
	TeacherName string    `json:"teacherName"`
	Students    []Student `json:"students"`
}

// StudentIDs returns the roster identifiers in roster order.
func (c Cohort) StudentIDs() []string {
	ids := make([]string, len(c.Students))
	for i, s := range c.Students {
		ids[i] = s.ID
	}
	return ids
}

// Size reports the cohort size.
func (c Cohort) Size() int {
	return len(c.Students)
}

// Empty reports whether the teacher supervises nobody yet.
func (c Cohort) Empty() bool {
	return len(c.Students) == 0
}

// AnalyticsWindow is the inclusive [Start, End] range covered by a report.
type AnalyticsWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the window, both ends included.
func (w AnalyticsWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the window length in whole days, rounded up and never below one.
func (w AnalyticsWindow) Days() int {
	span := w.End.Sub(w.Start)
	days := int(span / (24 * time.Hour))
	if span%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		return 1
	}
	return days
}
