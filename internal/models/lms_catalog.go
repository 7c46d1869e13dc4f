package models

import (
	"time"
)

type Course struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	Title         string `json:"title" gorm:"not null;size:200"`
	Slug          string `json:"slug" gorm:"uniqueIndex;not null;size:220"`
	Description   string `json:"description" gorm:"type:text"`
	Objectives    string `json:"objectives" gorm:"type:text"`
	DurationWeeks int    `json:"duration_weeks"`
	IsActive      bool   `json:"is_active" gorm:"index"`

	Modules []Module `json:"modules,omitempty" gorm:"foreignKey:CourseID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string { return "lms_courses" }

type Module struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	CourseID   uint   `json:"course_id" gorm:"not null;index"`
	WeekNumber int    `json:"week_number"`
	Title      string `json:"title" gorm:"not null;size:200"`
	Objective  string `json:"objective" gorm:"type:text"`
	Overview   string `json:"overview" gorm:"type:text"`
	Order      int    `json:"order" gorm:"column:sort_order"`

	Course  *Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:ModuleID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Module) TableName() string { return "lms_modules" }

type LessonType string

const (
	LessonTypeCourse     LessonType = "COURSE"
	LessonTypePractice   LessonType = "PRACTICE"
	LessonTypeWorkshop   LessonType = "WORKSHOP"
	LessonTypeEvaluation LessonType = "EVALUATION"
)

type Lesson struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	ModuleID        uint       `json:"module_id" gorm:"not null;index"`
	Title           string     `json:"title" gorm:"not null;size:200"`
	Description     string     `json:"description" gorm:"type:text"`
	Content         string     `json:"content" gorm:"type:text"`
	LessonType      LessonType `json:"lesson_type" gorm:"size:20;not null"`
	DurationMinutes int        `json:"duration_minutes"`
	Order           int        `json:"order" gorm:"column:sort_order"`
	IsRequired      bool       `json:"is_required"`

	Module    *Module    `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
	Resources []Resource `json:"resources,omitempty" gorm:"foreignKey:LessonID"`
	Quizzes   []Quiz     `json:"quizzes,omitempty" gorm:"foreignKey:LessonID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Lesson) TableName() string { return "lms_lessons" }

type ResourceType string

const (
	ResourceGuide     ResourceType = "GUIDE"
	ResourceTemplate  ResourceType = "TEMPLATE"
	ResourceVideo     ResourceType = "VIDEO"
	ResourceChecklist ResourceType = "CHECKLIST"
	ResourceLink      ResourceType = "LINK"
	ResourceFile      ResourceType = "FILE"
)

type Resource struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	LessonID     uint         `json:"lesson_id" gorm:"not null;index"`
	Title        string       `json:"title" gorm:"not null;size:200"`
	ResourceType ResourceType `json:"resource_type" gorm:"size:20;not null"`
	URL          string       `json:"url" gorm:"size:500;not null"`
	Order        int          `json:"order" gorm:"column:sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Resource) TableName() string { return "lms_resources" }

// LearningObjective is attached to exactly one of a course, module or lesson.
type LearningObjective struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID *uint  `json:"course_id" gorm:"index"`
	ModuleID *uint  `json:"module_id" gorm:"index"`
	LessonID *uint  `json:"lesson_id" gorm:"index"`
	Text     string `json:"text" gorm:"type:text;not null"`
	Order    int    `json:"order" gorm:"column:sort_order"`

	CreatedAt time.Time `json:"created_at"`
}

func (LearningObjective) TableName() string { return "lms_learning_objectives" }

// CompletionRule adds optional gating on top of the base completion
// requirements of a course or module. Exactly one of CourseID and ModuleID is set.
type CompletionRule struct {
	ID                         uint    `json:"id" gorm:"primaryKey"`
	CourseID                   *uint   `json:"course_id" gorm:"uniqueIndex"`
	ModuleID                   *uint   `json:"module_id" gorm:"uniqueIndex"`
	RequireAllLessons          bool    `json:"require_all_lessons"`
	MinLessonsCompleted        int     `json:"min_lessons_completed"`
	MinQuizScore               float64 `json:"min_quiz_score"`
	MinProgressPercent         float64 `json:"min_progress_percent"`
	RequireAssignmentsApproved bool    `json:"require_assignments_approved"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CompletionRule) TableName() string { return "lms_completion_rules" }
