package models

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

type RecurrenceFrequency string

const (
	FrequencyDaily   RecurrenceFrequency = "DAILY"
	FrequencyWeekly  RecurrenceFrequency = "WEEKLY"
	FrequencyMonthly RecurrenceFrequency = "MONTHLY"
)

// RecurrenceRule describes when a task template fires. Weekdays is a comma
// separated list where 0 is Monday and 6 is Sunday.
type RecurrenceRule struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	Name        string              `json:"name" gorm:"not null;size:150"`
	Frequency   RecurrenceFrequency `json:"frequency" gorm:"size:20;not null"`
	Interval    int                 `json:"interval" gorm:"not null"`
	Weekdays    string              `json:"weekdays" gorm:"size:20"`
	Description string              `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseWeekdays returns the sorted, de-duplicated weekday numbers and the raw
// values that are not in the 0..6 range.
func ParseWeekdays(raw string) (days []int, invalid []string) {
	seen := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		value := strings.TrimSpace(part)
		if value == "" {
			continue
		}
		day, err := strconv.Atoi(value)
		if err != nil || day < 0 || day > 6 {
			invalid = append(invalid, value)
			continue
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Ints(days)
	return days, invalid
}

// MondayWeekday converts time.Weekday (Sunday = 0) to the Monday = 0 scheme.
func MondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ShouldRunOn reports whether the rule fires on the calendar day of date.
// Cycles are counted from the day the rule was created and a rule never fires
// before that day.
func (r *RecurrenceRule) ShouldRunOn(date time.Time) bool {
	day := now.With(date).BeginningOfDay()
	base := day
	if !r.CreatedAt.IsZero() {
		base = now.With(r.CreatedAt.In(date.Location())).BeginningOfDay()
	}
	if day.Before(base) {
		return false
	}

	interval := r.Interval
	if interval < 1 {
		interval = 1
	}
	weekdays, _ := ParseWeekdays(r.Weekdays)
	weekdayMatch := len(weekdays) == 0 || containsInt(weekdays, MondayWeekday(day))
	deltaDays := daysBetween(base, day)

	switch r.Frequency {
	case FrequencyDaily:
		return weekdayMatch && deltaDays%interval == 0
	case FrequencyWeekly:
		if len(weekdays) == 0 {
			weekdays = []int{MondayWeekday(base)}
		}
		if !containsInt(weekdays, MondayWeekday(day)) {
			return false
		}
		return (deltaDays/7)%interval == 0
	case FrequencyMonthly:
		if day.Day() != base.Day() {
			return false
		}
		months := (day.Year()-base.Year())*12 + int(day.Month()) - int(base.Month())
		return weekdayMatch && months%interval == 0
	}
	return false
}

// daysBetween counts calendar days so DST shifts do not skew the result.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

type TaskTemplate struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	Name             string          `json:"name" gorm:"not null;size:150"`
	Description      string          `json:"description" gorm:"type:text"`
	RecurrenceRuleID *uint           `json:"recurrence_rule_id" gorm:"index"`
	RecurrenceRule   *RecurrenceRule `json:"recurrence_rule,omitempty" gorm:"foreignKey:RecurrenceRuleID"`
	IsActive         bool            `json:"is_active"`

	ChecklistItems []TaskTemplateChecklistItem `json:"checklist_items,omitempty" gorm:"foreignKey:TemplateID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TaskTemplateChecklistItem struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	TemplateID uint   `json:"template_id" gorm:"not null;index"`
	Label      string `json:"label" gorm:"not null;size:200"`
	Order      int    `json:"order" gorm:"column:sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
	TaskCanceled   TaskStatus = "CANCELED"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone, TaskCanceled:
		return true
	}
	return false
}

type Task struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Title        string     `json:"title" gorm:"not null;size:200"`
	Description  string     `json:"description" gorm:"type:text"`
	Status       TaskStatus `json:"status" gorm:"size:20;not null;index"`
	AssignedToID *uint      `json:"assigned_to_id" gorm:"index"`
	AssignedTo   *User      `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
	CreatedByID  *uint      `json:"created_by_id"`
	DueDate      *time.Time `json:"due_date"`
	TemplateID   *uint      `json:"template_id" gorm:"index:idx_task_template_day"`
	// ScheduledFor is the day a recurring template generated this task.
	ScheduledFor *time.Time `json:"scheduled_for" gorm:"index:idx_task_template_day"`

	ChecklistItems []TaskChecklistItem `json:"checklist_items,omitempty" gorm:"foreignKey:TaskID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TaskChecklistItem struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	TaskID uint   `json:"task_id" gorm:"not null;index"`
	Label  string `json:"label" gorm:"not null;size:200"`
	IsDone bool   `json:"is_done"`
	Order  int    `json:"order" gorm:"column:sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
