// Package seed loads a YAML description of the salon catalog and the training
// courses and creates whatever is missing through the services.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
)

type Catalog struct {
	Users      []UserSeed     `yaml:"users"`
	Categories []CategorySeed `yaml:"categories"`
	Inventory  []ItemSeed     `yaml:"inventory"`
	Courses    []CourseSeed   `yaml:"courses"`
}

type UserSeed struct {
	Username string          `yaml:"username"`
	FullName string          `yaml:"full_name"`
	Email    string          `yaml:"email"`
	Password string          `yaml:"password"`
	Role     models.UserRole `yaml:"role"`
}

type CategorySeed struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Services    []ServiceSeed `yaml:"services"`
}

type ServiceSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
}

type ItemSeed struct {
	Name     string              `yaml:"name"`
	SKU      string              `yaml:"sku"`
	Category models.ItemCategory `yaml:"category"`
	MinStock int                 `yaml:"min_stock"`
	Quantity int                 `yaml:"quantity"`
}

type CourseSeed struct {
	Title         string       `yaml:"title"`
	Slug          string       `yaml:"slug"`
	Description   string       `yaml:"description"`
	DurationWeeks int          `yaml:"duration_weeks"`
	Modules       []ModuleSeed `yaml:"modules"`
}

type ModuleSeed struct {
	Week      int          `yaml:"week"`
	Title     string       `yaml:"title"`
	Objective string       `yaml:"objective"`
	Lessons   []LessonSeed `yaml:"lessons"`
}

type LessonSeed struct {
	Title    string            `yaml:"title"`
	Type     models.LessonType `yaml:"type"`
	Content  string            `yaml:"content"`
	Duration int               `yaml:"duration_minutes"`
	Quiz     *QuizSeed         `yaml:"quiz"`
}

type QuizSeed struct {
	Title        string         `yaml:"title"`
	PassingScore *float64       `yaml:"passing_score"`
	MaxAttempts  *int           `yaml:"max_attempts"`
	Questions    []QuestionSeed `yaml:"questions"`
}

type QuestionSeed struct {
	Type        models.QuestionType `yaml:"type"`
	Prompt      string              `yaml:"prompt"`
	Points      int                 `yaml:"points"`
	CorrectText string              `yaml:"correct_text"`
	Choices     []ChoiceSeed        `yaml:"choices"`
}

type ChoiceSeed struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

// Result counts what was created; existing records are skipped
type Result struct {
	Users      int
	Categories int
	Services   int
	Items      int
	Courses    int
	Lessons    int
	Questions  int
	Skipped    int
}

// Load decodes a catalog, rejecting unknown keys so typos surface early
func Load(r io.Reader) (*Catalog, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var catalog Catalog
	if err := decoder.Decode(&catalog); err != nil {
		if errors.Is(err, io.EOF) {
			return &catalog, nil
		}
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return &catalog, nil
}

type Seeder struct {
	services services.ServiceManager
	actor    services.Actor
	logger   *slog.Logger
}

func NewSeeder(sm services.ServiceManager, actor services.Actor, logger *slog.Logger) *Seeder {
	return &Seeder{services: sm, actor: actor, logger: logger}
}

// Apply is safe to rerun. Users, categories, services, items and courses
// that already exist are left untouched.
func (s *Seeder) Apply(ctx context.Context, catalog *Catalog) (*Result, error) {
	result := &Result{}

	for _, u := range catalog.Users {
		_, err := s.services.User().Create(ctx, &services.CreateUserRequest{
			Username: u.Username,
			FullName: u.FullName,
			Email:    u.Email,
			Password: u.Password,
			Role:     u.Role,
		})
		if done, err := s.created(err, "user", u.Username, result); err != nil {
			return result, err
		} else if done {
			result.Users++
		}
	}

	if err := s.applyCategories(ctx, catalog.Categories, result); err != nil {
		return result, err
	}
	if err := s.applyInventory(ctx, catalog.Inventory, result); err != nil {
		return result, err
	}
	for i := range catalog.Courses {
		if err := s.applyCourse(ctx, &catalog.Courses[i], result); err != nil {
			return result, err
		}
	}

	s.logger.Info("Seed applied",
		"users", result.Users,
		"categories", result.Categories,
		"services", result.Services,
		"items", result.Items,
		"courses", result.Courses,
		"skipped", result.Skipped,
	)
	return result, nil
}

// created reports whether err means the record was created, treating conflicts as skips
func (s *Seeder) created(err error, kind, name string, result *Result) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case services.IsConflict(err):
		s.logger.Debug("Seed record already exists", "kind", kind, "name", name)
		result.Skipped++
		return false, nil
	default:
		return false, fmt.Errorf("failed to seed %s %q: %w", kind, name, err)
	}
}

func (s *Seeder) applyCategories(ctx context.Context, categories []CategorySeed, result *Result) error {
	if len(categories) == 0 {
		return nil
	}
	existing, err := s.services.Catalog().ListCategories(ctx, false)
	if err != nil {
		return err
	}
	byName := make(map[string]uint, len(existing))
	for _, c := range existing {
		byName[c.Name] = c.ID
	}

	for _, cat := range categories {
		categoryID, ok := byName[cat.Name]
		if ok {
			result.Skipped++
		} else {
			created, err := s.services.Catalog().CreateCategory(ctx, &services.ServiceCategoryRequest{
				Name:        cat.Name,
				Description: cat.Description,
			})
			if err != nil {
				return fmt.Errorf("failed to seed category %q: %w", cat.Name, err)
			}
			categoryID = created.ID
			result.Categories++
		}

		known, err := s.services.Catalog().ListServices(ctx, repositories.ServiceFilters{CategoryID: &categoryID})
		if err != nil {
			return err
		}
		names := make(map[string]bool, len(known))
		for _, svc := range known {
			names[svc.Name] = true
		}

		for _, svc := range cat.Services {
			if names[svc.Name] {
				result.Skipped++
				continue
			}
			price, err := decimal.NewFromString(svc.Price)
			if err != nil {
				return fmt.Errorf("invalid price %q for service %q: %w", svc.Price, svc.Name, err)
			}
			if _, err := s.services.Catalog().CreateService(ctx, &services.ServiceRequest{
				Name:        svc.Name,
				Description: svc.Description,
				CategoryID:  &categoryID,
				BasePrice:   price,
			}); err != nil {
				return fmt.Errorf("failed to seed service %q: %w", svc.Name, err)
			}
			result.Services++
		}
	}
	return nil
}

func (s *Seeder) applyInventory(ctx context.Context, items []ItemSeed, result *Result) error {
	if len(items) == 0 {
		return nil
	}
	existing, err := s.services.Inventory().ListItems(ctx, repositories.InventoryFilters{})
	if err != nil {
		return err
	}
	names := make(map[string]bool, len(existing))
	for _, item := range existing {
		names[item.Name] = true
	}

	for _, it := range items {
		if names[it.Name] {
			result.Skipped++
			continue
		}
		req := &services.InventoryItemRequest{
			Name:     it.Name,
			Category: it.Category,
			MinStock: it.MinStock,
		}
		if it.SKU != "" {
			sku := it.SKU
			req.SKU = &sku
		}

		item, err := s.services.Inventory().CreateItem(ctx, req)
		done, err := s.created(err, "inventory item", it.Name, result)
		if err != nil {
			return err
		}
		if !done {
			continue
		}
		result.Items++

		if it.Quantity > 0 {
			if _, err := s.services.Inventory().RecordMove(ctx, &services.StockMoveRequest{
				ItemID:    item.ID,
				Qty:       it.Quantity,
				Type:      models.StockMoveIn,
				Reference: "seed",
			}, s.actor); err != nil {
				return fmt.Errorf("failed to seed stock for %q: %w", it.Name, err)
			}
		}
	}
	return nil
}

func (s *Seeder) applyCourse(ctx context.Context, cs *CourseSeed, result *Result) error {
	course, err := s.services.Course().CreateCourse(ctx, &services.CourseRequest{
		Title:         cs.Title,
		Slug:          cs.Slug,
		Description:   cs.Description,
		DurationWeeks: cs.DurationWeeks,
	}, s.actor)
	done, err := s.created(err, "course", cs.Title, result)
	if err != nil || !done {
		return err
	}
	result.Courses++

	for mi, ms := range cs.Modules {
		module, err := s.services.Course().CreateModule(ctx, &services.ModuleRequest{
			CourseID:   course.ID,
			WeekNumber: ms.Week,
			Title:      ms.Title,
			Objective:  ms.Objective,
			Order:      mi + 1,
		}, s.actor)
		if err != nil {
			return fmt.Errorf("failed to seed module %q: %w", ms.Title, err)
		}

		for li, ls := range ms.Lessons {
			lesson, err := s.services.Course().CreateLesson(ctx, &services.LessonRequest{
				ModuleID:        module.ID,
				Title:           ls.Title,
				Content:         ls.Content,
				LessonType:      ls.Type,
				DurationMinutes: ls.Duration,
				Order:           li + 1,
			}, s.actor)
			if err != nil {
				return fmt.Errorf("failed to seed lesson %q: %w", ls.Title, err)
			}
			result.Lessons++

			if ls.Quiz != nil {
				if err := s.applyQuiz(ctx, lesson.ID, ls.Quiz, result); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Seeder) applyQuiz(ctx context.Context, lessonID uint, qs *QuizSeed, result *Result) error {
	quiz, err := s.services.Course().CreateQuiz(ctx, &services.QuizRequest{
		LessonID:     &lessonID,
		Title:        qs.Title,
		PassingScore: qs.PassingScore,
		MaxAttempts:  qs.MaxAttempts,
	}, s.actor)
	if err != nil {
		return fmt.Errorf("failed to seed quiz %q: %w", qs.Title, err)
	}

	for qi, q := range qs.Questions {
		req := &services.QuestionRequest{
			QuizID:      quiz.ID,
			Type:        q.Type,
			Prompt:      q.Prompt,
			Points:      q.Points,
			Order:       qi + 1,
			CorrectText: q.CorrectText,
		}
		for ci, c := range q.Choices {
			req.Choices = append(req.Choices, services.ChoiceRequest{Text: c.Text, IsCorrect: c.Correct, Order: ci + 1})
		}
		if _, err := s.services.Course().CreateQuestion(ctx, req, s.actor); err != nil {
			return fmt.Errorf("failed to seed question %q: %w", q.Prompt, err)
		}
		result.Questions++
	}
	return nil
}
