package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type repository struct {
	db *gorm.DB

	user     repositories.UserRepository
	client   repositories.ClientRepository
	service  repositories.ServiceRepository
	activity repositories.ActivityRepository
	loyverse repositories.LoyverseRepository
	stock    repositories.InventoryRepository
	task     repositories.TaskRepository
	content  repositories.ContentRepository
	wig      repositories.WigRepository
	audit    repositories.AuditRepository

	catalog     repositories.CatalogRepository
	quiz        repositories.QuizRepository
	enrollment  repositories.EnrollmentRepository
	submission  repositories.SubmissionRepository
	assignment  repositories.AssignmentRepository
	badge       repositories.BadgeRepository
	certificate repositories.CertificateRepository
}

// NewRepository wires every gorm-backed repository around one connection.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:          db,
		user:        NewUserPostgreSQL(db),
		client:      NewClientPostgreSQL(db),
		service:     NewServicePostgreSQL(db),
		activity:    NewActivityPostgreSQL(db),
		loyverse:    NewLoyversePostgreSQL(db),
		stock:       NewInventoryPostgreSQL(db),
		task:        NewTaskPostgreSQL(db),
		content:     NewContentPostgreSQL(db),
		wig:         NewWigPostgreSQL(db),
		audit:       NewAuditPostgreSQL(db),
		catalog:     NewCatalogPostgreSQL(db),
		quiz:        NewQuizPostgreSQL(db),
		enrollment:  NewEnrollmentPostgreSQL(db),
		submission:  NewSubmissionPostgreSQL(db),
		assignment:  NewAssignmentPostgreSQL(db),
		badge:       NewBadgePostgreSQL(db),
		certificate: NewCertificatePostgreSQL(db),
	}
}

func (r *repository) DB() *gorm.DB { return r.db }

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) User() repositories.UserRepository               { return r.user }
func (r *repository) Client() repositories.ClientRepository           { return r.client }
func (r *repository) Service() repositories.ServiceRepository         { return r.service }
func (r *repository) Activity() repositories.ActivityRepository       { return r.activity }
func (r *repository) Loyverse() repositories.LoyverseRepository       { return r.loyverse }
func (r *repository) Inventory() repositories.InventoryRepository     { return r.stock }
func (r *repository) Task() repositories.TaskRepository               { return r.task }
func (r *repository) Content() repositories.ContentRepository         { return r.content }
func (r *repository) Wig() repositories.WigRepository                 { return r.wig }
func (r *repository) Audit() repositories.AuditRepository             { return r.audit }
func (r *repository) Catalog() repositories.CatalogRepository         { return r.catalog }
func (r *repository) Quiz() repositories.QuizRepository               { return r.quiz }
func (r *repository) Enrollment() repositories.EnrollmentRepository   { return r.enrollment }
func (r *repository) Submission() repositories.SubmissionRepository   { return r.submission }
func (r *repository) Assignment() repositories.AssignmentRepository   { return r.assignment }
func (r *repository) Badge() repositories.BadgeRepository             { return r.badge }
func (r *repository) Certificate() repositories.CertificateRepository { return r.certificate }

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Client{},
		&models.ServiceCategory{},
		&models.Service{},
		&models.LoyverseStore{},
		&models.LoyverseReceipt{},
		&models.Activity{},
		&models.ActivityLine{},
		&models.PaymentLink{},
		&models.InventoryItem{},
		&models.StockMove{},
		&models.StockLevel{},
		&models.RecurrenceRule{},
		&models.TaskTemplate{},
		&models.TaskTemplateChecklistItem{},
		&models.Task{},
		&models.TaskChecklistItem{},
		&models.AuditLog{},
		&models.ContentItem{},
		&models.ContentApproval{},
		&models.ContentMetric{},
		&models.Sequence{},
		&models.WigProduct{},
		&models.CareWig{},
		&models.Course{},
		&models.Module{},
		&models.Lesson{},
		&models.Resource{},
		&models.LearningObjective{},
		&models.CompletionRule{},
		&models.Quiz{},
		&models.Question{},
		&models.Choice{},
		&models.Enrollment{},
		&models.Progress{},
		&models.Submission{},
		&models.SubmissionAnswer{},
		&models.Assignment{},
		&models.AssignmentKPIRequirement{},
		&models.AssignmentSubmission{},
		&models.SubmissionAttachment{},
		&models.SubmissionLink{},
		&models.SubmissionKPI{},
		&models.AssignmentKPIEvidence{},
		&models.Badge{},
		&models.BadgeAward{},
		&models.Certificate{},
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
