package services

import (
	"log/slog"

	"github.com/SAP-F-2025/backoffice-service/internal/cache"
	"github.com/SAP-F-2025/backoffice-service/internal/config"
	"github.com/SAP-F-2025/backoffice-service/internal/events"
	"github.com/SAP-F-2025/backoffice-service/internal/notify"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

// ServiceManager exposes every service of the back office
type ServiceManager interface {
	User() UserService
	Client() ClientService
	Catalog() CatalogService
	Activity() ActivityService
	Loyverse() LoyverseService
	Inventory() InventoryService
	Task() TaskService
	Content() ContentService
	Wig() WigService

	Course() CourseService
	Completion() CompletionService
	Progress() ProgressService
	Quiz() QuizService
	Assignment() AssignmentService
	Badge() BadgeService
	Certificate() CertificateService
	Export() ExportService
	Notifications() NotificationEventService
}

// Dependencies are the collaborators the services are built from. Cache may
// be nil, in which case course outlines are always read from the database.
type Dependencies struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Mailer    notify.Mailer
	Tokens    TokenIssuer
	Receipts  ReceiptFetcher
	Config    *config.Config
	Logger    *slog.Logger
	Validator *validator.Validator
}

type serviceManager struct {
	user          UserService
	client        ClientService
	catalog       CatalogService
	activity      ActivityService
	loyverse      LoyverseService
	inventory     InventoryService
	task          TaskService
	content       ContentService
	wig           WigService
	course        CourseService
	completion    CompletionService
	progress      ProgressService
	quiz          QuizService
	assignment    AssignmentService
	badge         BadgeService
	certificate   CertificateService
	export        ExportService
	notifications NotificationEventService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	v := deps.Validator
	if v == nil {
		v = validator.New()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NewMockEventPublisher(logger)
	}
	mailer := deps.Mailer
	if mailer == nil {
		mailer = notify.NewConsoleMailer(logger)
	}

	notifications := NewNotificationEventService(deps.Repo, publisher, mailer, logger)
	badges := NewBadgeService(deps.Repo, notifications, logger)

	return &serviceManager{
		user:          NewUserService(deps.Repo, deps.Tokens, logger, v),
		client:        NewClientService(deps.Repo, logger, v),
		catalog:       NewCatalogService(deps.Repo, logger, v),
		activity:      NewActivityService(deps.Repo, notifications, logger, v),
		loyverse:      NewLoyverseService(deps.Repo, deps.Receipts, cfg.Loyverse.Token, logger),
		inventory:     NewInventoryService(deps.Repo, notifications, logger, v),
		task:          NewTaskService(deps.Repo, logger, v),
		content:       NewContentService(deps.Repo, logger, v),
		wig:           NewWigService(deps.Repo, logger, v),
		course:        NewCourseService(deps.Repo, deps.Cache, logger, v),
		completion:    NewCompletionService(deps.Repo, logger),
		progress:      NewProgressService(deps.Repo, notifications, logger),
		quiz:          NewQuizService(deps.Repo, notifications, logger, v),
		assignment:    NewAssignmentService(deps.Repo, badges, notifications, logger, v),
		badge:         badges,
		certificate:   NewCertificateService(deps.Repo, notifications, logger, cfg.Certificates),
		export:        NewExportService(deps.Repo, logger),
		notifications: notifications,
	}
}

func (m *serviceManager) User() UserService                       { return m.user }
func (m *serviceManager) Client() ClientService                   { return m.client }
func (m *serviceManager) Catalog() CatalogService                 { return m.catalog }
func (m *serviceManager) Activity() ActivityService               { return m.activity }
func (m *serviceManager) Loyverse() LoyverseService               { return m.loyverse }
func (m *serviceManager) Inventory() InventoryService             { return m.inventory }
func (m *serviceManager) Task() TaskService                       { return m.task }
func (m *serviceManager) Content() ContentService                 { return m.content }
func (m *serviceManager) Wig() WigService                         { return m.wig }
func (m *serviceManager) Course() CourseService                   { return m.course }
func (m *serviceManager) Completion() CompletionService           { return m.completion }
func (m *serviceManager) Progress() ProgressService               { return m.progress }
func (m *serviceManager) Quiz() QuizService                       { return m.quiz }
func (m *serviceManager) Assignment() AssignmentService           { return m.assignment }
func (m *serviceManager) Badge() BadgeService                     { return m.badge }
func (m *serviceManager) Certificate() CertificateService         { return m.certificate }
func (m *serviceManager) Export() ExportService                   { return m.export }
func (m *serviceManager) Notifications() NotificationEventService { return m.notifications }
