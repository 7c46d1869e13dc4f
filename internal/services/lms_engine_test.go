package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/events"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

type courseFixture struct {
	course  *models.Course
	module  *models.Module
	lessons []*models.Lesson
}

func (e *testEnv) buildCourse(t *testing.T, title string, lessons int) *courseFixture {
	t.Helper()
	ctx := context.Background()
	svc := e.services.Course()

	course, err := svc.CreateCourse(ctx, &CourseRequest{Title: title, DurationWeeks: 4}, owner)
	require.NoError(t, err)
	module, err := svc.CreateModule(ctx, &ModuleRequest{CourseID: course.ID, WeekNumber: 1, Title: "Semaine 1"}, owner)
	require.NoError(t, err)

	fixture := &courseFixture{course: course, module: module}
	for i := 0; i < lessons; i++ {
		lesson, err := svc.CreateLesson(ctx, &LessonRequest{
			ModuleID:   module.ID,
			Title:      "Lesson",
			LessonType: models.LessonTypeCourse,
			Order:      i + 1,
		}, owner)
		require.NoError(t, err)
		fixture.lessons = append(fixture.lessons, lesson)
	}
	return fixture
}

func (e *testEnv) enroll(t *testing.T, username string, course *models.Course) (*models.Enrollment, Actor) {
	t.Helper()
	learner := e.createUser(t, username, models.RoleStaff)
	enrollment, err := e.services.Progress().Enroll(context.Background(), learner.ID, course.ID)
	require.NoError(t, err)
	return enrollment, Actor{UserID: learner.ID, Role: learner.Role}
}

func (e *testEnv) mcqQuiz(t *testing.T, lesson *models.Lesson, maxAttempts int) (*models.Quiz, *models.Question) {
	t.Helper()
	ctx := context.Background()
	quiz, err := e.services.Course().CreateQuiz(ctx, &QuizRequest{
		LessonID:     &lesson.ID,
		Title:        "Hygiène",
		PassingScore: floatPtr(50),
		MaxAttempts:  intPtr(maxAttempts),
	}, owner)
	require.NoError(t, err)

	question, err := e.services.Course().CreateQuestion(ctx, &QuestionRequest{
		QuizID: quiz.ID,
		Type:   models.QuestionMCQ,
		Prompt: "Température de stérilisation ?",
		Points: 2,
		Choices: []ChoiceRequest{
			{Text: "180°C", IsCorrect: true},
			{Text: "60°C"},
		},
	}, owner)
	require.NoError(t, err)
	require.Len(t, question.Choices, 2)
	return quiz, question
}

func answerWith(question *models.Question, choiceIdx int) *QuizAttemptRequest {
	choiceID := question.Choices[choiceIdx].ID
	return &QuizAttemptRequest{Answers: []QuizAnswerInput{{QuestionID: question.ID, SelectedChoiceID: &choiceID}}}
}

func TestScoreQuizAttempt_GradesMultipleChoice(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Onglerie", 1)
	quiz, question := env.mcqQuiz(t, fixture.lessons[0], 0)
	enrollment, learner := env.enroll(t, "lea", fixture.course)

	submission, err := env.services.Quiz().ScoreQuizAttempt(ctx, enrollment.ID, quiz.ID, answerWith(question, 0), learner)
	require.NoError(t, err)
	assert.Equal(t, 1, submission.AttemptNumber)
	assert.Equal(t, 2.0, submission.Score)
	assert.Equal(t, 2.0, submission.MaxScore)
	assert.True(t, submission.Passed)

	submission, err = env.services.Quiz().ScoreQuizAttempt(ctx, enrollment.ID, quiz.ID, answerWith(question, 1), learner)
	require.NoError(t, err)
	assert.Equal(t, 2, submission.AttemptNumber)
	assert.Equal(t, 0.0, submission.Score)
	assert.False(t, submission.Passed)

	assert.Len(t, env.publisher.EventsOfType(events.EventQuizSubmitted), 2)
}

func TestScoreQuizAttempt_AttemptLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Coloration", 1)
	quiz, question := env.mcqQuiz(t, fixture.lessons[0], 2)
	enrollment, learner := env.enroll(t, "maya", fixture.course)

	for i := 0; i < 2; i++ {
		_, err := env.services.Quiz().ScoreQuizAttempt(ctx, enrollment.ID, quiz.ID, answerWith(question, 1), learner)
		require.NoError(t, err)
	}

	_, err := env.services.Quiz().ScoreQuizAttempt(ctx, enrollment.ID, quiz.ID, answerWith(question, 0), learner)
	assert.ErrorIs(t, err, ErrQuizAttemptLimitExceeded)
	assert.True(t, IsValidation(err))
}

func TestScoreQuizAttempt_RejectsOtherLearner(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Barbier", 1)
	quiz, question := env.mcqQuiz(t, fixture.lessons[0], 0)
	enrollment, _ := env.enroll(t, "ines", fixture.course)
	_, intruder := env.enroll(t, "noah", fixture.course)

	_, err := env.services.Quiz().ScoreQuizAttempt(ctx, enrollment.ID, quiz.ID, answerWith(question, 0), intruder)
	assert.True(t, IsUnauthorized(err))
}

func TestModuleCompletion_RequiresLessonsAndApprovedAssignment(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Accueil client", 2)
	enrollment, learner := env.enroll(t, "sarah", fixture.course)

	assignment, err := env.services.Course().CreateAssignment(ctx, &AssignmentRequest{
		ModuleID: &fixture.module.ID,
		Title:    "Mise en situation",
	}, owner)
	require.NoError(t, err)

	_, err = env.services.Progress().MarkLessonViewed(ctx, enrollment.ID, fixture.lessons[0].ID, learner)
	require.NoError(t, err)

	completed, err := env.services.Completion().IsModuleCompleted(ctx, enrollment.ID, fixture.module.ID)
	require.NoError(t, err)
	assert.False(t, completed, "one lesson left")

	_, err = env.services.Progress().MarkLessonViewed(ctx, enrollment.ID, fixture.lessons[1].ID, learner)
	require.NoError(t, err)

	completed, err = env.services.Completion().IsModuleCompleted(ctx, enrollment.ID, fixture.module.ID)
	require.NoError(t, err)
	assert.False(t, completed, "assignment not approved yet")

	submission, err := env.services.Assignment().SubmitAssignment(ctx, enrollment.ID, assignment.ID, &SubmitAssignmentRequest{
		ResponseText: "Compte rendu",
	}, learner)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentSubmitted, submission.Status)

	completed, err = env.services.Completion().IsModuleCompleted(ctx, enrollment.ID, fixture.module.ID)
	require.NoError(t, err)
	assert.False(t, completed, "submitted is not approved")

	_, err = env.services.Assignment().ReviewSubmission(ctx, submission.ID, &ReviewSubmissionRequest{
		Status: models.AssignmentApproved,
	}, owner)
	require.NoError(t, err)

	completed, err = env.services.Completion().IsModuleCompleted(ctx, enrollment.ID, fixture.module.ID)
	require.NoError(t, err)
	assert.True(t, completed)

	// no final assessment exists, so the course itself stays open
	courseDone, err := env.services.Completion().IsCourseCompleted(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.False(t, courseDone)
}

func TestReviewSubmission_RequiresSupervisor(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Massage", 1)
	enrollment, learner := env.enroll(t, "jade", fixture.course)

	assignment, err := env.services.Course().CreateAssignment(ctx, &AssignmentRequest{
		LessonID: &fixture.lessons[0].ID,
		Title:    "Protocole",
	}, owner)
	require.NoError(t, err)

	submission, err := env.services.Assignment().SubmitAssignment(ctx, enrollment.ID, assignment.ID, &SubmitAssignmentRequest{}, learner)
	require.NoError(t, err)

	_, err = env.services.Assignment().ReviewSubmission(ctx, submission.ID, &ReviewSubmissionRequest{
		Status: models.AssignmentApproved,
	}, learner)
	assert.True(t, IsUnauthorized(err))
}

func TestAwardBadges_Idempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Épilation", 1)
	quiz, question := env.mcqQuiz(t, fixture.lessons[0], 0)
	enrollment, learner := env.enroll(t, "lina", fixture.course)

	_, err := env.services.Course().CreateBadge(ctx, &BadgeRequest{
		Name:     "Sans faute",
		RuleType: models.BadgeQuizScore,
		CourseID: &fixture.course.ID,
		MinScore: 100,
	}, owner)
	require.NoError(t, err)

	awards, err := env.services.Badge().AwardBadgesForEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Empty(t, awards, "no attempt yet")

	_, err = env.services.Quiz().ScoreQuizAttempt(ctx, enrollment.ID, quiz.ID, answerWith(question, 0), learner)
	require.NoError(t, err)

	awards, err = env.services.Badge().AwardBadgesForEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	require.Len(t, awards, 1)

	awards, err = env.services.Badge().AwardBadgesForEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Empty(t, awards, "already awarded")

	all, err := env.services.Badge().ListAwards(ctx, learner.UserID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, env.publisher.EventsOfType(events.EventBadgeAwarded), 1)
}

func TestSubmitAssignment_KPIEvidenceOutOfRange(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Vente", 1)
	enrollment, learner := env.enroll(t, "eva", fixture.course)

	assignment, err := env.services.Course().CreateAssignment(ctx, &AssignmentRequest{
		ModuleID:            &fixture.module.ID,
		Title:               "Objectif panier moyen",
		RequiresKPIEvidence: true,
		KPIRequirements: []KPIRequirementRequest{{
			Label:      "Panier moyen",
			Unit:       "EUR",
			MinValue:   floatPtr(10),
			MaxValue:   floatPtr(500),
			IsRequired: true,
		}},
	}, owner)
	require.NoError(t, err)
	require.Len(t, assignment.KPIRequirements, 1)
	requirementID := assignment.KPIRequirements[0].ID

	_, err = env.services.Assignment().SubmitAssignment(ctx, enrollment.ID, assignment.ID, &SubmitAssignmentRequest{
		Evidence: []KPIEvidenceInput{{RequirementID: requirementID, Value: 900, ProofURL: "https://photos.test/ticket.jpg"}},
	}, learner)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = env.services.Assignment().SubmitAssignment(ctx, enrollment.ID, assignment.ID, &SubmitAssignmentRequest{
		Evidence: []KPIEvidenceInput{{RequirementID: requirementID, Value: 42}},
	}, learner)
	require.Error(t, err, "required evidence needs a proof")
	assert.True(t, IsValidation(err))

	submission, err := env.services.Assignment().SubmitAssignment(ctx, enrollment.ID, assignment.ID, &SubmitAssignmentRequest{
		Evidence: []KPIEvidenceInput{{RequirementID: requirementID, Value: 42, ProofFile: "uploads/ticket.jpg"}},
	}, learner)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentSubmitted, submission.Status)
}

func TestValidateKPIEvidence(t *testing.T) {
	assignment := &models.Assignment{
		RequiresKPIEvidence: true,
		KPIRequirements: []models.AssignmentKPIRequirement{
			{ID: 1, Label: "Clients", MinValue: floatPtr(1), IsRequired: true},
			{ID: 2, Label: "Avis", MaxValue: floatPtr(5)},
		},
	}

	tests := []struct {
		name     string
		evidence []*models.AssignmentKPIEvidence
		wantErrs int
	}{
		{"missing evidence", nil, 2},
		{"within range with proof", []*models.AssignmentKPIEvidence{
			{RequirementID: 1, Value: 3, ProofURL: "https://x.test/a"},
			{RequirementID: 2, Value: 4},
		}, 0},
		{"optional row out of range", []*models.AssignmentKPIEvidence{
			{RequirementID: 1, Value: 3, ProofFile: "a.jpg"},
			{RequirementID: 2, Value: 6},
		}, 1},
		{"foreign requirement", []*models.AssignmentKPIEvidence{
			{RequirementID: 1, Value: 3, ProofFile: "a.jpg"},
			{RequirementID: 9, Value: 1},
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateKPIEvidence(assignment, tt.evidence)
			assert.Len(t, errs, tt.wantErrs)
		})
	}
}

func TestValidateKPIEvidence_EvidenceOptional(t *testing.T) {
	assignment := &models.Assignment{
		KPIRequirements: []models.AssignmentKPIRequirement{
			{ID: 1, Label: "Clients", MinValue: floatPtr(1), MaxValue: floatPtr(20), IsRequired: true},
		},
	}

	assert.Empty(t, ValidateKPIEvidence(assignment, nil), "no proof needed")
	assert.Empty(t, ValidateKPIEvidence(assignment, []*models.AssignmentKPIEvidence{{RequirementID: 1, Value: 5}}))

	errs := ValidateKPIEvidence(assignment, []*models.AssignmentKPIEvidence{{RequirementID: 1, Value: 40}})
	require.Len(t, errs, 1, "bounds still apply")
	assert.Equal(t, "kpi_evidence", errs[0].Field)
}
