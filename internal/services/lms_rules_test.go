package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/events"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

func TestScoreAnswer(t *testing.T) {
	mcq := &models.Question{
		Type:   models.QuestionMCQ,
		Points: 2,
		Choices: []models.Choice{
			{ID: 10, IsCorrect: true},
			{ID: 11},
		},
	}
	short := func(correct string, caseSensitive bool) *models.Question {
		return &models.Question{Type: models.QuestionShort, Points: 3, CorrectText: correct, CaseSensitive: caseSensitive}
	}
	manual := &models.Question{Type: models.QuestionShort, Points: 3, ManualReviewRequired: true}
	choice := func(id uint) *uint { return &id }

	tests := []struct {
		name        string
		question    *models.Question
		answer      *models.SubmissionAnswer
		wantScore   float64
		wantCorrect bool
	}{
		{"mcq correct choice", mcq, &models.SubmissionAnswer{SelectedChoiceID: choice(10)}, 2, true},
		{"mcq wrong choice", mcq, &models.SubmissionAnswer{SelectedChoiceID: choice(11)}, 0, false},
		{"mcq foreign choice", mcq, &models.SubmissionAnswer{SelectedChoiceID: choice(99)}, 0, false},
		{"mcq no choice", mcq, &models.SubmissionAnswer{}, 0, false},
		{"short trims both sides", short(" Keratine ", false), &models.SubmissionAnswer{TextAnswer: "  keratine\n"}, 3, true},
		{"short ignores case", short("Keratine", false), &models.SubmissionAnswer{TextAnswer: "KERATINE"}, 3, true},
		{"short case sensitive mismatch", short("Keratine", true), &models.SubmissionAnswer{TextAnswer: "keratine"}, 0, false},
		{"short case sensitive match", short("Keratine", true), &models.SubmissionAnswer{TextAnswer: " Keratine"}, 3, true},
		{"short without expected text", short("", false), &models.SubmissionAnswer{TextAnswer: "anything"}, 0, false},
		{"manual before review", manual, &models.SubmissionAnswer{TextAnswer: "essai"}, 0, false},
		{"manual keeps reviewer score", manual, &models.SubmissionAnswer{ManualScored: true, ScoreAwarded: 1.5}, 1.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, correct := scoreAnswer(tt.question, tt.answer)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantCorrect, correct)
		})
	}
}

func TestComputeScore_SameAnswersSameResult(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Soins visage", 1)
	quiz, question := env.mcqQuiz(t, fixture.lessons[0], 0)
	enrollment, learner := env.enroll(t, "lou", fixture.course)

	submitted, err := env.services.Quiz().ScoreQuizAttempt(ctx, enrollment.ID, quiz.ID, answerWith(question, 0), learner)
	require.NoError(t, err)

	first, err := env.services.Quiz().ComputeScore(ctx, submitted.ID)
	require.NoError(t, err)
	second, err := env.services.Quiz().ComputeScore(ctx, submitted.ID)
	require.NoError(t, err)

	for _, s := range []*models.Submission{first, second} {
		assert.Equal(t, submitted.Score, s.Score)
		assert.Equal(t, submitted.MaxScore, s.MaxScore)
		assert.Equal(t, submitted.Passed, s.Passed)
		assert.Equal(t, submitted.AttemptNumber, s.AttemptNumber)
	}
	require.Len(t, second.Answers, 1)
	assert.True(t, second.Answers[0].IsCorrect)

	_, err = env.services.Quiz().ComputeScore(ctx, 9999)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestReviewQuizAnswer_ManualScoreIsKept(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Conseil client", 1)
	quiz, mcq := env.mcqQuiz(t, fixture.lessons[0], 0)
	enrollment, learner := env.enroll(t, "zoe", fixture.course)

	open, err := env.services.Course().CreateQuestion(ctx, &QuestionRequest{
		QuizID:               quiz.ID,
		Type:                 models.QuestionShort,
		Prompt:               "Décrivez le diagnostic capillaire",
		Points:               3,
		ManualReviewRequired: true,
	}, owner)
	require.NoError(t, err)

	choiceID := mcq.Choices[0].ID
	submission, err := env.services.Quiz().ScoreQuizAttempt(ctx, enrollment.ID, quiz.ID, &QuizAttemptRequest{Answers: []QuizAnswerInput{
		{QuestionID: mcq.ID, SelectedChoiceID: &choiceID},
		{QuestionID: open.ID, TextAnswer: "Observation puis test de porosité"},
	}}, learner)
	require.NoError(t, err)
	assert.Equal(t, 2.0, submission.Score)
	assert.Equal(t, 5.0, submission.MaxScore)
	assert.False(t, submission.Passed)

	var openAnswerID, mcqAnswerID uint
	for _, answer := range submission.Answers {
		switch answer.QuestionID {
		case open.ID:
			openAnswerID = answer.ID
		case mcq.ID:
			mcqAnswerID = answer.ID
		}
	}
	require.NotZero(t, openAnswerID)
	require.NotZero(t, mcqAnswerID)

	pending, err := env.services.Quiz().ListPendingReviews(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, openAnswerID, pending[0].ID)

	_, err = env.services.Quiz().ReviewQuizAnswer(ctx, openAnswerID, &ReviewAnswerRequest{Score: 2}, learner)
	assert.True(t, IsUnauthorized(err))

	_, err = env.services.Quiz().ReviewQuizAnswer(ctx, openAnswerID, &ReviewAnswerRequest{Score: 4}, manager)
	require.Error(t, err, "above the question's points")
	assert.True(t, IsValidation(err))

	_, err = env.services.Quiz().ReviewQuizAnswer(ctx, mcqAnswerID, &ReviewAnswerRequest{Score: 1}, manager)
	assert.ErrorIs(t, err, ErrAnswerNotManual)

	reviewed, err := env.services.Quiz().ReviewQuizAnswer(ctx, openAnswerID, &ReviewAnswerRequest{Score: 2}, manager)
	require.NoError(t, err)
	assert.Equal(t, 4.0, reviewed.Score)
	assert.True(t, reviewed.Passed)

	rescored, err := env.services.Quiz().ComputeScore(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, rescored.Score, "automatic regrading keeps the reviewer's score")

	pending, err = env.services.Quiz().ListPendingReviews(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMarkLessonViewed_CompletedLessonStaysCompleted(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Lissage", 1)
	lesson := fixture.lessons[0]
	enrollment, learner := env.enroll(t, "ada", fixture.course)

	first, err := env.services.Progress().MarkLessonViewed(ctx, enrollment.ID, lesson.ID, learner)
	require.NoError(t, err)
	require.True(t, first.Completed)
	require.NotNil(t, first.CompletedAt)

	// a required quiz added afterwards does not reopen the lesson
	env.mcqQuiz(t, lesson, 0)

	second, err := env.services.Progress().MarkLessonViewed(ctx, enrollment.ID, lesson.ID, learner)
	require.NoError(t, err)
	assert.False(t, second.QuizPassed)
	assert.True(t, second.Completed)
	require.NotNil(t, second.CompletedAt)
	assert.WithinDuration(t, *first.CompletedAt, *second.CompletedAt, time.Millisecond)
}

func TestMarkLessonViewed_RequiredQuizGatesLesson(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Extensions", 1)
	lesson := fixture.lessons[0]
	quiz, question := env.mcqQuiz(t, lesson, 0)
	enrollment, learner := env.enroll(t, "mia", fixture.course)

	progress, err := env.services.Progress().MarkLessonViewed(ctx, enrollment.ID, lesson.ID, learner)
	require.NoError(t, err)
	assert.False(t, progress.Completed, "quiz not passed yet")

	_, err = env.services.Quiz().ScoreQuizAttempt(ctx, enrollment.ID, quiz.ID, answerWith(question, 0), learner)
	require.NoError(t, err)

	refreshed, err := env.services.Progress().RefreshEnrollmentProgress(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, refreshed.ProgressPercent)
	assert.Equal(t, models.EnrollmentInProgress, refreshed.Status)
}

func TestCompletionRule_GatesModule(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Tresses", 1)
	enrollment, learner := env.enroll(t, "nora", fixture.course)

	_, err := env.services.Progress().MarkLessonViewed(ctx, enrollment.ID, fixture.lessons[0].ID, learner)
	require.NoError(t, err)

	first := env.moduleAssignment(t, fixture, "Tresse africaine", false)
	second := env.moduleAssignment(t, fixture, "Tresse collée", false)
	env.approve(t, env.submit(t, enrollment.ID, first.ID, learner, nil))

	completed, err := env.services.Completion().IsModuleCompleted(ctx, enrollment.ID, fixture.module.ID)
	require.NoError(t, err)
	assert.True(t, completed, "one approved assignment is enough without a rule")

	_, err = env.services.Course().SaveCompletionRule(ctx, &CompletionRuleRequest{
		ModuleID:                   &fixture.module.ID,
		RequireAssignmentsApproved: true,
		MinQuizScore:               60,
	}, owner)
	require.NoError(t, err)

	completed, err = env.services.Completion().IsModuleCompleted(ctx, enrollment.ID, fixture.module.ID)
	require.NoError(t, err)
	assert.False(t, completed, "every assignment must be approved")

	env.approve(t, env.submit(t, enrollment.ID, second.ID, learner, nil))

	completed, err = env.services.Completion().IsModuleCompleted(ctx, enrollment.ID, fixture.module.ID)
	require.NoError(t, err)
	assert.False(t, completed, "no quiz attempt reaches 60%")

	quiz, err := env.services.Course().CreateQuiz(ctx, &QuizRequest{
		ModuleID:                &fixture.module.ID,
		Title:                   "Bilan",
		IsRequiredForCompletion: boolPtr(false),
	}, owner)
	require.NoError(t, err)
	question, err := env.services.Course().CreateQuestion(ctx, &QuestionRequest{
		QuizID: quiz.ID,
		Type:   models.QuestionTrueFalse,
		Prompt: "Une tresse collée se garde six mois ?",
		Points: 1,
		Choices: []ChoiceRequest{
			{Text: "Vrai"},
			{Text: "Faux", IsCorrect: true},
		},
	}, owner)
	require.NoError(t, err)

	_, err = env.services.Quiz().ScoreQuizAttempt(ctx, enrollment.ID, quiz.ID, answerWith(question, 0), learner)
	require.NoError(t, err)
	completed, err = env.services.Completion().IsModuleCompleted(ctx, enrollment.ID, fixture.module.ID)
	require.NoError(t, err)
	assert.False(t, completed)

	_, err = env.services.Quiz().ScoreQuizAttempt(ctx, enrollment.ID, quiz.ID, answerWith(question, 1), learner)
	require.NoError(t, err)
	completed, err = env.services.Completion().IsModuleCompleted(ctx, enrollment.ID, fixture.module.ID)
	require.NoError(t, err)
	assert.True(t, completed)
}

func TestCourseCompletion_ApprovedFinalAssessment(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "CAP Coiffure", 1)
	enrollment, learner := env.enroll(t, "ines", fixture.course)

	final := env.moduleAssignment(t, fixture, "Examen blanc", true)

	_, err := env.services.Progress().MarkLessonViewed(ctx, enrollment.ID, fixture.lessons[0].ID, learner)
	require.NoError(t, err)
	submission := env.submit(t, enrollment.ID, final.ID, learner, nil)

	done, err := env.services.Completion().IsCourseCompleted(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.False(t, done, "final assessment not approved yet")
	assert.Empty(t, env.publisher.EventsOfType(events.EventEnrollmentCompleted))

	env.approve(t, submission)

	current, err := env.services.Progress().GetEnrollment(ctx, enrollment.ID, learner)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, current.Status)
	assert.Equal(t, 100.0, current.ProgressPercent)
	assert.NotNil(t, current.CompletedAt)

	completedEvents := env.publisher.EventsOfType(events.EventEnrollmentCompleted)
	require.Len(t, completedEvents, 1)

	// later refreshes do not announce the completion again
	_, err = env.services.Progress().RefreshEnrollmentProgress(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Len(t, env.publisher.EventsOfType(events.EventEnrollmentCompleted), 1)

	cert, err := env.services.Certificate().IssueCertificate(ctx, enrollment.ID, learner)
	require.NoError(t, err)
	assert.Equal(t, CertificateNumber("CERT", fixture.course.ID, enrollment.ID, cert.IssuedAt), cert.CertificateNumber)
}

func TestAwardBadges_RuleTypes(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Vente conseil", 1)
	enrollment, learner := env.enroll(t, "lena", fixture.course)

	final, err := env.services.Course().CreateAssignment(ctx, &AssignmentRequest{
		ModuleID:            &fixture.module.ID,
		Title:               "Semaine en boutique",
		IsFinalAssessment:   true,
		RequiresKPIEvidence: true,
		KPIRequirements: []KPIRequirementRequest{{
			Label:      "Panier Moyen",
			Unit:       "EUR",
			IsRequired: true,
		}},
	}, owner)
	require.NoError(t, err)
	requirementID := final.KPIRequirements[0].ID

	badge := func(req BadgeRequest) *models.Badge {
		created, err := env.services.Course().CreateBadge(ctx, &req, owner)
		require.NoError(t, err)
		return created
	}
	courseBadge := badge(BadgeRequest{Name: "Diplômée", RuleType: models.BadgeCourseCompleted, CourseID: &fixture.course.ID})
	moduleBadge := badge(BadgeRequest{Name: "Semaine 1", RuleType: models.BadgeModuleCompleted, ModuleID: &fixture.module.ID})
	assignmentBadge := badge(BadgeRequest{Name: "Terrain", RuleType: models.BadgeAssignmentApproved, AssignmentID: &final.ID})
	kpiBadge := badge(BadgeRequest{Name: "Panier 40", RuleType: models.BadgeKPITarget, KPILabel: "panier moyen", KPIMinValue: floatPtr(40)})
	badge(BadgeRequest{Name: "Panier 100", RuleType: models.BadgeKPITarget, KPILabel: "PANIER MOYEN", KPIMinValue: floatPtr(100)})
	badge(BadgeRequest{Name: "Inactif", RuleType: models.BadgeCourseCompleted, IsActive: boolPtr(false)})

	_, err = env.services.Progress().MarkLessonViewed(ctx, enrollment.ID, fixture.lessons[0].ID, learner)
	require.NoError(t, err)
	submission := env.submit(t, enrollment.ID, final.ID, learner, []KPIEvidenceInput{{
		RequirementID: requirementID,
		Value:         42,
		ProofURL:      "https://photos.test/caisse.jpg",
	}})

	awards, err := env.services.Badge().AwardBadgesForEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	require.Len(t, awards, 1, "only the KPI target holds before review")
	assert.Equal(t, kpiBadge.ID, awards[0].BadgeID)

	// approval evaluates badges again
	env.approve(t, submission)

	all, err := env.services.Badge().ListAwards(ctx, learner.UserID)
	require.NoError(t, err)
	got := make([]uint, 0, len(all))
	for _, award := range all {
		got = append(got, award.BadgeID)
	}
	assert.ElementsMatch(t, []uint{courseBadge.ID, moduleBadge.ID, assignmentBadge.ID, kpiBadge.ID}, got)
	assert.Len(t, env.publisher.EventsOfType(events.EventBadgeAwarded), 4)

	awards, err = env.services.Badge().AwardBadgesForEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Empty(t, awards)
}

func (e *testEnv) moduleAssignment(t *testing.T, fixture *courseFixture, title string, final bool) *models.Assignment {
	t.Helper()
	assignment, err := e.services.Course().CreateAssignment(context.Background(), &AssignmentRequest{
		ModuleID:          &fixture.module.ID,
		Title:             title,
		IsFinalAssessment: final,
	}, owner)
	require.NoError(t, err)
	return assignment
}

func (e *testEnv) submit(t *testing.T, enrollmentID, assignmentID uint, learner Actor, evidence []KPIEvidenceInput) *models.AssignmentSubmission {
	t.Helper()
	submission, err := e.services.Assignment().SubmitAssignment(context.Background(), enrollmentID, assignmentID, &SubmitAssignmentRequest{
		ResponseText: "Compte rendu",
		Evidence:     evidence,
	}, learner)
	require.NoError(t, err)
	return submission
}

func (e *testEnv) approve(t *testing.T, submission *models.AssignmentSubmission) {
	t.Helper()
	_, err := e.services.Assignment().ReviewSubmission(context.Background(), submission.ID, &ReviewSubmissionRequest{
		Status: models.AssignmentApproved,
	}, owner)
	require.NoError(t, err)
}
