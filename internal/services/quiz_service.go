package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

type quizService struct {
	repo          repositories.Repository
	tracker       *progressTracker
	notifications NotificationEventService
	audit         *auditRecorder
	logger        *slog.Logger
	opLogger      *ServiceLogger
	validator     *validator.Validator
}

func NewQuizService(repo repositories.Repository, notifications NotificationEventService, logger *slog.Logger, validator *validator.Validator) QuizService {
	opLogger := NewServiceLogger(logger, LogConfig{Service: "lms", Component: "quiz"})
	return &quizService{
		repo:          repo,
		tracker:       newProgressTracker(repo, newCompletionEvaluator(repo)),
		notifications: notifications,
		audit:         newAuditRecorder(repo, opLogger),
		logger:        logger,
		opLogger:      opLogger,
		validator:     validator,
	}
}

// ScoreQuizAttempt records a new attempt, grades it and refreshes the
// learner's progress in one transaction.
func (s *quizService) ScoreQuizAttempt(ctx context.Context, enrollmentID, quizID uint, req *QuizAttemptRequest, actor Actor) (*models.Submission, error) {
	s.logger.Info("Scoring quiz attempt", "enrollment_id", enrollmentID, "quiz_id", quizID, "answers", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		submission   *models.Submission
		enrollment   *models.Enrollment
		completedNow bool
	)
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		current, err := s.repo.Enrollment().GetByID(ctx, tx, enrollmentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrEnrollmentNotFound
			}
			return fmt.Errorf("failed to get enrollment: %w", err)
		}
		if err := requireOwnerOrSupervisor(actor, current.UserID, current.ID, "enrollment", "submit_quiz"); err != nil {
			return err
		}

		quiz, err := s.repo.Quiz().GetWithQuestions(ctx, tx, quizID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuizNotFound
			}
			return fmt.Errorf("failed to get quiz: %w", err)
		}
		if !quiz.IsActive {
			return ErrQuizInactive
		}
		courseID, err := scopeCourseID(ctx, s.repo, tx, quiz.LessonID, quiz.ModuleID)
		if err != nil {
			return err
		}
		if courseID != current.CourseID {
			return ErrQuizNotInCourse
		}

		if quiz.MaxAttempts > 0 {
			attempts, err := s.repo.Submission().CountAttempts(ctx, tx, current.ID, quiz.ID)
			if err != nil {
				return fmt.Errorf("failed to count attempts: %w", err)
			}
			if int(attempts) >= quiz.MaxAttempts {
				return ErrQuizAttemptLimitExceeded
			}
		}
		previous, err := s.repo.Submission().MaxAttemptNumber(ctx, tx, current.ID, quiz.ID)
		if err != nil {
			return fmt.Errorf("failed to get attempt number: %w", err)
		}

		submission = &models.Submission{
			EnrollmentID:  current.ID,
			QuizID:        quiz.ID,
			AttemptNumber: previous + 1,
			SubmittedAt:   time.Now(),
		}
		if err := s.repo.Submission().Create(ctx, tx, submission); err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}

		answers := buildAnswers(submission.ID, quiz.Questions, req.Answers)
		if err := s.repo.Submission().CreateAnswers(ctx, tx, answers); err != nil {
			return fmt.Errorf("failed to create answers: %w", err)
		}

		enrollment, completedNow, err = s.rescore(ctx, tx, submission, quiz)
		return err
	})
	if err != nil {
		s.opLogger.WithOperation(ctx, "score_quiz_attempt", actor.UserID).LogResult(quizID, "quiz", err)
		return nil, err
	}

	s.publishAfterScoring(ctx, submission, enrollment, completedNow)

	s.logger.Info("Quiz attempt scored",
		"submission_id", submission.ID,
		"attempt", submission.AttemptNumber,
		"score", submission.Score,
		"passed", submission.Passed)
	return s.GetSubmission(ctx, submission.ID)
}

// ComputeScore regrades an existing attempt. Grading the same answers twice
// yields the same result.
func (s *quizService) ComputeScore(ctx context.Context, submissionID uint) (*models.Submission, error) {
	var (
		submission   *models.Submission
		enrollment   *models.Enrollment
		completedNow bool
	)
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		submission, err = s.repo.Submission().GetByID(ctx, tx, submissionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSubmissionNotFound
			}
			return fmt.Errorf("failed to get submission: %w", err)
		}
		quiz, err := s.repo.Quiz().GetByID(ctx, tx, submission.QuizID)
		if err != nil {
			return fmt.Errorf("failed to get quiz: %w", err)
		}
		enrollment, completedNow, err = s.rescore(ctx, tx, submission, quiz)
		return err
	})
	if err != nil {
		return nil, err
	}

	if completedNow {
		logNotifyError(s.logger, "enrollment_completed", s.notifications.NotifyEnrollmentCompleted(ctx, enrollment))
	}
	return s.GetSubmission(ctx, submissionID)
}

func (s *quizService) ReviewQuizAnswer(ctx context.Context, answerID uint, req *ReviewAnswerRequest, actor Actor) (*models.Submission, error) {
	op := s.opLogger.WithOperation(ctx, "review_quiz_answer", actor.UserID)

	if !actor.IsSupervisor() {
		err := NewPermissionError(actor.UserID, answerID, "quiz_answer", "review", "supervisor role required")
		op.LogResult(answerID, "quiz_answer", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		submissionID uint
		enrollment   *models.Enrollment
		completedNow bool
	)
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		answer, err := s.repo.Submission().GetAnswer(ctx, tx, answerID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAnswerNotFound
			}
			return fmt.Errorf("failed to get answer: %w", err)
		}
		if answer.Question == nil || !answer.Question.ManualReviewRequired {
			return ErrAnswerNotManual
		}
		if req.Score > float64(answer.Question.Points) {
			return validationFailure("score", fmt.Sprintf("must be between 0 and %d", answer.Question.Points), req.Score)
		}

		old := answer.ScoreAwarded
		now := time.Now()
		answer.ScoreAwarded = req.Score
		answer.IsCorrect = req.Score >= float64(answer.Question.Points) && req.Score > 0
		if req.IsCorrect != nil {
			answer.IsCorrect = *req.IsCorrect
		}
		answer.ManualScored = true
		answer.ReviewedAt = &now
		answer.ReviewedByID = actor.userIDPtr()
		if err := s.repo.Submission().UpdateAnswer(ctx, tx, answer); err != nil {
			return fmt.Errorf("failed to update answer: %w", err)
		}

		err = s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditAnswerReviewed,
			ResourceID:   answer.ID,
			ResourceType: "quiz_answer",
			Action:       "manual score",
			OldValue:     old,
			NewValue:     answer.ScoreAwarded,
		})
		if err != nil {
			return err
		}

		submission, err := s.repo.Submission().GetByID(ctx, tx, answer.SubmissionID)
		if err != nil {
			return fmt.Errorf("failed to get submission: %w", err)
		}
		quiz, err := s.repo.Quiz().GetByID(ctx, tx, submission.QuizID)
		if err != nil {
			return fmt.Errorf("failed to get quiz: %w", err)
		}
		submissionID = submission.ID
		enrollment, completedNow, err = s.rescore(ctx, tx, submission, quiz)
		return err
	})
	op.LogResult(answerID, "quiz_answer", err)
	if err != nil {
		return nil, err
	}

	if completedNow {
		logNotifyError(s.logger, "enrollment_completed", s.notifications.NotifyEnrollmentCompleted(ctx, enrollment))
	}
	return s.GetSubmission(ctx, submissionID)
}

func (s *quizService) ListPendingReviews(ctx context.Context, limit int) ([]*models.SubmissionAnswer, error) {
	answers, err := s.repo.Submission().ListPendingManualAnswers(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending answers: %w", err)
	}
	return answers, nil
}

func (s *quizService) GetSubmission(ctx context.Context, id uint) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetWithAnswers(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}

// ===== SCORING =====

// rescore grades the submission against the quiz's active questions, then
// updates the lesson the quiz belongs to and the enrollment.
func (s *quizService) rescore(ctx context.Context, tx *gorm.DB, submission *models.Submission, quiz *models.Quiz) (*models.Enrollment, bool, error) {
	questions, err := s.repo.Quiz().ListActiveQuestions(ctx, tx, quiz.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list questions: %w", err)
	}
	answers, err := s.repo.Submission().ListAnswers(ctx, tx, submission.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list answers: %w", err)
	}
	byQuestion := make(map[uint]*models.SubmissionAnswer, len(answers))
	for _, answer := range answers {
		byQuestion[answer.QuestionID] = answer
	}

	var total, maxScore float64
	for _, question := range questions {
		maxScore += float64(question.Points)

		answer, ok := byQuestion[question.ID]
		if !ok {
			continue
		}
		awarded, correct := scoreAnswer(question, answer)
		total += awarded

		if answer.ScoreAwarded != awarded || answer.IsCorrect != correct {
			answer.ScoreAwarded = awarded
			answer.IsCorrect = correct
			if err := s.repo.Submission().UpdateAnswer(ctx, tx, answer); err != nil {
				return nil, false, fmt.Errorf("failed to update answer: %w", err)
			}
		}
	}

	submission.Score = total
	submission.MaxScore = maxScore
	submission.Passed = submission.Percent() >= quiz.PassingScore
	if err := s.repo.Submission().Update(ctx, tx, submission); err != nil {
		return nil, false, fmt.Errorf("failed to update submission: %w", err)
	}

	if quiz.LessonID != nil {
		if _, err := s.tracker.updateLessonProgress(ctx, tx, submission.EnrollmentID, *quiz.LessonID, false); err != nil {
			return nil, false, err
		}
	}
	return s.tracker.refresh(ctx, tx, submission.EnrollmentID)
}

// scoreAnswer grades one answer. Manual-review questions keep the reviewer's
// score once set and award nothing before that.
func scoreAnswer(question *models.Question, answer *models.SubmissionAnswer) (float64, bool) {
	points := float64(question.Points)

	switch question.Type {
	case models.QuestionMCQ, models.QuestionTrueFalse:
		if answer.SelectedChoiceID == nil {
			return 0, false
		}
		for _, choice := range question.Choices {
			if choice.ID == *answer.SelectedChoiceID {
				if choice.IsCorrect {
					return points, true
				}
				return 0, false
			}
		}
		return 0, false

	case models.QuestionShort:
		if question.ManualReviewRequired {
			if answer.ManualScored {
				return answer.ScoreAwarded, answer.IsCorrect
			}
			return 0, false
		}
		if question.CorrectText == "" {
			return 0, false
		}
		given := strings.TrimSpace(answer.TextAnswer)
		expected := strings.TrimSpace(question.CorrectText)
		if !question.CaseSensitive {
			given = strings.ToLower(given)
			expected = strings.ToLower(expected)
		}
		if given == expected {
			return points, true
		}
		return 0, false
	}
	return 0, false
}

// buildAnswers creates one answer row per active question. A selected choice
// is kept only when it belongs to the question; text only for short answers.
func buildAnswers(submissionID uint, questions []models.Question, inputs []QuizAnswerInput) []*models.SubmissionAnswer {
	byQuestion := make(map[uint]QuizAnswerInput, len(inputs))
	for _, input := range inputs {
		byQuestion[input.QuestionID] = input
	}

	answers := make([]*models.SubmissionAnswer, 0, len(questions))
	for _, question := range questions {
		answer := &models.SubmissionAnswer{SubmissionID: submissionID, QuestionID: question.ID}
		if input, ok := byQuestion[question.ID]; ok {
			if input.SelectedChoiceID != nil {
				for _, choice := range question.Choices {
					if choice.ID == *input.SelectedChoiceID {
						id := choice.ID
						answer.SelectedChoiceID = &id
						break
					}
				}
			}
			if question.Type == models.QuestionShort {
				answer.TextAnswer = input.TextAnswer
			}
		}
		answers = append(answers, answer)
	}
	return answers
}

func (s *quizService) publishAfterScoring(ctx context.Context, submission *models.Submission, enrollment *models.Enrollment, completedNow bool) {
	logNotifyError(s.logger, "quiz_submitted", s.notifications.NotifyQuizSubmitted(ctx, submission))
	if completedNow {
		logNotifyError(s.logger, "enrollment_completed", s.notifications.NotifyEnrollmentCompleted(ctx, enrollment))
	}
}

// scopeCourseID resolves the course of a quiz or assignment through its
// lesson or module. It returns 0 when neither is set.
func scopeCourseID(ctx context.Context, repo repositories.Repository, tx *gorm.DB, lessonID, moduleID *uint) (uint, error) {
	if lessonID != nil {
		lesson, err := repo.Catalog().GetLesson(ctx, tx, *lessonID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return 0, ErrLessonNotFound
			}
			return 0, fmt.Errorf("failed to get lesson: %w", err)
		}
		if lesson.Module == nil {
			return 0, ErrModuleNotFound
		}
		return lesson.Module.CourseID, nil
	}
	if moduleID != nil {
		module, err := repo.Catalog().GetModule(ctx, tx, *moduleID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return 0, ErrModuleNotFound
			}
			return 0, fmt.Errorf("failed to get module: %w", err)
		}
		return module.CourseID, nil
	}
	return 0, nil
}
