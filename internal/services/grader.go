package services

import (
	"github.com/google/uuid"

	"github.com/skillpath/backend/internal/types"
)

// GradeResult is the outcome of grading one quiz submission. The per-question
// breakdown is persisted on the attempt row but stays off the wire: the
// submit response carries only the aggregate fields.
type GradeResult struct {
	Score        float64              `json:"score"`
	Passed       bool                 `json:"passed"`
	TotalPoints  int                  `json:"totalPoints"`
	EarnedPoints int                  `json:"earnedPoints"`
	Answers      []types.AnswerResult `json:"-"`
}

// GradeQuiz scores a submission against a quiz definition. It is a pure
// function of its inputs.
//
// Multiple-choice and true-false questions are correct only on an exact set
// match: the selected answer ids must equal the ids flagged correct, no
// partial credit for subsets or supersets. Coding questions have no automated
// rule and never earn points. Submissions that reference no question in the
// quiz are recorded as incorrect but never scored. Total points covers every
// question in the quiz, answered or not.
func GradeQuiz(quiz *types.Quiz, submitted []types.SubmittedAnswer) GradeResult {
	earned := 0
	results := make([]types.AnswerResult, 0, len(submitted))

	for _, answer := range submitted {
		question := findQuestion(quiz.Questions, answer.QuestionID)
		if question == nil {
			results = append(results, types.AnswerResult{
				QuestionID:      answer.QuestionID,
				SelectedAnswers: answer.SelectedAnswers,
				IsCorrect:       false,
			})
			continue
		}

		correct := false
		switch question.Type {
		case types.QuestionTypeMultipleChoice, types.QuestionTypeTrueFalse:
			correct = exactSetMatch(correctAnswerIDs(question), answer.SelectedAnswers)
		case types.QuestionTypeCoding:
			// No automated grading rule exists for coding questions.
		}

		if correct {
			earned += question.Points
		}
		results = append(results, types.AnswerResult{
			QuestionID:      answer.QuestionID,
			SelectedAnswers: answer.SelectedAnswers,
			IsCorrect:       correct,
		})
	}

	total := 0
	for _, q := range quiz.Questions {
		total += q.Points
	}

	var score float64
	if total > 0 {
		score = float64(earned) / float64(total) * 100
	}

	return GradeResult{
		Score:        score,
		Passed:       score >= quiz.PassingScore,
		TotalPoints:  total,
		EarnedPoints: earned,
		Answers:      results,
	}
}

func findQuestion(questions []types.Question, id uuid.UUID) *types.Question {
	for i := range questions {
		if questions[i].ID == id {
			return &questions[i]
		}
	}
	return nil
}

func correctAnswerIDs(q *types.Question) []uuid.UUID {
	var ids []uuid.UUID
	for _, a := range q.Answers {
		if a.IsCorrect {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func exactSetMatch(want, got []uuid.UUID) bool {
	if len(want) != len(got) {
		return false
	}
	wantSet := make(map[uuid.UUID]struct{}, len(want))
	for _, id := range want {
		wantSet[id] = struct{}{}
	}
	matched := 0
	seen := make(map[uuid.UUID]struct{}, len(got))
	for _, id := range got {
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
		if _, ok := wantSet[id]; !ok {
			return false
		}
		matched++
	}
	return matched == len(want)
}
