package quiz

// Grade scores answers against the quiz and returns a new Result.
//
// A question counts as correct only when the submitted string is exactly
// equal to its Answer: case-sensitive, no trimming or normalization.
// Total is the number of questions at the time of grading.
func Grade(q *Quiz, answers map[int]string) *Result {
	kept := make(map[int]string, len(answers))
	for id, a := range answers {
		kept[id] = a
	}

	score := 0
	for _, question := range q.Questions {
		if a, ok := kept[question.ID]; ok && a == question.Answer {
			score++
		}
	}

	return &Result{
		QuizID:  q.ID,
		Score:   score,
		Total:   len(q.Questions),
		Answers: kept,
	}
}

// Percent returns the score as a fraction in [0, 1].
func (r *Result) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}

// IsCorrect reports whether the stored answer for the question matches.
func (r *Result) IsCorrect(q Question) bool {
	a, ok := r.Answers[q.ID]
	return ok && a == q.Answer
}
