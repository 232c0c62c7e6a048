package service

import (
	"time"

	"github.com/lshigami/prepbank/internal/model"
	"github.com/lshigami/prepbank/internal/repository"
)

// ResponsePatch is a partial update of one question response. TimeSpent and
// SwitchCount are deltas; non-positive deltas are ignored. SelectedOptionID is
// only applied when SetSelection is true, and may be nil to clear the answer.
type ResponsePatch struct {
	SetSelection     bool
	SelectedOptionID *string
	TimeSpent        *int
	SwitchCount      *int
	Flagged          *bool
}

// IsSelectionCorrect reports whether option carries the question's correct
// label. A question without a correct label never matches.
func IsSelectionCorrect(question *model.Question, option *model.Option) bool {
	if question == nil || option == nil || question.CorrectLabel == nil {
		return false
	}
	return option.Label == *question.CorrectLabel
}

// GradeResponse returns the is_correct value of a response: nil when nothing
// is selected, otherwise whether the selected option matches.
func GradeResponse(r *model.QuestionResponse) *bool {
	if r.SelectedOptionID == nil {
		return nil
	}
	ok := IsSelectionCorrect(r.Question, r.SelectedOption)
	return &ok
}

// ScorePercentage is correct/total as a percentage, 0 for an empty attempt.
func ScorePercentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// ApplyResponsePatch computes the column changes patch makes to current.
// current.Question must be loaded with its options. The returned map is empty
// when the patch changes nothing.
func ApplyResponsePatch(current *model.QuestionResponse, patch ResponsePatch) (map[string]interface{}, error) {
	changes := map[string]interface{}{}

	if patch.Flagged != nil && *patch.Flagged != current.Flagged {
		changes["flagged"] = *patch.Flagged
	}

	if patch.TimeSpent != nil && *patch.TimeSpent > 0 {
		changes["time_spent"] = current.TimeSpent + *patch.TimeSpent
	}

	switchCount := current.SwitchCount
	if patch.SwitchCount != nil && *patch.SwitchCount > 0 {
		switchCount += *patch.SwitchCount
	}

	if patch.SetSelection && !sameSelection(current.SelectedOptionID, patch.SelectedOptionID) {
		switchCount++
		if patch.SelectedOptionID == nil {
			changes["selected_option_id"] = nil
			changes["is_correct"] = nil
		} else {
			option, ok := current.Question.OptionByID(*patch.SelectedOptionID)
			if !ok {
				return nil, newOptionNotFound(*patch.SelectedOptionID)
			}
			changes["selected_option_id"] = option.ID
			changes["is_correct"] = IsSelectionCorrect(current.Question, option)
		}
	}

	if switchCount != current.SwitchCount {
		changes["switch_count"] = switchCount
	}
	return changes, nil
}

func sameSelection(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// GradeAttempt grades every response of attempt and returns the completion to
// persist. Responses must be loaded with their question and selected option.
func GradeAttempt(attempt *model.TestAttempt, finishedAt time.Time) *repository.AttemptCompletion {
	completion := &repository.AttemptCompletion{
		FinishedAt: finishedAt,
		Grades:     make(map[string]*bool, len(attempt.Responses)),
	}
	correct := 0
	for i := range attempt.Responses {
		r := &attempt.Responses[i]
		grade := GradeResponse(r)
		completion.Grades[r.ID] = grade
		if grade != nil && *grade {
			correct++
		}
	}
	completion.Score = ScorePercentage(correct, len(attempt.Responses))
	return completion
}
