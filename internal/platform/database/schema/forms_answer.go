package schema

// FormsAnswerTable represents the 'forms.answer' table
type FormsAnswerTable struct {
	Table            string
	ID               string
	FirmID           string
	QuestionID       string
	Value            string
	SelectedOptionID string
	CreatedAt        string
	UpdatedAt        string
}

// FormsAnswer is the schema definition for forms.answer
// One row per (firm, question). The value shape depends on the question
// type: scalar types use Value, single-select uses SelectedOptionID,
// multi-select rows live in forms.answeroption, and localized free text
// lives in forms.answertranslation.
var FormsAnswer = FormsAnswerTable{
	Table:            "forms.answer",
	ID:               "id",
	FirmID:           "firmid",
	QuestionID:       "questionid",
	Value:            "value",
	SelectedOptionID: "selectedoptionid",
	CreatedAt:        "createdat",
	UpdatedAt:        "updatedat",
}

func (t FormsAnswerTable) Columns() []string {
	return []string{t.ID, t.FirmID, t.QuestionID, t.Value, t.SelectedOptionID, t.CreatedAt, t.UpdatedAt}
}
