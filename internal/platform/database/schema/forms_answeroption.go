package schema

// FormsAnswerOptionTable represents the 'forms.answeroption' table
type FormsAnswerOptionTable struct {
	Table    string
	AnswerID string
	OptionID string
}

// FormsAnswerOption is the schema definition for forms.answeroption
var FormsAnswerOption = FormsAnswerOptionTable{
	Table:    "forms.answeroption",
	AnswerID: "answerid",
	OptionID: "optionid",
}

func (t FormsAnswerOptionTable) Columns() []string {
	return []string{t.AnswerID, t.OptionID}
}
