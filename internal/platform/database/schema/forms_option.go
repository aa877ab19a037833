package schema

// FormsOptionTable represents the 'forms.option' table
type FormsOptionTable struct {
	Table      string
	ID         string
	QuestionID string
	Value      string
	SortOrder  string
	Metadata   string
	CreatedAt  string
	UpdatedAt  string
	DeletedAt  string
}

// FormsOption is the schema definition for forms.option
// Options are soft-deleted only: historical answers keep referencing removed
// option ids, and the read side resolves them to "no answer".
var FormsOption = FormsOptionTable{
	Table:      "forms.option",
	ID:         "id",
	QuestionID: "questionid",
	Value:      "value",
	SortOrder:  "sortorder",
	Metadata:   "metadata",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
	DeletedAt:  "deletedat",
}

func (t FormsOptionTable) Columns() []string {
	return []string{t.ID, t.QuestionID, t.Value, t.SortOrder, t.Metadata, t.CreatedAt, t.UpdatedAt, t.DeletedAt}
}
