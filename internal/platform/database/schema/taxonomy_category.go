package schema

// TaxCategoryTable represents the 'taxonomy.category' table
type TaxCategoryTable struct {
	Table     string
	ID        string
	ClusterID string
	Icon      string
	Slug      string
	SortOrder string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// TaxCategory is the schema definition for taxonomy.category
// ClusterID is nullable: a NULL value means the category sits in the
// "unassigned" sibling set, which keeps its own dense ordering.
var TaxCategory = TaxCategoryTable{
	Table:     "taxonomy.category",
	ID:        "id",
	ClusterID: "clusterid",
	Icon:      "icon",
	Slug:      "slug",
	SortOrder: "sortorder",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
	DeletedAt: "deletedat",
}

func (t TaxCategoryTable) Columns() []string {
	return []string{t.ID, t.ClusterID, t.Icon, t.Slug, t.SortOrder, t.CreatedAt, t.UpdatedAt, t.DeletedAt}
}
