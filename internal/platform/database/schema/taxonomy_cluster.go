package schema

// TaxClusterTable represents the 'taxonomy.cluster' table
type TaxClusterTable struct {
	Table     string
	ID        string
	Icon      string
	Slug      string
	IsActive  string
	SortOrder string
	CreatedAt string
	UpdatedAt string
}

// TaxCluster is the schema definition for taxonomy.cluster
var TaxCluster = TaxClusterTable{
	Table:     "taxonomy.cluster",
	ID:        "id",
	Icon:      "icon",
	Slug:      "slug",
	IsActive:  "isactive",
	SortOrder: "sortorder",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t TaxClusterTable) Columns() []string {
	return []string{t.ID, t.Icon, t.Slug, t.IsActive, t.SortOrder, t.CreatedAt, t.UpdatedAt}
}
