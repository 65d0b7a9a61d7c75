package permission

// Permission is an immutable catalog entry gating one operation class.
// The catalog is fixed at deployment; only role assignments change at
// runtime.
type Permission struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const (
	ReportsOverview    = "reports:overview"
	ReportsPerformance = "reports:performance"
	ReportsCount       = "reports:count"
	DocumentsList      = "documents:list"
	DocumentsUpload    = "documents:upload"
	DocumentsEdit      = "documents:edit"
	DocumentsApprove   = "documents:approve"
	DocumentsDelete    = "documents:delete"
	AdminUsersManage   = "admin:users:manage"
	AdminSettings      = "admin:settings"
)

var catalog = []Permission{
	{ID: ReportsOverview, Name: "View overview reports"},
	{ID: ReportsPerformance, Name: "View document processing performance"},
	{ID: ReportsCount, Name: "View document count reports"},
	{ID: DocumentsList, Name: "List documents"},
	{ID: DocumentsUpload, Name: "Upload documents"},
	{ID: DocumentsEdit, Name: "Edit documents"},
	{ID: DocumentsApprove, Name: "Approve documents"},
	{ID: DocumentsDelete, Name: "Delete documents"},
	{ID: AdminUsersManage, Name: "Manage users"},
	{ID: AdminSettings, Name: "System settings"},
}

var catalogIndex = func() map[string]struct{} {
	idx := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		idx[p.ID] = struct{}{}
	}
	return idx
}()

// List returns the catalog in its declaration order.
func List() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// IsValid reports whether id names a catalog entry.
func IsValid(id string) bool {
	_, ok := catalogIndex[id]
	return ok
}
