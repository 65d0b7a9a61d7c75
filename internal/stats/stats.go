package stats

// Overview is the dashboard counter set.
type Overview struct {
	Documents DocumentCounts `json:"documents"`
	Users     int64          `json:"users"`
}

type DocumentCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// Report types accepted by the reports endpoint.
const (
	ReportByUser   = "byUser"
	ReportByFolder = "byFolder"
)

// ReportRow is one aggregation bucket: uploader name or folder name with
// its document count.
type ReportRow struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}
