package util

import "time"

const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 证据文件允许的类型
var AllowedEvidenceExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".docx", ".xlsx", ".pptx", ".txt", ".zip"}

// Day formats t as a calendar day in UTC; streaks and activity rows are keyed by this value.
func Day(t time.Time) string {
	return t.UTC().Format(DateFormat)
}

// PreviousDay returns the calendar day before day, or "" when day is not a valid date.
func PreviousDay(day string) string {
	t, err := time.Parse(DateFormat, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DateFormat)
}
