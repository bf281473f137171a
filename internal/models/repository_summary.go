package models

// RepositorySummary identifies one repository as returned by the API
type RepositorySummary struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	HTMLURL   string `json:"html_url" yaml:"html_url"`
	IsPrivate bool   `json:"private" yaml:"private"`
}
