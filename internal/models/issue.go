package models

type JiraIssue struct {
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

type IssueFields struct {
	Summary string `json:"summary"`
}

// TenantInfo is the body of the /_edge/tenant_info endpoint.
type TenantInfo struct {
	CloudID string `json:"cloudId"`
}
