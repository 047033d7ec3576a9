package exit

// Code is a process exit status.
type Code struct {
	code int
}

// Int returns the numeric status.
func (c Code) Int() int { return c.code }

// Success (0) represents a normal process termination.
func Success() Code { return Code{0} }

// Usage (1) indicates no action was selected or the command line was
// malformed.
func Usage() Code { return Code{1} }

// SecretsFileMissing (2) indicates the user-global secrets file does not
// exist yet.
func SecretsFileMissing() Code { return Code{2} }

// DomainNotRegistered (3) indicates the secrets file has no entry for the
// requested domain.
func DomainNotRegistered() Code { return Code{3} }

// TenantInfoFailed (4) indicates the cloud id could not be resolved while
// registering secrets.
func TenantInfoFailed() Code { return Code{4} }

// ProjectFileMissing (5) indicates the per-repository file is absent when
// resolving the project's domain.
func ProjectFileMissing() Code { return Code{5} }

// ProjectDomainMissing (6) indicates the per-repository file has no domain.
func ProjectDomainMissing() Code { return Code{6} }

// IssuesFileMissing (7) indicates the per-repository file is absent when
// looking up a cached summary.
func IssuesFileMissing() Code { return Code{7} }

// IssueFetchFailed (8) indicates Jira did not return the requested issue.
func IssueFetchFailed() Code { return Code{8} }

// UnspecifiedError (9) covers I/O, decoding and transport failures that have
// no dedicated code.
func UnspecifiedError() Code { return Code{9} }

// NotInRepository (10) indicates the working directory is not inside a git
// working tree.
func NotInRepository() Code { return Code{10} }

// BranchMismatch (11) indicates the current branch does not follow the
// issue/jira/<KEY> convention.
func BranchMismatch() Code { return Code{11} }

// BranchUnavailable (12) indicates git could not report the current branch,
// e.g. in a repository without commits.
func BranchUnavailable() Code { return Code{12} }
