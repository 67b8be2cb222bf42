// Package model defines domain entities exchanged with the backend and the vendor API.
package model

// Registration carries the fields posted to the registration endpoint.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// TokenResponse is the token endpoint's reply. Only AccessToken matters to the
// client; the rest is passed through for display.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// User is the backend's account record. The client never persists it; it is
// fetched fresh on each authorization check.
type User struct {
	Username     string   `json:"username"`
	Email        string   `json:"email,omitempty"`
	IsAdmin      bool     `json:"is_admin"`
	ReportIDList []string `json:"report_id_list"`
}

// SubmissionReceipt is the vendor's reply to a file submission, plus whether
// the report id was linked into the user's account.
type SubmissionReceipt struct {
	ReportID string `json:"report_id"`
	Status   string `json:"status,omitempty"`
	Message  string `json:"message,omitempty"`

	// Linked reports whether the follow-up account update succeeded. The
	// submission itself stands either way.
	Linked bool `json:"-"`
}

// ReportCallback is the vendor's webhook payload, as delivered. Optional
// fields are pointers so an absent field stays distinguishable from a zero.
type ReportCallback struct {
	ReportID            string   `json:"report_id"`
	Status              string   `json:"status"`
	Error               *string  `json:"error"`
	SimilarityPercent   *float64 `json:"similarity_percent"`
	PlagiarismReportURL *string  `json:"plagiarism_report_url"`
	AIPercent           *float64 `json:"ai_percent"`
	AIReportURL         *string  `json:"ai_report_url"`
	SlotsBalance        *int     `json:"slots_balance"`
}

// ReportResult is the normalized form of a ReportCallback. Field for field the
// same data under the client-side names; nothing is computed or validated.
type ReportResult struct {
	ReportID            string   `json:"reportId"`
	Status              string   `json:"status"`
	Error               *string  `json:"error"`
	SimilarityPercent   *float64 `json:"similarityPercent"`
	PlagiarismReportURL *string  `json:"plagiarismReportUrl"`
	AIPercent           *float64 `json:"aiPercent"`
	AIReportURL         *string  `json:"aiReportUrl"`
	SlotsBalance        *int     `json:"slotsBalance"`
}
