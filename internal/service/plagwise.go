package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cqhs/articlecheck/internal/httpx"
	"github.com/cqhs/articlecheck/internal/model"
)

// Fixed submission flags: bibliography excluded, quotes included.
const (
	submissionType      = "file"
	excludeBibliography = "1"
	excludeQuotes       = "0"
)

// ReportLinker is the slice of AuthService the plagiarism service needs to
// record a new report against the account.
type ReportLinker interface {
	AppendReport(ctx context.Context, reportID string) (model.User, error)
}

// PlagwiseService submits documents to the plagiarism vendor.
type PlagwiseService interface {
	// CheckPlagiarism uploads one document and returns the vendor's receipt.
	CheckPlagiarism(ctx context.Context, filename string, file io.Reader) (model.SubmissionReceipt, error)
}

// VendorAccount is the fixed account the vendor API is called with.
type VendorAccount struct {
	Email       string
	APIKey      string
	Environment string
}

type PlagwiseServiceImpl struct {
	api     *httpx.Client
	auth    ReportLinker
	account VendorAccount
	log     *zap.Logger
}

var _ PlagwiseService = (*PlagwiseServiceImpl)(nil)

// NewPlagwiseService constructs PlagwiseService. api must be configured with
// the vendor's base URL.
func NewPlagwiseService(api *httpx.Client, auth ReportLinker, account VendorAccount, log *zap.Logger) *PlagwiseServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	if account.Environment == "" {
		account.Environment = "production"
	}
	return &PlagwiseServiceImpl{api: api, auth: auth, account: account, log: log}
}

// CheckPlagiarism posts the document as a multipart submission. When the
// vendor hands back a report id, it is linked into the account's report list
// as a secondary write: a link failure does not undo the submission, the
// receipt just comes back with Linked=false.
func (s *PlagwiseServiceImpl) CheckPlagiarism(ctx context.Context, filename string, file io.Reader) (model.SubmissionReceipt, error) {
	fields := map[string]string{
		"email":                s.account.Email,
		"api_key":              s.account.APIKey,
		"environment":          s.account.Environment,
		"submission_type":      submissionType,
		"exclude_bibliography": excludeBibliography,
		"exclude_quotes":       excludeQuotes,
	}
	part := httpx.FilePart{Field: "submitted_file", Name: filename, Content: file}

	var receipt model.SubmissionReceipt
	if err := s.api.PostMultipart(ctx, "/submit-file", fields, part, &receipt); err != nil {
		var apiErr *httpx.APIError
		if errors.As(err, &apiErr) && apiErr.Message() != "" {
			return model.SubmissionReceipt{}, fmt.Errorf("%s: %w", apiErr.Message(), err)
		}
		return model.SubmissionReceipt{}, fmt.Errorf("plagiarism submission failed: %w", err)
	}

	if receipt.ReportID != "" {
		if _, err := s.auth.AppendReport(ctx, receipt.ReportID); err != nil {
			s.log.Warn("report accepted by vendor but not linked to account",
				zap.String("report_id", receipt.ReportID),
				zap.Error(err),
			)
		} else {
			receipt.Linked = true
		}
	}
	return receipt, nil
}
