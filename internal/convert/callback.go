// Package convert maps wire shapes onto domain shapes.
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/cqhs/articlecheck/internal/model"
)

// Callback normalizes a vendor webhook payload into the client-side result
// record. Pure renaming: no field is computed, validated, or defaulted, and
// an absent field stays absent.
func Callback(in model.ReportCallback) model.ReportResult {
	return model.ReportResult{
		ReportID:            in.ReportID,
		Status:              in.Status,
		Error:               in.Error,
		SimilarityPercent:   in.SimilarityPercent,
		PlagiarismReportURL: in.PlagiarismReportURL,
		AIPercent:           in.AIPercent,
		AIReportURL:         in.AIReportURL,
		SlotsBalance:        in.SlotsBalance,
	}
}

// CallbackJSON decodes a raw webhook body and normalizes it.
func CallbackJSON(raw []byte) (model.ReportResult, error) {
	var cb model.ReportCallback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return model.ReportResult{}, fmt.Errorf("decode callback: %w", err)
	}
	return Callback(cb), nil
}
