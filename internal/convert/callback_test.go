package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cqhs/articlecheck/internal/model"
)

func TestCallback_RenamesAndPreservesAbsence(t *testing.T) {
	t.Parallel()

	sim := 12.0
	got := Callback(model.ReportCallback{
		ReportID:          "r1",
		Status:            "done",
		SimilarityPercent: &sim,
	})

	assert.Equal(t, "r1", got.ReportID)
	assert.Equal(t, "done", got.Status)
	require.NotNil(t, got.SimilarityPercent)
	assert.Equal(t, 12.0, *got.SimilarityPercent)

	// Fields absent from the payload stay absent, not zeroed.
	assert.Nil(t, got.Error)
	assert.Nil(t, got.PlagiarismReportURL)
	assert.Nil(t, got.AIPercent)
	assert.Nil(t, got.AIReportURL)
	assert.Nil(t, got.SlotsBalance)
}

func TestCallback_FullPayload(t *testing.T) {
	t.Parallel()

	errMsg := "parse failure"
	sim, ai := 33.3, 7.5
	purl, aurl := "https://vendor/p/r2", "https://vendor/ai/r2"
	slots := 4

	got := Callback(model.ReportCallback{
		ReportID:            "r2",
		Status:              "failed",
		Error:               &errMsg,
		SimilarityPercent:   &sim,
		PlagiarismReportURL: &purl,
		AIPercent:           &ai,
		AIReportURL:         &aurl,
		SlotsBalance:        &slots,
	})

	assert.Equal(t, model.ReportResult{
		ReportID:            "r2",
		Status:              "failed",
		Error:               &errMsg,
		SimilarityPercent:   &sim,
		PlagiarismReportURL: &purl,
		AIPercent:           &ai,
		AIReportURL:         &aurl,
		SlotsBalance:        &slots,
	}, got)
}

func TestCallbackJSON(t *testing.T) {
	t.Parallel()

	got, err := CallbackJSON([]byte(`{"report_id":"r1","status":"done","similarity_percent":12}`))
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ReportID)
	require.NotNil(t, got.SimilarityPercent)
	assert.Equal(t, 12.0, *got.SimilarityPercent)
	assert.Nil(t, got.SlotsBalance)

	_, err = CallbackJSON([]byte(`not json`))
	require.Error(t, err)
}
