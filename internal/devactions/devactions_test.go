package devactions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funneltrack/internal/audit"
	"funneltrack/internal/devactions"
	"funneltrack/internal/testsupport"
)

func TestLogDevAction(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	id, err := devactions.Log(db, logger, 7, "sess-1", "203.0.113.10", "ua", &devactions.LogInput{
		PageName:        "tregnar",
		ActionType:      devactions.ActionAutofill,
		StepNumber:      2,
		StepName:        "account_info",
		FormData:        map[string]any{"fields": 5},
		ExecutionTimeMs: 120,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	var stored devactions.DevAction
	require.NoError(t, db.First(&stored, id).Error)
	assert.Equal(t, uint(7), stored.UserID)
	assert.Equal(t, devactions.ActionAutofill, stored.ActionType)
	assert.Equal(t, "account_info", stored.StepName)
	assert.True(t, stored.Success) // defaults to true when omitted
	assert.Contains(t, stored.FormData, `"fields":5`)

	// Mirrored into the audit trail.
	entries, err := audit.Recent(db, 5)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "dev_action_performed", entries[0].ActionType)
	assert.Equal(t, audit.CategoryDevMode, entries[0].ActionCategory)
	assert.Equal(t, "tregnar", entries[0].TargetID)
}

func TestLogDevActionStepNameFallsBackToActionName(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	id, err := devactions.Log(db, testsupport.GetLogger(), 7, "", "203.0.113.10", "ua", &devactions.LogInput{
		PageName:   "maps-booster",
		ActionType: devactions.ActionKeyboardShortcut,
		ActionName: "fill_all_steps",
	})
	require.NoError(t, err)

	var stored devactions.DevAction
	require.NoError(t, db.First(&stored, id).Error)
	assert.Equal(t, "fill_all_steps", stored.StepName)
}

func TestLogDevActionExplicitFailure(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	failed := false
	id, err := devactions.Log(db, testsupport.GetLogger(), 7, "", "203.0.113.10", "ua", &devactions.LogInput{
		PageName:     "tregnar",
		ActionType:   devactions.ActionAutosubmit,
		Success:      &failed,
		ErrorMessage: "submit button not found",
	})
	require.NoError(t, err)

	var stored devactions.DevAction
	require.NoError(t, db.First(&stored, id).Error)
	assert.False(t, stored.Success)
	assert.Equal(t, "submit button not found", stored.ErrorMessage)

	entries, err := audit.Recent(db, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ResultFailure, entries[0].ActionResult)
}

func TestLogDevActionValidation(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	_, err := devactions.Log(db, logger, 7, "", "", "", &devactions.LogInput{
		ActionType: devactions.ActionAutofill,
	})
	assert.ErrorIs(t, err, devactions.ErrInvalidInput)

	_, err = devactions.Log(db, logger, 7, "", "", "", &devactions.LogInput{
		PageName:   "tregnar",
		ActionType: "clickety",
	})
	assert.ErrorIs(t, err, devactions.ErrInvalidInput)
}

func TestRecentDevActionsFilterByPage(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	for _, page := range []string{"tregnar", "tregnar", "maps-booster"} {
		_, err := devactions.Log(db, logger, 7, "", "203.0.113.10", "ua", &devactions.LogInput{
			PageName:   page,
			ActionType: devactions.ActionManualDevButton,
		})
		require.NoError(t, err)
	}

	all, err := devactions.Recent(db, "", 50)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := devactions.Recent(db, "tregnar", 50)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}
