package services

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPointsApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	svc := NewPointsService(db)

	app := fiber.New()
	app.Get("/points/summary/:userId", svc.GetPointsSummary)
	return app, mock
}

type pointsSummary struct {
	Ok             bool            `json:"ok"`
	TotalPoints    int64           `json:"totalPoints"`
	CompletedTasks map[string]bool `json:"completedTasks"`
}

func getSummary(t *testing.T, app *fiber.App, userID string) (int, pointsSummary) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/points/summary/"+userID, nil))
	require.NoError(t, err)

	var body pointsSummary
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, body
}

func txRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "type", "points", "created_at"})
}

func TestPointsSummaryEmptyLedger(t *testing.T) {
	app, mock := newPointsApp(t)
	mock.ExpectQuery(`SELECT \* FROM "point_transactions" WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(txRows())

	status, body := getSummary(t, app, "u1")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Ok)
	assert.Equal(t, int64(0), body.TotalPoints)
	assert.Empty(t, body.CompletedTasks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPointsSummarySumsAndFlags(t *testing.T) {
	app, mock := newPointsApp(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "point_transactions" WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(txRows().
			AddRow("t1", "u1", "first_review", 10, now).
			AddRow("t2", "u1", "daily_review", 2, now).
			AddRow("t3", "u1", "daily_review", 2, now))

	status, body := getSummary(t, app, "u1")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(14), body.TotalPoints)
	assert.Equal(t, map[string]bool{"first_review": true, "daily_review": true}, body.CompletedTasks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPointsSummaryIncludesNegativeAmounts(t *testing.T) {
	app, mock := newPointsApp(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "point_transactions" WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(txRows().
			AddRow("t1", "u1", "first_review", 10, now).
			AddRow("t2", "u1", "adjustment", -4, now))

	status, body := getSummary(t, app, "u1")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(6), body.TotalPoints)
	assert.True(t, body.CompletedTasks["adjustment"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPointsSummaryStoreFailure(t *testing.T) {
	app, mock := newPointsApp(t)
	mock.ExpectQuery(`SELECT \* FROM "point_transactions"`).
		WillReturnError(assert.AnError)

	status, _ := getSummary(t, app, "u1")
	assert.Equal(t, fiber.StatusInternalServerError, status)
}
