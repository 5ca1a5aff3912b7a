package services

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	svc := NewReviewService(db, NewPointsService(db), NewNotificationService(db))

	app := fiber.New()
	app.Get("/reviews/count", svc.GetDailyReviewCount)
	app.Get("/reviews/numeric-id/:objectId", svc.GetNumericID)
	app.Post("/reviews", func(c *fiber.Ctx) error {
		c.Locals("user_id", "u1")
		return svc.CreateReview(c)
	})
	return app, mock
}

func postReview(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", "/reviews", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestNewObjectIDShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewObjectID()
		assert.Len(t, id, 24)
		raw, err := hex.DecodeString(id)
		require.NoError(t, err)

		// First four bytes are the creation time.
		ts := time.Unix(int64(uint32(raw[0])<<24|uint32(raw[1])<<16|uint32(raw[2])<<8|uint32(raw[3])), 0)
		assert.WithinDuration(t, time.Now(), ts, time.Minute)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}

func TestDayWindow(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 8, 29, 15, 42, 7, 0, loc)
	start, end := dayWindow(now, loc)

	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2026, 8, 29, 23, 59, 59, 999_000_000, loc), end)

	// A timestamp one millisecond into the next day is outside the window.
	assert.True(t, end.Before(time.Date(2026, 8, 30, 0, 0, 0, 0, loc)))
}

func TestDayWindowRespectsLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 16:00 UTC is already the next calendar day in Tokyo.
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.UTC)
	start, _ := dayWindow(now, tokyo)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, tokyo), start)
}

func TestGetDailyReviewCountRequiresUserID(t *testing.T) {
	app, _ := newReviewApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/reviews/count", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetDailyReviewCountRemainingUnclamped(t *testing.T) {
	app, mock := newReviewApp(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reviews" WHERE user_id = \$1 AND created_at BETWEEN \$2 AND \$3`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	resp, err := app.Test(httptest.NewRequest("GET", "/reviews/count?userId=u1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Count     int64 `json:"count"`
		Cap       int64 `json:"cap"`
		Remaining int64 `json:"remaining"`
	}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, int64(7), body.Count)
	assert.Equal(t, int64(5), body.Cap)
	// Past the cap the raw remaining goes negative; display clamping is the
	// caller's job.
	assert.Equal(t, int64(-2), body.Remaining)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDailyReviewCountStoreFailure(t *testing.T) {
	app, mock := newReviewApp(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reviews"`).WillReturnError(assert.AnError)

	resp, err := app.Test(httptest.NewRequest("GET", "/reviews/count?userId=u1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestGetNumericIDValidation(t *testing.T) {
	app, _ := newReviewApp(t)

	for _, objectID := range []string{"abc", "zzzzzzzzzzzzzzzzzzzzzzzz", "64a1b2c3d4e5f6a7b8c9d0e", "64a1b2c3d4e5f6a7b8c9d0e1f2"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/reviews/numeric-id/"+objectID, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "objectId %q", objectID)
	}
}

func TestGetNumericIDNotFound(t *testing.T) {
	app, mock := newReviewApp(t)
	mock.ExpectQuery(`SELECT "numeric_id" FROM "reviews" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"numeric_id"}))

	resp, err := app.Test(httptest.NewRequest("GET", "/reviews/numeric-id/64a1b2c3d4e5f6a7b8c9d0e1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNumericIDFound(t *testing.T) {
	app, mock := newReviewApp(t)
	mock.ExpectQuery(`SELECT "numeric_id" FROM "reviews" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"numeric_id"}).AddRow(42))

	resp, err := app.Test(httptest.NewRequest("GET", "/reviews/numeric-id/64A1B2C3D4E5F6A7B8C9D0E1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		NumericID int64 `json:"numericId"`
	}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, int64(42), body.NumericID)
}

func TestCreateReviewRejectsAtDailyCap(t *testing.T) {
	app, mock := newReviewApp(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reviews" WHERE user_id = \$1 AND created_at BETWEEN \$2 AND \$3`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	resp := postReview(t, app, `{"movieTitle":"Dune","rating":8,"body":"great"}`)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	// Nothing may be written once the cap is hit.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewAwardsPoints(t *testing.T) {
	app, mock := newReviewApp(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "reviews" WHERE user_id = \$1 AND created_at BETWEEN \$2 AND \$3`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(numeric_id\), 0\) FROM "reviews"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(41))
	mock.ExpectExec(`INSERT INTO "reviews"`).
		WithArgs(sqlmock.AnyArg(), int64(42), "u1", "Dune", "dune", 8, "great", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// first_review is one-time: lookup finds nothing, so it is issued.
	mock.ExpectQuery(`SELECT \* FROM "point_transactions" WHERE user_id = \$1 AND type = \$2`).
		WillReturnRows(txRows())
	mock.ExpectExec(`INSERT INTO "point_transactions"`).
		WithArgs(sqlmock.AnyArg(), "u1", "first_review", FirstReviewPoints, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// daily_review is issued unconditionally.
	mock.ExpectExec(`INSERT INTO "point_transactions"`).
		WithArgs(sqlmock.AnyArg(), "u1", "daily_review", DailyReviewPoints, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// No followers, so no fan-out rows.
	mock.ExpectQuery(`SELECT \* FROM "follows" WHERE followed_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	resp := postReview(t, app, `{"movieTitle":"Dune","rating":8,"body":"great"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Review  struct {
			ID        string `json:"id"`
			NumericID int64  `json:"numeric_id"`
			MovieSlug string `json:"movie_slug"`
		} `json:"review"`
	}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(42), body.Review.NumericID)
	assert.Equal(t, "dune", body.Review.MovieSlug)
	assert.Len(t, body.Review.ID, 24)
	require.NoError(t, mock.ExpectationsWereMet())
}
