package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/clipdeck/statistics-service/internal/models"
)

func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestUpsertClipRankings_InsertsOnMiss(t *testing.T) {
	gormDB, mock := newMockGormDB(t)
	repo := NewRankingRepository(gormDB)
	weekStart := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `weekly_clip_ranking`").
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectExec("INSERT INTO `weekly_clip_ranking`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.UpsertClipRankings([]models.WeeklyClipRanking{
		{WeekStart: weekStart, SubmissionID: "s1", WeekEnd: weekStart.AddDate(0, 0, 6), Platform: "YOUTUBE", Views: 100, Likes: 5, Engagement: 0.05, Rank: 1},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertClipRankings_UpdatesOnHit(t *testing.T) {
	gormDB, mock := newMockGormDB(t)
	repo := NewRankingRepository(gormDB)
	weekStart := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"week_start", "submission_id", "week_end", "platform", "views", "likes", "engagement", "rank"}).
		AddRow(weekStart, "s1", weekStart.AddDate(0, 0, 6), "YOUTUBE", 90, 4, 0.04, 2)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `weekly_clip_ranking`").WillReturnRows(rows)
	mock.ExpectExec("UPDATE `weekly_clip_ranking`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertClipRankings([]models.WeeklyClipRanking{
		{WeekStart: weekStart, SubmissionID: "s1", WeekEnd: weekStart.AddDate(0, 0, 6), Platform: "YOUTUBE", Views: 100, Likes: 5, Engagement: 0.05, Rank: 1},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetClipRankings_FiltersByPlatform(t *testing.T) {
	gormDB, mock := newMockGormDB(t)
	repo := NewRankingRepository(gormDB)
	weekStart := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"week_start", "submission_id", "week_end", "platform", "views", "likes", "engagement", "rank"}).
		AddRow(weekStart, "s1", weekStart.AddDate(0, 0, 6), "YOUTUBE", 100, 5, 0.05, 1)

	mock.ExpectQuery("SELECT \\* FROM `weekly_clip_ranking`").WillReturnRows(rows)

	result, err := repo.GetClipRankings(weekStart, "YOUTUBE", 50)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "s1", result[0].SubmissionID)
	require.NoError(t, mock.ExpectationsWereMet())
}
