package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-health-api/internal/models"
)

func TestExecutionRepositoryCreateIfAbsent(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewExecutionRepository(db)

	mock.ExpectExec("(?s)INSERT INTO vaccinations.*ON CONFLICT \\(plan_id, student_id\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("(?s)INSERT INTO health_checkups.*ON CONFLICT \\(plan_id, student_id\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.CreateVaccinationIfAbsent(context.Background(), nil, &models.Vaccination{PlanID: "plan-1", StudentID: "s-1", NurseID: "n-1", VaccinationDate: models.UnperformedDate})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateCheckupIfAbsent(context.Background(), nil, &models.HealthCheckup{PlanID: "plan-2", StudentID: "s-1", NurseID: "n-1", CheckupDate: models.UnperformedDate})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepositoryFindAndUpdateVaccination(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewExecutionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "plan_id", "student_id", "nurse_id", "vaccine_name", "batch_number", "dose_number", "vaccination_date", "reaction", "notes", "follow_up_required"}).
		AddRow("v-1", "plan-1", "s-1", "n-1", "", "", 1, models.UnperformedDate, "", "", false)
	mock.ExpectQuery("FROM vaccinations WHERE id").WithArgs("v-1").WillReturnRows(rows)
	mock.ExpectExec("UPDATE vaccinations SET").WillReturnResult(sqlmock.NewResult(0, 1))

	record, err := repo.FindVaccinationByID(context.Background(), "v-1")
	require.NoError(t, err)
	assert.True(t, models.IsUnperformed(record.VaccinationDate))

	record.VaccineName = "MMR"
	record.VaccinationDate = time.Now()
	require.NoError(t, repo.UpdateVaccination(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepositoryUpdateCheckupMissing(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewExecutionRepository(db)

	mock.ExpectExec("UPDATE health_checkups SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateCheckup(context.Background(), &models.HealthCheckup{ID: "hc-x"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepositoryDeleteByPlan(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewExecutionRepository(db)

	mock.ExpectExec("DELETE FROM vaccinations WHERE plan_id").WithArgs("plan-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM health_checkups WHERE plan_id").WithArgs("plan-2").WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.DeleteVaccinationsByPlan(context.Background(), nil, "plan-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	removed, err = repo.DeleteCheckupsByPlan(context.Background(), nil, "plan-2")
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
