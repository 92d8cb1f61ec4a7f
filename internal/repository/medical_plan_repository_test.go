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

func TestMedicalPlanRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewMedicalPlanRepository(db)

	mock.ExpectExec("INSERT INTO medical_plans").WillReturnResult(sqlmock.NewResult(0, 1))

	plan := &models.MedicalPlan{PlanType: models.PlanTypeHealthCheckup, Name: "Khám định kỳ", TargetGrade: "3A", StartDate: time.Now(), EndDate: time.Now()}
	require.NoError(t, repo.Create(context.Background(), nil, plan))
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, models.PlanStatusPlanned, plan.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicalPlanRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewMedicalPlanRepository(db)

	rows := sqlmock.NewRows([]string{"id", "plan_type", "name", "description", "start_date", "end_date", "target_grade", "status", "created_by", "created_at"}).
		AddRow("plan-1", "VACCINATION", "Sởi", "", time.Now(), time.Now(), "3A", "PLANNED", "u-1", time.Now())
	mock.ExpectQuery("FROM medical_plans WHERE id").WithArgs("plan-1").WillReturnRows(rows)

	plan, err := repo.FindByID(context.Background(), "plan-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanTypeVaccination, plan.PlanType)
	assert.Equal(t, "3A", plan.TargetGrade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicalPlanRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewMedicalPlanRepository(db)

	mock.ExpectExec("DELETE FROM medical_plans").WithArgs("plan-x").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), nil, "plan-x")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
