package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func malformedUUID() error {
	return &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
}

func TestIsMissing(t *testing.T) {
	assert.True(t, isMissing(sql.ErrNoRows))
	assert.True(t, isMissing(fmt.Errorf("wrapped: %w", sql.ErrNoRows)))
	assert.True(t, isMissing(malformedUUID()))
	assert.False(t, isMissing(&pq.Error{Code: "23505"}))
	assert.False(t, isMissing(sql.ErrConnDone))
}

func TestRepositoriesTreatMalformedIDAsMissing(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	ctx := context.Background()

	mock.ExpectQuery("FROM medical_plans WHERE id").WithArgs("abc").WillReturnError(malformedUUID())
	_, err := NewMedicalPlanRepository(db).FindByID(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec("DELETE FROM medical_plans").WithArgs("abc").WillReturnError(malformedUUID())
	assert.ErrorIs(t, NewMedicalPlanRepository(db).Delete(ctx, nil, "abc"), sql.ErrNoRows)

	mock.ExpectQuery("FROM consents WHERE id").WithArgs("abc").WillReturnError(malformedUUID())
	_, err = NewConsentRepository(db).FindByID(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec("UPDATE consents SET status").WillReturnError(malformedUUID())
	err = NewConsentRepository(db).Respond(ctx, RespondParams{ID: "abc", Status: "APPROVED"})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec("UPDATE medical_notifications").WillReturnError(malformedUUID())
	assert.ErrorIs(t, NewNotificationRepository(db).MarkRead(ctx, "p-1", "abc"), sql.ErrNoRows)

	mock.ExpectQuery("FROM vaccinations WHERE id").WithArgs("abc").WillReturnError(malformedUUID())
	_, err = NewExecutionRepository(db).FindVaccinationByID(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery("FROM students WHERE id = ANY").WillReturnError(malformedUUID())
	students, err := NewStudentRepository(db).ListByIDs(ctx, []string{"abc"})
	require.NoError(t, err)
	assert.Empty(t, students)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoriesWrapOtherDriverErrors(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectQuery("FROM medical_plans WHERE id").WillReturnError(&pq.Error{Code: "57014", Message: "canceling statement"})
	_, err := NewMedicalPlanRepository(db).FindByID(context.Background(), "plan-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, sql.ErrNoRows)
	assert.Contains(t, err.Error(), "find medical plan")
	assert.NoError(t, mock.ExpectationsWereMet())
}
