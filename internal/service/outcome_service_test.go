package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-health-api/internal/dto"
	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

type outcomeFixture struct {
	records      *stubExecutionRepo
	appointments *stubAppointmentRepo
	notifier     *stubNotifier
	svc          *OutcomeService
	now          time.Time
}

func newOutcomeFixture() *outcomeFixture {
	f := &outcomeFixture{
		records:      newStubExecutionRepo(),
		appointments: &stubAppointmentRepo{},
		notifier:     &stubNotifier{},
		now:          time.Date(2026, 11, 3, 9, 30, 0, 0, time.UTC),
	}
	f.records.vaccinations["v-1"] = &models.Vaccination{ID: "v-1", PlanID: "plan-1", StudentID: "s-1", NurseID: "n-1", VaccineName: "Sởi", VaccinationDate: models.UnperformedDate}
	f.records.checkups["hc-1"] = &models.HealthCheckup{ID: "hc-1", PlanID: "plan-2", StudentID: "s-1", NurseID: "n-1", CheckupType: "Tổng quát", CheckupDate: models.UnperformedDate}
	students := newStubStudentRepo(models.Student{ID: "s-1", FullName: "An", ParentID: strPtr("p-1")})
	f.svc = NewOutcomeService(f.records, students, f.appointments, f.notifier, nil, zap.NewNop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestOutcomeServiceVaccinationDefaultsReaction(t *testing.T) {
	f := newOutcomeFixture()

	record, err := f.svc.UpdateVaccination(context.Background(), "v-1", dto.UpdateVaccinationRequest{VaccineName: strPtr("X"), Reaction: strPtr("")}, "n-1")
	require.NoError(t, err)
	assert.Equal(t, f.now, record.VaccinationDate)
	assert.False(t, models.IsUnperformed(f.records.vaccinations["v-1"].VaccinationDate))

	require.Len(t, f.notifier.parent, 1)
	msg := f.notifier.parent[0]
	assert.Equal(t, models.NotificationTypeVaccination, msg.Type)
	assert.Equal(t, "s-1", msg.StudentID)
	assert.Equal(t, "n-1", msg.NurseID)
	assert.Contains(t, msg.Content, "X")
	assert.Contains(t, msg.Content, "không có phản ứng")
}

func TestOutcomeServiceVaccinationOtherNurse(t *testing.T) {
	f := newOutcomeFixture()

	_, err := f.svc.UpdateVaccination(context.Background(), "v-1", dto.UpdateVaccinationRequest{VaccineName: strPtr("X")}, "n-2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.True(t, models.IsUnperformed(f.records.vaccinations["v-1"].VaccinationDate))
	assert.Empty(t, f.notifier.parent)
}

func TestOutcomeServiceCheckupWithoutFollowUp(t *testing.T) {
	f := newOutcomeFixture()

	record, err := f.svc.UpdateCheckup(context.Background(), "hc-1", dto.UpdateCheckupRequest{Result: strPtr("Bình thường")}, "n-1")
	require.NoError(t, err)
	assert.Equal(t, f.now, record.CheckupDate)
	assert.Empty(t, f.appointments.created)
	require.Len(t, f.notifier.parent, 1)
	assert.Equal(t, models.NotificationTypeHealthCheckup, f.notifier.parent[0].Type)
	assert.Contains(t, f.notifier.parent[0].Content, "Bình thường")
}

func TestOutcomeServiceCheckupWithFollowUp(t *testing.T) {
	f := newOutcomeFixture()

	_, err := f.svc.UpdateCheckup(context.Background(), "hc-1", dto.UpdateCheckupRequest{
		Result:           strPtr("Cận thị"),
		FollowUpRequired: boolPtr(true),
	}, "n-1")
	require.NoError(t, err)

	require.Len(t, f.appointments.created, 1)
	appointment := f.appointments.created[0]
	assert.Equal(t, "Tư vấn sau khám sức khỏe", appointment.Reason)
	assert.Equal(t, models.AppointmentStatusPending, appointment.Status)
	assert.Equal(t, f.now.Add(24*time.Hour), appointment.ScheduledDate)
	require.NotNil(t, appointment.ParentID)
	assert.Equal(t, "p-1", *appointment.ParentID)

	require.Len(t, f.notifier.parent, 1)
	assert.Equal(t, models.NotificationTypeAppointment, f.notifier.parent[0].Type)
}

func TestOutcomeServiceSideEffectFailuresAreSwallowed(t *testing.T) {
	f := newOutcomeFixture()
	f.notifier.err = errors.New("smtp down")
	f.appointments.err = errors.New("insert failed")

	_, err := f.svc.UpdateCheckup(context.Background(), "hc-1", dto.UpdateCheckupRequest{FollowUpRequired: boolPtr(true)}, "n-1")
	require.NoError(t, err)
	assert.True(t, f.records.checkups["hc-1"].FollowUpRequired)

	_, err = f.svc.UpdateVaccination(context.Background(), "v-1", dto.UpdateVaccinationRequest{Reaction: strPtr("sốt nhẹ")}, "n-1")
	require.NoError(t, err)
	assert.Equal(t, "sốt nhẹ", f.records.vaccinations["v-1"].Reaction)
}

func TestOutcomeServiceMissingRecords(t *testing.T) {
	f := newOutcomeFixture()

	_, err := f.svc.UpdateCheckup(context.Background(), "missing", dto.UpdateCheckupRequest{}, "n-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.UpdateVaccination(context.Background(), "missing", dto.UpdateVaccinationRequest{}, "n-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
