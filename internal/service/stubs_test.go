package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-health-api/internal/models"
	"github.com/noah-isme/sma-health-api/internal/repository"
)

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

type stubTx struct {
	calls   int
	err     error
	exec    sqlx.ExtContext
	onBegin func()
}

func (s *stubTx) WithinTx(ctx context.Context, fn func(ctx context.Context, exec sqlx.ExtContext) error) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	if s.onBegin != nil {
		s.onBegin()
	}
	return fn(ctx, s.exec)
}

type stubPlanRepo struct {
	plans     map[string]*models.MedicalPlan
	deleted   []string
	createErr error
}

func newStubPlanRepo(plans ...models.MedicalPlan) *stubPlanRepo {
	repo := &stubPlanRepo{plans: map[string]*models.MedicalPlan{}}
	for i := range plans {
		plan := plans[i]
		repo.plans[plan.ID] = &plan
	}
	return repo
}

func (s *stubPlanRepo) Create(ctx context.Context, exec sqlx.ExtContext, plan *models.MedicalPlan) error {
	if s.createErr != nil {
		return s.createErr
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	clone := *plan
	s.plans[plan.ID] = &clone
	return nil
}

func (s *stubPlanRepo) FindByID(ctx context.Context, id string) (*models.MedicalPlan, error) {
	plan, ok := s.plans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *plan
	return &clone, nil
}

func (s *stubPlanRepo) Update(ctx context.Context, exec sqlx.ExtContext, plan *models.MedicalPlan) error {
	if _, ok := s.plans[plan.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *plan
	s.plans[plan.ID] = &clone
	return nil
}

func (s *stubPlanRepo) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, ok := s.plans[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.plans, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubConsentRepo struct {
	consents   map[string]*models.Consent
	steps      []string
	respondErr error
	listExecs  []sqlx.ExtContext
}

func newStubConsentRepo(consents ...models.Consent) *stubConsentRepo {
	repo := &stubConsentRepo{consents: map[string]*models.Consent{}}
	for i := range consents {
		consent := consents[i]
		repo.consents[consent.ID] = &consent
	}
	return repo
}

func (s *stubConsentRepo) CreateBatch(ctx context.Context, exec sqlx.ExtContext, consents []models.Consent) ([]models.Consent, error) {
	created := make([]models.Consent, 0, len(consents))
	for _, consent := range consents {
		exists := false
		for _, existing := range s.consents {
			if existing.StudentID == consent.StudentID && existing.ReferencePlanID == consent.ReferencePlanID && existing.ConsentType == consent.ConsentType {
				exists = true
			}
		}
		if exists {
			continue
		}
		consent.ID = uuid.NewString()
		consent.RequestedDate = time.Now()
		stored := consent
		s.consents[consent.ID] = &stored
		created = append(created, consent)
	}
	s.steps = append(s.steps, "consents:create")
	return created, nil
}

func (s *stubConsentRepo) DeleteByPlan(ctx context.Context, exec sqlx.ExtContext, planID string, consentType models.PlanType) (int64, error) {
	var removed int64
	for id, consent := range s.consents {
		if consent.ReferencePlanID == planID && consent.ConsentType == consentType {
			delete(s.consents, id)
			removed++
		}
	}
	s.steps = append(s.steps, "consents:delete")
	return removed, nil
}

func (s *stubConsentRepo) FindByID(ctx context.Context, id string) (*models.Consent, error) {
	consent, ok := s.consents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *consent
	return &clone, nil
}

func (s *stubConsentRepo) Respond(ctx context.Context, params repository.RespondParams) error {
	if s.respondErr != nil {
		return s.respondErr
	}
	consent, ok := s.consents[params.ID]
	if !ok || consent.Status != models.ConsentStatusPending {
		return sql.ErrNoRows
	}
	consent.Status = params.Status
	responded := params.ResponseDate
	consent.ResponseDate = &responded
	consent.Notes = params.Notes
	return nil
}

func (s *stubConsentRepo) ListByParent(ctx context.Context, parentID string, statuses []models.ConsentStatus) ([]models.ConsentDetail, error) {
	var result []models.ConsentDetail
	for _, consent := range s.consents {
		if consent.ParentID != parentID {
			continue
		}
		for _, status := range statuses {
			if consent.Status == status {
				result = append(result, models.ConsentDetail{Consent: *consent})
			}
		}
	}
	return result, nil
}

func (s *stubConsentRepo) ListByPlanAndStudents(ctx context.Context, exec sqlx.ExtContext, planID string, consentType models.PlanType, studentIDs []string) (map[string]models.Consent, error) {
	s.listExecs = append(s.listExecs, exec)
	result := map[string]models.Consent{}
	for _, consent := range s.consents {
		if consent.ReferencePlanID != planID || consent.ConsentType != consentType {
			continue
		}
		for _, id := range studentIDs {
			if consent.StudentID == id {
				result[id] = *consent
			}
		}
	}
	return result, nil
}

func (s *stubConsentRepo) forStudent(studentID string) *models.Consent {
	for _, consent := range s.consents {
		if consent.StudentID == studentID {
			return consent
		}
	}
	return nil
}

type stubStudentRepo struct {
	students map[string]models.Student
}

func newStubStudentRepo(students ...models.Student) *stubStudentRepo {
	repo := &stubStudentRepo{students: map[string]models.Student{}}
	for _, student := range students {
		repo.students[student.ID] = student
	}
	return repo
}

func (s *stubStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	student, ok := s.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &student, nil
}

func (s *stubStudentRepo) ListByIDs(ctx context.Context, ids []string) (map[string]models.Student, error) {
	result := map[string]models.Student{}
	for _, id := range ids {
		if student, ok := s.students[id]; ok {
			result[id] = student
		}
	}
	return result, nil
}

func (s *stubStudentRepo) ListByGradeWithParent(ctx context.Context, exec sqlx.ExtContext, grade string) ([]models.Student, error) {
	var result []models.Student
	for _, student := range s.students {
		if student.Grade == grade && student.Active && student.ParentID != nil {
			result = append(result, student)
		}
	}
	return result, nil
}

type stubNurseRepo struct {
	nurses map[string]models.Nurse
}

func newStubNurseRepo(nurses ...models.Nurse) *stubNurseRepo {
	repo := &stubNurseRepo{nurses: map[string]models.Nurse{}}
	for _, nurse := range nurses {
		repo.nurses[nurse.ID] = nurse
	}
	return repo
}

func (s *stubNurseRepo) FindByID(ctx context.Context, id string) (*models.Nurse, error) {
	nurse, ok := s.nurses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &nurse, nil
}

func (s *stubNurseRepo) FindByUserID(ctx context.Context, userID string) (*models.Nurse, error) {
	for _, nurse := range s.nurses {
		if nurse.UserID == userID {
			n := nurse
			return &n, nil
		}
	}
	return nil, sql.ErrNoRows
}

type stubParentRepo struct {
	parents map[string]models.Parent
}

func newStubParentRepo(parents ...models.Parent) *stubParentRepo {
	repo := &stubParentRepo{parents: map[string]models.Parent{}}
	for _, parent := range parents {
		repo.parents[parent.ID] = parent
	}
	return repo
}

func (s *stubParentRepo) FindByID(ctx context.Context, id string) (*models.Parent, error) {
	parent, ok := s.parents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &parent, nil
}

func (s *stubParentRepo) FindByUserID(ctx context.Context, userID string) (*models.Parent, error) {
	for _, parent := range s.parents {
		if parent.UserID == userID {
			p := parent
			return &p, nil
		}
	}
	return nil, sql.ErrNoRows
}

type stubUserRepo struct {
	users map[string]models.User
}

func newStubUserRepo(users ...models.User) *stubUserRepo {
	repo := &stubUserRepo{users: map[string]models.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (s *stubUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func (s *stubUserRepo) ListActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var result []models.User
	for _, user := range s.users {
		if user.Role == role && user.Active {
			result = append(result, user)
		}
	}
	return result, nil
}

type stubExecutionRepo struct {
	vaccinations map[string]*models.Vaccination
	checkups     map[string]*models.HealthCheckup
	steps        []string
}

func newStubExecutionRepo() *stubExecutionRepo {
	return &stubExecutionRepo{vaccinations: map[string]*models.Vaccination{}, checkups: map[string]*models.HealthCheckup{}}
}

func (s *stubExecutionRepo) CreateVaccinationIfAbsent(ctx context.Context, exec sqlx.ExtContext, record *models.Vaccination) (bool, error) {
	for _, existing := range s.vaccinations {
		if existing.PlanID == record.PlanID && existing.StudentID == record.StudentID {
			return false, nil
		}
	}
	record.ID = uuid.NewString()
	clone := *record
	s.vaccinations[record.ID] = &clone
	return true, nil
}

func (s *stubExecutionRepo) CreateCheckupIfAbsent(ctx context.Context, exec sqlx.ExtContext, record *models.HealthCheckup) (bool, error) {
	for _, existing := range s.checkups {
		if existing.PlanID == record.PlanID && existing.StudentID == record.StudentID {
			return false, nil
		}
	}
	record.ID = uuid.NewString()
	clone := *record
	s.checkups[record.ID] = &clone
	return true, nil
}

func (s *stubExecutionRepo) FindVaccinationByID(ctx context.Context, id string) (*models.Vaccination, error) {
	record, ok := s.vaccinations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *record
	return &clone, nil
}

func (s *stubExecutionRepo) FindCheckupByID(ctx context.Context, id string) (*models.HealthCheckup, error) {
	record, ok := s.checkups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *record
	return &clone, nil
}

func (s *stubExecutionRepo) UpdateVaccination(ctx context.Context, record *models.Vaccination) error {
	if _, ok := s.vaccinations[record.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *record
	s.vaccinations[record.ID] = &clone
	return nil
}

func (s *stubExecutionRepo) UpdateCheckup(ctx context.Context, record *models.HealthCheckup) error {
	if _, ok := s.checkups[record.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *record
	s.checkups[record.ID] = &clone
	return nil
}

func (s *stubExecutionRepo) DeleteVaccinationsByPlan(ctx context.Context, exec sqlx.ExtContext, planID string) (int64, error) {
	s.steps = append(s.steps, "vaccinations:delete")
	return 0, nil
}

func (s *stubExecutionRepo) DeleteCheckupsByPlan(ctx context.Context, exec sqlx.ExtContext, planID string) (int64, error) {
	s.steps = append(s.steps, "checkups:delete")
	return 0, nil
}

type stubAppointmentRepo struct {
	created []models.Appointment
	err     error
}

func (s *stubAppointmentRepo) Create(ctx context.Context, appointment *models.Appointment) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *appointment)
	return nil
}

type managerMessage struct {
	Title    string
	Content  string
	Type     models.NotificationType
	Priority models.NotificationPriority
}

type stubNotifier struct {
	parent   []ParentMessage
	managers []managerMessage
	err      error
}

func (s *stubNotifier) SendToParent(ctx context.Context, msg ParentMessage) error {
	if s.err != nil {
		return s.err
	}
	s.parent = append(s.parent, msg)
	return nil
}

func (s *stubNotifier) SendToManagers(ctx context.Context, title, content string, kind models.NotificationType, priority models.NotificationPriority) error {
	if s.err != nil {
		return s.err
	}
	s.managers = append(s.managers, managerMessage{Title: title, Content: content, Type: kind, Priority: priority})
	return nil
}

type mailCopy struct {
	To      string
	Title   string
	Content string
}

type stubMailer struct {
	mu       sync.Mutex
	consents []ConsentEmail
	copies   []mailCopy
}

func (s *stubMailer) SendConsentRequest(req ConsentEmail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consents = append(s.consents, req)
}

func (s *stubMailer) SendNotificationCopy(to, title, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copies = append(s.copies, mailCopy{To: to, Title: title, Content: content})
}

type stubCache struct {
	values      map[string]interface{}
	invalidated []string
	sets        int
}

func newStubCache() *stubCache {
	return &stubCache{values: map[string]interface{}{}}
}

func (s *stubCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	value, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if alerts, ok := dest.(*[]models.InventoryAlert); ok {
		*alerts = value.([]models.InventoryAlert)
	}
	return true, nil
}

func (s *stubCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.values[key] = value
	s.sets++
	return nil
}

func (s *stubCache) Invalidate(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	s.invalidated = append(s.invalidated, keys...)
	return nil
}
