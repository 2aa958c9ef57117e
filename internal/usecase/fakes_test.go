package usecase

import (
	"io"
	"sort"
	"time"

	"clinic-queue-manager/internal/domain/entity"
	"clinic-queue-manager/internal/domain/repository"
	"clinic-queue-manager/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// In-memory repository fakes. The real implementations enforce their
// contracts with transactions and conditional updates; the fakes mirror
// the same observable behavior so usecases can be exercised without a
// database.

func testDB() *gorm.DB {
	db := &gorm.DB{Config: &gorm.Config{}}
	db.Statement = &gorm.Statement{DB: db}
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testServices(events repository.QueueEventRepository) (*service.QueueBoardService, *service.QueueEventService) {
	log := testLogger()
	// Unreachable Redis: board publishes fail fast and are logged,
	// matching the best-effort contract
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 10 * time.Millisecond})
	return service.NewQueueBoardService(client, log), service.NewQueueEventService(testDB(), log, events)
}

type fakeClinicRepo struct {
	clinics map[int64]*entity.Clinic
	nextID  int64
}

func newFakeClinicRepo() *fakeClinicRepo {
	return &fakeClinicRepo{clinics: map[int64]*entity.Clinic{}}
}

func (r *fakeClinicRepo) Create(_ *gorm.DB, clinic *entity.Clinic) error {
	r.nextID++
	clinic.ID = r.nextID
	clinic.CreatedAt = time.Now()
	clinic.UpdatedAt = clinic.CreatedAt
	stored := *clinic
	r.clinics[clinic.ID] = &stored
	return nil
}

func (r *fakeClinicRepo) FindByID(_ *gorm.DB, id int64) (*entity.Clinic, error) {
	clinic, ok := r.clinics[id]
	if !ok {
		return nil, nil
	}
	copied := *clinic
	return &copied, nil
}

func (r *fakeClinicRepo) FindAll(_ *gorm.DB) ([]entity.Clinic, error) {
	var out []entity.Clinic
	for _, clinic := range r.clinics {
		out = append(out, *clinic)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeClinicRepo) Update(_ *gorm.DB, clinic *entity.Clinic) error {
	clinic.UpdatedAt = time.Now()
	stored := *clinic
	r.clinics[clinic.ID] = &stored
	return nil
}

func (r *fakeClinicRepo) Delete(_ *gorm.DB, id int64) (int64, error) {
	if _, ok := r.clinics[id]; !ok {
		return 0, nil
	}
	delete(r.clinics, id)
	return 1, nil
}

type fakeDoctorRepo struct {
	doctors map[int64]*entity.Doctor
	nextID  int64
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: map[int64]*entity.Doctor{}}
}

func (r *fakeDoctorRepo) Create(_ *gorm.DB, doctor *entity.Doctor) error {
	r.nextID++
	doctor.ID = r.nextID
	if doctor.IsActive == nil {
		active := true
		doctor.IsActive = &active
	}
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = doctor.CreatedAt
	stored := *doctor
	r.doctors[doctor.ID] = &stored
	return nil
}

func (r *fakeDoctorRepo) FindByID(_ *gorm.DB, id int64) (*entity.Doctor, error) {
	doctor, ok := r.doctors[id]
	if !ok {
		return nil, nil
	}
	copied := *doctor
	return &copied, nil
}

func (r *fakeDoctorRepo) FindByClinicID(_ *gorm.DB, clinicID int64) ([]entity.Doctor, error) {
	var out []entity.Doctor
	for _, doctor := range r.doctors {
		if doctor.ClinicID == clinicID {
			out = append(out, *doctor)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeDoctorRepo) Update(_ *gorm.DB, doctor *entity.Doctor) error {
	doctor.UpdatedAt = time.Now()
	stored := *doctor
	r.doctors[doctor.ID] = &stored
	return nil
}

func (r *fakeDoctorRepo) Delete(_ *gorm.DB, id int64) (int64, error) {
	if _, ok := r.doctors[id]; !ok {
		return 0, nil
	}
	delete(r.doctors, id)
	return 1, nil
}

type fakeScheduleRepo struct {
	schedules map[int64]*entity.DoctorSchedule
	nextID    int64
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: map[int64]*entity.DoctorSchedule{}}
}

func (r *fakeScheduleRepo) Create(_ *gorm.DB, schedule *entity.DoctorSchedule) error {
	r.nextID++
	schedule.ID = r.nextID
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = schedule.CreatedAt
	stored := *schedule
	r.schedules[schedule.ID] = &stored
	return nil
}

func (r *fakeScheduleRepo) FindByID(_ *gorm.DB, id int64) (*entity.DoctorSchedule, error) {
	schedule, ok := r.schedules[id]
	if !ok {
		return nil, nil
	}
	copied := *schedule
	return &copied, nil
}

func (r *fakeScheduleRepo) FindByDoctorID(_ *gorm.DB, doctorID int64) ([]entity.DoctorSchedule, error) {
	var matched []entity.DoctorSchedule
	for _, schedule := range r.schedules {
		if schedule.DoctorID == doctorID {
			matched = append(matched, *schedule)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func (r *fakeScheduleRepo) FindForDay(_ *gorm.DB, doctorID int64, dayOfWeek int, date time.Time) ([]entity.DoctorSchedule, error) {
	var matched []entity.DoctorSchedule
	for _, schedule := range r.schedules {
		if schedule.DoctorID == doctorID && schedule.DayOfWeek == dayOfWeek && schedule.ValidOn(date) {
			matched = append(matched, *schedule)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartTime < matched[j].StartTime })
	return matched, nil
}

func (r *fakeScheduleRepo) Update(_ *gorm.DB, schedule *entity.DoctorSchedule) error {
	schedule.UpdatedAt = time.Now()
	stored := *schedule
	r.schedules[schedule.ID] = &stored
	return nil
}

func (r *fakeScheduleRepo) Delete(_ *gorm.DB, id int64) (int64, error) {
	if _, ok := r.schedules[id]; !ok {
		return 0, nil
	}
	delete(r.schedules, id)
	return 1, nil
}

type fakeQueueRepo struct {
	queues map[int64]*entity.Queue
	nextID int64
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{queues: map[int64]*entity.Queue{}}
}

func (r *fakeQueueRepo) CreateOpen(_ *gorm.DB, queue *entity.Queue) error {
	for _, existing := range r.queues {
		if existing.ClinicID == queue.ClinicID && existing.Status.IsOpen() {
			return repository.ErrOpenQueueExists
		}
	}
	r.nextID++
	queue.ID = r.nextID
	queue.CreatedAt = time.Now()
	queue.UpdatedAt = queue.CreatedAt
	stored := *queue
	r.queues[queue.ID] = &stored
	return nil
}

func (r *fakeQueueRepo) FindByID(_ *gorm.DB, id int64) (*entity.Queue, error) {
	queue, ok := r.queues[id]
	if !ok {
		return nil, nil
	}
	copied := *queue
	return &copied, nil
}

func (r *fakeQueueRepo) List(_ *gorm.DB, filter entity.ListQueuesFilter) ([]entity.Queue, *int64, error) {
	var matched []entity.Queue
	for _, queue := range r.queues {
		if filter.ClinicID != nil && queue.ClinicID != *filter.ClinicID {
			continue
		}
		if len(filter.Statuses) > 0 {
			found := false
			for _, status := range filter.Statuses {
				if queue.Status == status {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		matched = append(matched, *queue)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	var total *int64
	if filter.IncludeCount {
		count := int64(len(matched))
		total = &count
	}

	offset := filter.Offset()
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + filter.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *fakeQueueRepo) UpdateStatus(_ *gorm.DB, id int64, from, to entity.QueueStatus, expectedUpdatedAt *time.Time, now time.Time) (int64, error) {
	queue, ok := r.queues[id]
	if !ok || queue.Status != from {
		return 0, nil
	}
	if expectedUpdatedAt != nil && !expectedUpdatedAt.Equal(queue.UpdatedAt) {
		return 0, nil
	}
	queue.Status = to
	queue.UpdatedAt = now
	return 1, nil
}

func (r *fakeQueueRepo) Delete(_ *gorm.DB, id int64) (int64, error) {
	if _, ok := r.queues[id]; !ok {
		return 0, nil
	}
	delete(r.queues, id)
	return 1, nil
}

func (r *fakeQueueRepo) CountByStatus(_ *gorm.DB, clinicID *int64) (map[entity.QueueStatus]int64, error) {
	counts := map[entity.QueueStatus]int64{}
	for _, queue := range r.queues {
		if clinicID != nil && queue.ClinicID != *clinicID {
			continue
		}
		counts[queue.Status]++
	}
	return counts, nil
}

type fakeTicketRepo struct {
	tickets map[int64]*entity.QueueTicket
	queues  *fakeQueueRepo
	nextID  int64
}

func newFakeTicketRepo(queues *fakeQueueRepo) *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[int64]*entity.QueueTicket{}, queues: queues}
}

func (r *fakeTicketRepo) CreateSequenced(_ *gorm.DB, ticket *entity.QueueTicket) error {
	queue, ok := r.queues.queues[ticket.QueueID]
	if !ok {
		return repository.ErrQueueNotFound
	}
	if queue.Status == entity.QueueStatusClosed {
		return repository.ErrQueueClosed
	}

	maxNumber := 0
	for _, existing := range r.tickets {
		if existing.QueueID == ticket.QueueID && existing.TicketNumber > maxNumber {
			maxNumber = existing.TicketNumber
		}
	}
	r.nextID++
	ticket.ID = r.nextID
	ticket.TicketNumber = maxNumber + 1
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) FindByID(_ *gorm.DB, id int64) (*entity.QueueTicket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListByQueue(_ *gorm.DB, filter entity.ListTicketsFilter) ([]entity.QueueTicket, error) {
	var out []entity.QueueTicket
	for _, ticket := range r.tickets {
		if ticket.QueueID != filter.QueueID {
			continue
		}
		if len(filter.Statuses) > 0 {
			found := false
			for _, status := range filter.Statuses {
				if ticket.Status == status {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketNumber < out[j].TicketNumber })
	return out, nil
}

func (r *fakeTicketRepo) NextWaiting(_ *gorm.DB, queueID int64) (*entity.QueueTicket, error) {
	var best *entity.QueueTicket
	for _, ticket := range r.tickets {
		if ticket.QueueID != queueID || ticket.Status != entity.TicketStatusWaiting {
			continue
		}
		if best == nil ||
			ticket.Priority > best.Priority ||
			(ticket.Priority == best.Priority && ticket.TicketNumber < best.TicketNumber) {
			best = ticket
		}
	}
	if best == nil {
		return nil, nil
	}
	copied := *best
	return &copied, nil
}

func (r *fakeTicketRepo) Call(_ *gorm.DB, ticketID, queueID int64, now time.Time) (*entity.QueueTicket, error) {
	if _, ok := r.queues.queues[queueID]; !ok {
		return nil, repository.ErrQueueNotFound
	}
	for _, ticket := range r.tickets {
		if ticket.QueueID == queueID && ticket.Status == entity.TicketStatusCalled {
			return nil, repository.ErrAlreadyServing
		}
	}
	ticket, ok := r.tickets[ticketID]
	if !ok || ticket.Status != entity.TicketStatusWaiting {
		return nil, repository.ErrNotWaiting
	}
	ticket.Status = entity.TicketStatusCalled
	calledAt := now
	ticket.CalledAt = &calledAt
	ticket.UpdatedAt = now
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) Update(_ *gorm.DB, id int64, fromStatus entity.TicketStatus, update repository.TicketUpdate, now time.Time) (int64, error) {
	ticket, ok := r.tickets[id]
	if !ok || ticket.Status != fromStatus {
		return 0, nil
	}
	if update.ExpectedUpdatedAt != nil && !update.ExpectedUpdatedAt.Equal(ticket.UpdatedAt) {
		return 0, nil
	}
	if update.Status != nil {
		ticket.Status = *update.Status
		stamp := now
		switch *update.Status {
		case entity.TicketStatusCalled:
			ticket.CalledAt = &stamp
		case entity.TicketStatusCompleted:
			ticket.CompletedAt = &stamp
		case entity.TicketStatusNoShow:
			ticket.NoShowAt = &stamp
		}
	}
	if update.Priority != nil {
		ticket.Priority = *update.Priority
	}
	ticket.UpdatedAt = now
	return 1, nil
}

func (r *fakeTicketRepo) Delete(_ *gorm.DB, id int64) (int64, error) {
	if _, ok := r.tickets[id]; !ok {
		return 0, nil
	}
	delete(r.tickets, id)
	return 1, nil
}

func (r *fakeTicketRepo) CountByStatus(_ *gorm.DB, queueID int64) (map[entity.TicketStatus]int64, error) {
	counts := map[entity.TicketStatus]int64{}
	for _, ticket := range r.tickets {
		if ticket.QueueID == queueID {
			counts[ticket.Status]++
		}
	}
	return counts, nil
}

type fakeAppointmentRepo struct {
	appointments map[int64]*entity.Appointment
	nextID       int64
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: map[int64]*entity.Appointment{}}
}

func (r *fakeAppointmentRepo) Create(_ *gorm.DB, appointment *entity.Appointment) error {
	r.nextID++
	appointment.ID = r.nextID
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt
	stored := *appointment
	r.appointments[appointment.ID] = &stored
	return nil
}

func (r *fakeAppointmentRepo) FindByID(_ *gorm.DB, id int64) (*entity.Appointment, error) {
	appointment, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	copied := *appointment
	return &copied, nil
}

func (r *fakeAppointmentRepo) List(_ *gorm.DB, filter repository.AppointmentFilter) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, appointment := range r.appointments {
		if filter.DoctorID != nil && appointment.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.ClinicID != nil && appointment.ClinicID != *filter.ClinicID {
			continue
		}
		if filter.PatientID != nil && appointment.PatientID != *filter.PatientID {
			continue
		}
		if filter.Status != nil && appointment.Status != *filter.Status {
			continue
		}
		out = append(out, *appointment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAppointmentRepo) CountOverlapping(_ *gorm.DB, doctorID int64, start, end time.Time, excludeID *int64) (int64, error) {
	var count int64
	for _, appointment := range r.appointments {
		if appointment.DoctorID != doctorID || !appointment.Status.Blocking() {
			continue
		}
		if excludeID != nil && appointment.ID == *excludeID {
			continue
		}
		if appointment.StartTime.Before(end) && appointment.EndTime.After(start) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAppointmentRepo) FindScheduledBetween(_ *gorm.DB, from, to time.Time) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, appointment := range r.appointments {
		if appointment.Status != entity.AppointmentStatusScheduled {
			continue
		}
		if appointment.StartTime.Before(from) || appointment.StartTime.After(to) {
			continue
		}
		out = append(out, *appointment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAppointmentRepo) Confirm(_ *gorm.DB, id int64, windowStart, windowEnd, now time.Time) (int64, error) {
	appointment, ok := r.appointments[id]
	if !ok || appointment.Status != entity.AppointmentStatusScheduled {
		return 0, nil
	}
	if appointment.StartTime.Before(windowStart) || appointment.StartTime.After(windowEnd) {
		return 0, nil
	}
	appointment.Status = entity.AppointmentStatusConfirmed
	appointment.UpdatedAt = now
	return 1, nil
}

func (r *fakeAppointmentRepo) Update(_ *gorm.DB, id int64, fromStatus entity.AppointmentStatus, update repository.AppointmentUpdate, now time.Time) (int64, error) {
	appointment, ok := r.appointments[id]
	if !ok || appointment.Status != fromStatus {
		return 0, nil
	}
	if update.ExpectedUpdatedAt != nil && !update.ExpectedUpdatedAt.Equal(appointment.UpdatedAt) {
		return 0, nil
	}
	if update.Status != nil {
		appointment.Status = *update.Status
	}
	if update.TreatmentSummary != nil {
		appointment.TreatmentSummary = *update.TreatmentSummary
	}
	appointment.UpdatedAt = now
	return 1, nil
}

func (r *fakeAppointmentRepo) CountTodayByStatus(_ *gorm.DB, clinicID *int64, dayStart, dayEnd time.Time) (map[entity.AppointmentStatus]int64, error) {
	counts := map[entity.AppointmentStatus]int64{}
	for _, appointment := range r.appointments {
		if clinicID != nil && appointment.ClinicID != *clinicID {
			continue
		}
		if appointment.StartTime.Before(dayStart) || !appointment.StartTime.Before(dayEnd) {
			continue
		}
		counts[appointment.Status]++
	}
	return counts, nil
}

type fakeEventRepo struct {
	events []entity.QueueEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{}
}

func (r *fakeEventRepo) Create(_ *gorm.DB, event *entity.QueueEvent) error {
	event.ID = int64(len(r.events) + 1)
	event.CreatedAt = time.Now()
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEventRepo) FindByQueueID(_ *gorm.DB, queueID int64, limit int) ([]entity.QueueEvent, error) {
	var out []entity.QueueEvent
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if r.events[i].QueueID == queueID {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}
