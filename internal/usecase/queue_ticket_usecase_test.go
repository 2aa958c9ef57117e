package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
)

type ticketTestEnv struct {
	tickets  QueueTicketUsecase
	queues   QueueUsecase
	queueID  int64
	clinicID int64
}

func newTicketTestEnv(t *testing.T) *ticketTestEnv {
	t.Helper()
	clinics := newFakeClinicRepo()
	queueRepo := newFakeQueueRepo()
	ticketRepo := newFakeTicketRepo(queueRepo)
	events := newFakeEventRepo()
	boardService, eventService := testServices(events)

	queueUC := NewQueueUsecase(testDB(), testLogger(), queueRepo, clinics, boardService, eventService)
	ticketUC := NewQueueTicketUsecase(testDB(), testLogger(), ticketRepo, queueRepo, boardService, eventService)

	clinicID := seedClinic(t, clinics)
	queue, err := queueUC.CreateQueue(context.Background(), &dto.CreateQueueRequest{ClinicID: clinicID})
	if err != nil {
		t.Fatalf("seed queue: %v", err)
	}

	return &ticketTestEnv{
		tickets:  ticketUC,
		queues:   queueUC,
		queueID:  queue.ID,
		clinicID: clinicID,
	}
}

func (env *ticketTestEnv) enqueue(t *testing.T, priority int16) *dto.TicketResponse {
	t.Helper()
	ticket, err := env.tickets.CreateTicket(context.Background(), &dto.CreateTicketRequest{
		QueueID:  env.queueID,
		Priority: &priority,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	return ticket
}

func TestCreateTicketAssignsSequentialNumbers(t *testing.T) {
	env := newTicketTestEnv(t)

	for want := 1; want <= 3; want++ {
		ticket := env.enqueue(t, entity.PriorityNormal)
		if ticket.TicketNumber != want {
			t.Fatalf("ticket number=%d, want %d", ticket.TicketNumber, want)
		}
		if ticket.Status != string(entity.TicketStatusWaiting) {
			t.Fatalf("new ticket status=%s, want waiting", ticket.Status)
		}
	}
}

func TestCreateTicketQueueGone(t *testing.T) {
	env := newTicketTestEnv(t)

	if _, err := env.tickets.CreateTicket(context.Background(), &dto.CreateTicketRequest{QueueID: 99}); !errors.Is(err, ErrQueueNotFound) {
		t.Fatalf("got %v, want ErrQueueNotFound", err)
	}
}

func TestCreateTicketClosedQueue(t *testing.T) {
	env := newTicketTestEnv(t)

	if _, err := env.queues.UpdateQueue(context.Background(), env.queueID, &dto.UpdateQueueRequest{Status: "closed"}); err != nil {
		t.Fatalf("close queue: %v", err)
	}

	if _, err := env.tickets.CreateTicket(context.Background(), &dto.CreateTicketRequest{QueueID: env.queueID}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("got %v, want ErrQueueClosed", err)
	}
}

func TestCreateTicketInvalidPriority(t *testing.T) {
	env := newTicketTestEnv(t)

	badPriority := int16(5)
	if _, err := env.tickets.CreateTicket(context.Background(), &dto.CreateTicketRequest{
		QueueID:  env.queueID,
		Priority: &badPriority,
	}); !errors.Is(err, ErrInvalidTicketPriority) {
		t.Fatalf("got %v, want ErrInvalidTicketPriority", err)
	}
}

func TestNextToServeFastTrackFirst(t *testing.T) {
	env := newTicketTestEnv(t)

	env.enqueue(t, entity.PriorityNormal)
	env.enqueue(t, entity.PriorityNormal)
	fast := env.enqueue(t, entity.PriorityFastTrack)

	next, err := env.tickets.NextToServe(context.Background(), env.queueID)
	if err != nil {
		t.Fatalf("NextToServe: %v", err)
	}
	if next.Ticket == nil || next.Ticket.ID != fast.ID {
		t.Fatalf("next ticket=%v, want fast-track %d", next.Ticket, fast.ID)
	}
}

func TestNextToServeEmptyQueue(t *testing.T) {
	env := newTicketTestEnv(t)

	next, err := env.tickets.NextToServe(context.Background(), env.queueID)
	if err != nil {
		t.Fatalf("NextToServe: %v", err)
	}
	if next.Ticket != nil {
		t.Fatalf("expected nil ticket for empty queue, got %+v", next.Ticket)
	}
}

func TestCallNextSingleServingInvariant(t *testing.T) {
	env := newTicketTestEnv(t)

	first := env.enqueue(t, entity.PriorityNormal)
	second := env.enqueue(t, entity.PriorityNormal)

	called, err := env.tickets.CallNext(context.Background(), env.queueID)
	if err != nil {
		t.Fatalf("CallNext: %v", err)
	}
	if called.ID != first.ID {
		t.Fatalf("called ticket=%d, want %d", called.ID, first.ID)
	}
	if called.CalledAt == nil {
		t.Fatal("CalledAt not stamped")
	}

	// A second call while one ticket is being served is rejected
	if _, err := env.tickets.CallNext(context.Background(), env.queueID); !errors.Is(err, ErrTicketAlreadyCalled) {
		t.Fatalf("got %v, want ErrTicketAlreadyCalled", err)
	}

	// Completing the served ticket frees the slot
	status := string(entity.TicketStatusCompleted)
	if _, err := env.tickets.UpdateTicket(context.Background(), called.ID, &dto.UpdateTicketRequest{Status: &status}); err != nil {
		t.Fatalf("complete ticket: %v", err)
	}

	next, err := env.tickets.CallNext(context.Background(), env.queueID)
	if err != nil {
		t.Fatalf("CallNext after completion: %v", err)
	}
	if next.ID != second.ID {
		t.Fatalf("called ticket=%d, want %d", next.ID, second.ID)
	}
}

func TestCallNextEmptyQueue(t *testing.T) {
	env := newTicketTestEnv(t)

	if _, err := env.tickets.CallNext(context.Background(), env.queueID); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("got %v, want ErrTicketNotFound", err)
	}
}

func TestUpdateTicketIllegalTransition(t *testing.T) {
	env := newTicketTestEnv(t)
	ticket := env.enqueue(t, entity.PriorityNormal)

	// waiting -> completed skips called
	status := string(entity.TicketStatusCompleted)
	if _, err := env.tickets.UpdateTicket(context.Background(), ticket.ID, &dto.UpdateTicketRequest{Status: &status}); !errors.Is(err, ErrInvalidTicketTransition) {
		t.Fatalf("got %v, want ErrInvalidTicketTransition", err)
	}

	// Terminal states reject further moves
	if _, err := env.tickets.CallNext(context.Background(), env.queueID); err != nil {
		t.Fatalf("CallNext: %v", err)
	}
	noShow := string(entity.TicketStatusNoShow)
	if _, err := env.tickets.UpdateTicket(context.Background(), ticket.ID, &dto.UpdateTicketRequest{Status: &noShow}); err != nil {
		t.Fatalf("mark no_show: %v", err)
	}
	waiting := string(entity.TicketStatusWaiting)
	if _, err := env.tickets.UpdateTicket(context.Background(), ticket.ID, &dto.UpdateTicketRequest{Status: &waiting}); !errors.Is(err, ErrInvalidTicketTransition) {
		t.Fatalf("no_show -> waiting: got %v, want ErrInvalidTicketTransition", err)
	}
}

func TestUpdateTicketCallHonorsServingInvariant(t *testing.T) {
	env := newTicketTestEnv(t)

	first := env.enqueue(t, entity.PriorityNormal)
	second := env.enqueue(t, entity.PriorityNormal)

	// A status update to called goes through the transactional call
	// path and stamps called_at
	called := string(entity.TicketStatusCalled)
	updated, err := env.tickets.UpdateTicket(context.Background(), first.ID, &dto.UpdateTicketRequest{Status: &called})
	if err != nil {
		t.Fatalf("call via update: %v", err)
	}
	if updated.Status != string(entity.TicketStatusCalled) || updated.CalledAt == nil {
		t.Fatalf("ticket not called: %+v", updated)
	}

	// While one ticket is serving, no other ticket can be promoted
	// through the same path
	if _, err := env.tickets.UpdateTicket(context.Background(), second.ID, &dto.UpdateTicketRequest{Status: &called}); !errors.Is(err, ErrTicketAlreadyCalled) {
		t.Fatalf("got %v, want ErrTicketAlreadyCalled", err)
	}

	stored, err := env.tickets.GetTicket(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("reload second ticket: %v", err)
	}
	if stored.Status != string(entity.TicketStatusWaiting) {
		t.Fatalf("rejected ticket status=%s, want waiting", stored.Status)
	}
}

func TestUpdateTicketPriorityOnlyWhileWaiting(t *testing.T) {
	env := newTicketTestEnv(t)
	env.enqueue(t, entity.PriorityNormal)

	called, err := env.tickets.CallNext(context.Background(), env.queueID)
	if err != nil {
		t.Fatalf("CallNext: %v", err)
	}

	fast := entity.PriorityFastTrack
	if _, err := env.tickets.UpdateTicket(context.Background(), called.ID, &dto.UpdateTicketRequest{Priority: &fast}); !errors.Is(err, ErrTicketNotWaiting) {
		t.Fatalf("got %v, want ErrTicketNotWaiting", err)
	}

	stored, err := env.tickets.GetTicket(context.Background(), called.ID)
	if err != nil {
		t.Fatalf("reload ticket: %v", err)
	}
	if stored.Priority != entity.PriorityNormal {
		t.Fatalf("priority=%d changed on a called ticket", stored.Priority)
	}
}

func TestUpdateTicketStaleGuard(t *testing.T) {
	env := newTicketTestEnv(t)
	ticket := env.enqueue(t, entity.PriorityNormal)

	fast := entity.PriorityFastTrack
	stale := ticket.UpdatedAt.Add(-time.Minute)
	if _, err := env.tickets.UpdateTicket(context.Background(), ticket.ID, &dto.UpdateTicketRequest{
		Priority:          &fast,
		ExpectedUpdatedAt: &stale,
	}); !errors.Is(err, ErrStaleTicketUpdate) {
		t.Fatalf("got %v, want ErrStaleTicketUpdate", err)
	}

	fresh := ticket.UpdatedAt
	updated, err := env.tickets.UpdateTicket(context.Background(), ticket.ID, &dto.UpdateTicketRequest{
		Priority:          &fast,
		ExpectedUpdatedAt: &fresh,
	})
	if err != nil {
		t.Fatalf("update with matching timestamp: %v", err)
	}
	if updated.Priority != entity.PriorityFastTrack {
		t.Fatalf("priority=%d, want fast-track", updated.Priority)
	}
}

// TestWalkInMorning runs a small clinic morning end to end: open a
// queue, check in three walk-ins with one fast-track, serve them in
// priority order, and close up.
func TestWalkInMorning(t *testing.T) {
	env := newTicketTestEnv(t)

	regular1 := env.enqueue(t, entity.PriorityNormal)
	regular2 := env.enqueue(t, entity.PriorityNormal)
	urgent := env.enqueue(t, entity.PriorityFastTrack)

	serveOrder := []int64{urgent.ID, regular1.ID, regular2.ID}
	outcomes := []entity.TicketStatus{
		entity.TicketStatusCompleted,
		entity.TicketStatusNoShow,
		entity.TicketStatusCompleted,
	}

	for i, wantID := range serveOrder {
		called, err := env.tickets.CallNext(context.Background(), env.queueID)
		if err != nil {
			t.Fatalf("CallNext #%d: %v", i+1, err)
		}
		if called.ID != wantID {
			t.Fatalf("CallNext #%d returned ticket %d, want %d", i+1, called.ID, wantID)
		}

		status := string(outcomes[i])
		if _, err := env.tickets.UpdateTicket(context.Background(), called.ID, &dto.UpdateTicketRequest{Status: &status}); err != nil {
			t.Fatalf("resolve ticket %d: %v", called.ID, err)
		}
	}

	// Board shows an empty queue
	next, err := env.tickets.NextToServe(context.Background(), env.queueID)
	if err != nil {
		t.Fatalf("NextToServe: %v", err)
	}
	if next.Ticket != nil {
		t.Fatalf("queue should be drained, next=%+v", next.Ticket)
	}

	// End of day
	if _, err := env.queues.UpdateQueue(context.Background(), env.queueID, &dto.UpdateQueueRequest{Status: "closed"}); err != nil {
		t.Fatalf("close queue: %v", err)
	}
	if _, err := env.tickets.CreateTicket(context.Background(), &dto.CreateTicketRequest{QueueID: env.queueID}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("check-in after close: got %v, want ErrQueueClosed", err)
	}
}
