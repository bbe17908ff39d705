package services

import (
	"context"
	"testing"
	"time"

	"github.com/tutorhive/tutorhive/internal/models"
	"github.com/tutorhive/tutorhive/internal/utils"
)

func newFanoutFixture() (FanoutService, *fakeSessionRepo, *fakeNotificationRepo, *fakeUserRepo) {
	sessions := newFakeSessionRepo()
	notifications := newFakeNotificationRepo()
	users := newFakeUserRepo()
	return NewFanoutService(sessions, notifications, users), sessions, notifications, users
}

func verifiedStudent(id string) models.User {
	return models.User{
		ID:                id,
		Email:             id + "@example.com",
		Role:              models.RoleStudent,
		IsApproved:        true,
		DocumentsVerified: true,
	}
}

func publishedSession(id, mentorID string) models.Session {
	return models.Session{
		SessionID:       id,
		MentorID:        mentorID,
		Title:           "Open study group",
		ScheduledAt:     time.Now().UTC().Add(24 * time.Hour),
		DurationMinutes: 60,
		MeetLink:        "https://meet.example/open",
		Capacity:        10,
		Participants:    []string{},
		Status:          models.SessionScheduled,
	}
}

func TestBroadcastToPriorStudents(t *testing.T) {
	svc, sessions, notifications, users := newFanoutFixture()

	// mentor history: two past sessions with three distinct students
	old1 := publishedSession("old-1", "mentor-1")
	old1.Status = models.SessionCompleted
	old1.Participants = []string{"alice", "bob"}
	sessions.put(old1)

	old2 := publishedSession("old-2", "mentor-1")
	old2.Status = models.SessionCompleted
	old2.Participants = []string{"bob", "carol"}
	sessions.put(old2)

	// verified students who never sat with this mentor must not be reached
	users.put(verifiedStudent("dave"))

	sessions.put(publishedSession("sess-new", "mentor-1"))

	res, err := svc.Broadcast(context.Background(), "sess-new")
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if res.Sent != 3 || res.Skipped != 0 {
		t.Errorf("result = %+v, want {Sent:3 Skipped:0}", res)
	}

	got := notifications.byType(models.NotifSessionPublished)
	recipients := map[string]bool{}
	for _, n := range got {
		if n.RelatedID != "sess-new" {
			t.Errorf("related id = %q, want sess-new", n.RelatedID)
		}
		recipients[n.RecipientID] = true
	}
	for _, want := range []string{"alice", "bob", "carol"} {
		if !recipients[want] {
			t.Errorf("missing notification for %s", want)
		}
	}
	if recipients["dave"] {
		t.Error("dave never studied with this mentor and must not be notified")
	}
}

func TestBroadcastFallbackToAllStudents(t *testing.T) {
	svc, sessions, notifications, users := newFanoutFixture()

	users.put(verifiedStudent("alice"))
	users.put(verifiedStudent("bob"))
	users.put(models.User{ID: "carol", Role: models.RoleStudent, IsApproved: true}) // not verified
	users.put(approvedMentor("mentor-2"))

	sessions.put(publishedSession("sess-new", "mentor-1"))

	res, err := svc.Broadcast(context.Background(), "sess-new")
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if res.Sent != 2 {
		t.Errorf("sent = %d, want 2 (approved and verified students only)", res.Sent)
	}

	for _, n := range notifications.byType(models.NotifSessionPublished) {
		if n.RecipientID == "carol" || n.RecipientID == "mentor-2" {
			t.Errorf("unexpected recipient %q", n.RecipientID)
		}
	}
}

func TestBroadcastIdempotent(t *testing.T) {
	svc, sessions, notifications, users := newFanoutFixture()

	users.put(verifiedStudent("alice"))
	users.put(verifiedStudent("bob"))
	sessions.put(publishedSession("sess-new", "mentor-1"))

	first, err := svc.Broadcast(context.Background(), "sess-new")
	if err != nil {
		t.Fatalf("first Broadcast: %v", err)
	}
	if first.Sent != 2 {
		t.Fatalf("first sent = %d, want 2", first.Sent)
	}

	// replay, as the stream consumer does after a redelivery
	second, err := svc.Broadcast(context.Background(), "sess-new")
	if err != nil {
		t.Fatalf("second Broadcast: %v", err)
	}
	if second.Sent != 0 || second.Skipped != 2 {
		t.Errorf("second result = %+v, want {Sent:0 Skipped:2}", second)
	}
	if got := notifications.byType(models.NotifSessionPublished); len(got) != 2 {
		t.Errorf("total notifications = %d, want 2", len(got))
	}
}

func TestBroadcastExcludesMentorAndParticipants(t *testing.T) {
	svc, sessions, notifications, users := newFanoutFixture()

	users.put(verifiedStudent("alice"))
	users.put(verifiedStudent("bob"))

	s := publishedSession("sess-new", "mentor-1")
	s.Participants = []string{"alice"} // already in, nothing to announce to her
	sessions.put(s)

	res, err := svc.Broadcast(context.Background(), "sess-new")
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if res.Sent != 1 {
		t.Errorf("sent = %d, want 1", res.Sent)
	}
	got := notifications.byType(models.NotifSessionPublished)
	if len(got) != 1 || got[0].RecipientID != "bob" {
		t.Errorf("notifications = %+v, want one for bob", got)
	}
}

func TestBroadcastTerminalSessionNoop(t *testing.T) {
	svc, sessions, notifications, users := newFanoutFixture()

	users.put(verifiedStudent("alice"))

	s := publishedSession("sess-new", "mentor-1")
	s.Status = models.SessionCancelled
	sessions.put(s)

	res, err := svc.Broadcast(context.Background(), "sess-new")
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if res.Sent != 0 || res.Skipped != 0 {
		t.Errorf("result = %+v, want zero", res)
	}
	if got := notifications.byType(models.NotifSessionPublished); len(got) != 0 {
		t.Errorf("notifications = %d, want 0", len(got))
	}
}

func TestBroadcastUnknownSession(t *testing.T) {
	svc, _, _, _ := newFanoutFixture()

	if _, err := svc.Broadcast(context.Background(), "missing"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}
