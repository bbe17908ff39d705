package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tutorhive/tutorhive/internal/models"
	"github.com/tutorhive/tutorhive/internal/utils"
)

// In-memory repository fakes mirroring the conditional-write semantics of the
// real Mongo/Postgres implementations.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) put(u models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := u
	r.users[u.ID] = &cp
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return utils.ErrConflict
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeUserRepo) ListPendingApproval(_ context.Context, limit, offset int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if !u.IsApproved {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListMentors(_ context.Context, limit, offset int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if u.Role == models.RoleMentor && u.IsApproved {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SetApproved(_ context.Context, id string, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return utils.ErrNotFound
	}
	u.IsApproved = approved
	return nil
}

func (r *fakeUserRepo) SetDocumentsVerified(_ context.Context, id string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return utils.ErrNotFound
	}
	u.DocumentsVerified = verified
	return nil
}

func (r *fakeUserRepo) UpdateRating(_ context.Context, id string, rating float64, totalReviews int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return utils.ErrNotFound
	}
	u.Rating = rating
	u.TotalReviews = totalReviews
	return nil
}

func (r *fakeUserRepo) ApprovedVerifiedStudentIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, u := range r.users {
		if u.Role == models.RoleStudent && u.IsApproved && u.DocumentsVerified {
			out = append(out, u.ID)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*models.SessionRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]*models.SessionRequest{}}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *models.SessionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.StudentID == req.StudentID &&
			existing.MentorID == req.MentorID &&
			existing.Status == models.RequestPending {
			return utils.ErrConflict
		}
	}
	cp := *req
	r.requests[req.RequestID] = &cp
	return nil
}

func (r *fakeRequestRepo) GetByRequestID(_ context.Context, requestID string) (*models.SessionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) HasPending(_ context.Context, studentID, mentorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.StudentID == studentID && req.MentorID == mentorID && req.Status == models.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRequestRepo) ListByStudent(_ context.Context, studentID string, limit, offset int64) ([]models.SessionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.SessionRequest{}
	for _, req := range r.requests {
		if req.StudentID == studentID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByMentor(_ context.Context, mentorID string, limit, offset int64) ([]models.SessionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.SessionRequest{}
	for _, req := range r.requests {
		if req.MentorID == mentorID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) AcceptIfPending(_ context.Context, requestID, responseMessage string, scheduledAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok || req.Status != models.RequestPending {
		return false, nil
	}
	req.Status = models.RequestAccepted
	req.ResponseMessage = responseMessage
	t := scheduledAt.UTC()
	req.ScheduledAt = &t
	return true, nil
}

func (r *fakeRequestRepo) RejectIfPending(_ context.Context, requestID, responseMessage string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok || req.Status != models.RequestPending {
		return false, nil
	}
	req.Status = models.RequestRejected
	req.ResponseMessage = responseMessage
	return true, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.Session{}}
}

func (r *fakeSessionRepo) put(s models.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := s
	r.sessions[s.SessionID] = &cp
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *fakeSessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Participants == nil {
		s.Participants = []string{}
	}
	cp := *s
	r.sessions[s.SessionID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetBySessionID(_ context.Context, sessionID string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *s
	cp.Participants = append([]string{}, s.Participants...)
	return &cp, nil
}

func (r *fakeSessionRepo) Join(_ context.Context, sessionID, userID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if s.Status != models.SessionScheduled && s.Status != models.SessionActive {
		return false, nil
	}
	if !s.ScheduledAt.After(now) {
		return false, nil
	}
	for _, p := range s.Participants {
		if p == userID {
			return false, nil
		}
	}
	if len(s.Participants) >= s.Capacity {
		return false, nil
	}
	s.Participants = append(s.Participants, userID)
	s.Status = models.SessionActive
	return true, nil
}

func (r *fakeSessionRepo) CompleteIfOpen(_ context.Context, sessionID, completedBy, notes string, actualDuration int, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || (s.Status != models.SessionScheduled && s.Status != models.SessionActive) {
		return false, nil
	}
	s.Status = models.SessionCompleted
	s.CompletedBy = completedBy
	if notes != "" {
		s.Notes = notes
	}
	if actualDuration > 0 {
		s.ActualDurationMinutes = actualDuration
	}
	t := now.UTC()
	s.CompletedAt = &t
	return true, nil
}

func (r *fakeSessionRepo) CancelIfOpen(_ context.Context, sessionID, cancelledBy, reason string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || (s.Status != models.SessionScheduled && s.Status != models.SessionActive) {
		return false, nil
	}
	s.Status = models.SessionCancelled
	s.CancelledBy = cancelledBy
	s.CancelReason = reason
	t := now.UTC()
	s.CancelledAt = &t
	return true, nil
}

func (r *fakeSessionRepo) ListAvailable(_ context.Context, now time.Time, limit int64) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Session{}
	for _, s := range r.sessions {
		joinable := s.Status == models.SessionScheduled || s.Status == models.SessionActive
		if joinable && s.ScheduledAt.After(now) && len(s.Participants) < s.Capacity {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ListForUser(_ context.Context, userID string, limit, offset int64) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Session{}
	for _, s := range r.sessions {
		if s.MentorID == userID || s.HasParticipant(userID) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) AudienceForMentor(_ context.Context, mentorID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, s := range r.sessions {
		if s.MentorID != mentorID || s.Status == models.SessionCancelled {
			continue
		}
		for _, p := range s.Participants {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) byType(typ models.NotificationType) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Notification{}
	for _, n := range r.notifications {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) CreateMany(_ context.Context, ns []models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, ns...)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool, limit, offset int64) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Notification{}
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, x := range r.notifications {
		if x.RecipientID == recipientID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, notificationID, recipientID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].NotificationID == notificationID && r.notifications[i].RecipientID == recipientID {
			r.notifications[i].IsRead = true
			t := now.UTC()
			r.notifications[i].ReadAt = &t
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	t := now.UTC()
	for i := range r.notifications {
		if r.notifications[i].RecipientID == recipientID && !r.notifications[i].IsRead {
			r.notifications[i].IsRead = true
			r.notifications[i].ReadAt = &t
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) RecipientsNotified(_ context.Context, relatedID string, typ models.NotificationType) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for _, n := range r.notifications {
		if n.RelatedID == relatedID && n.Type == typ {
			out[n.RecipientID] = true
		}
	}
	return out, nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]*models.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[string]*models.Review{}}
}

func (r *fakeReviewRepo) Create(_ context.Context, rv *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.SessionID == rv.SessionID && existing.ReviewerID == rv.ReviewerID {
			return utils.ErrConflict
		}
	}
	cp := *rv
	r.reviews[rv.ReviewID] = &cp
	return nil
}

func (r *fakeReviewRepo) GetByReviewID(_ context.Context, reviewID string) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[reviewID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *rv
	return &cp, nil
}

func (r *fakeReviewRepo) Update(_ context.Context, reviewID string, rating int, comment string, isPublic bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[reviewID]
	if !ok {
		return utils.ErrNotFound
	}
	rv.Rating = rating
	rv.Comment = comment
	rv.IsPublic = isPublic
	return nil
}

func (r *fakeReviewRepo) Delete(_ context.Context, reviewID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[reviewID]; !ok {
		return utils.ErrNotFound
	}
	delete(r.reviews, reviewID)
	return nil
}

func (r *fakeReviewRepo) ExistsForSessionReviewer(_ context.Context, sessionID, reviewerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.SessionID == sessionID && rv.ReviewerID == reviewerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReviewRepo) ListByReviewee(_ context.Context, revieweeID string, publicOnly bool, limit, offset int64) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Review{}
	for _, rv := range r.reviews {
		if rv.RevieweeID != revieweeID {
			continue
		}
		if publicOnly && !rv.IsPublic {
			continue
		}
		out = append(out, *rv)
	}
	return out, nil
}

func (r *fakeReviewRepo) Summarize(_ context.Context, revieweeID string) (models.RatingSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum, count := 0, 0
	for _, rv := range r.reviews {
		if rv.RevieweeID == revieweeID {
			sum += rv.Rating
			count++
		}
	}
	if count == 0 {
		return models.RatingSummary{}, nil
	}
	return models.RatingSummary{Average: float64(sum) / float64(count), Count: count}, nil
}

type fakeFanoutQueue struct {
	mu       sync.Mutex
	enqueued []string
}

func (q *fakeFanoutQueue) Enqueue(_ context.Context, sessionID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, sessionID)
	return nil
}
