package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tenancy-service/internal/apperror"
	"github.com/suteetoe/tenancy-service/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type complaintFixture struct {
	db      *gorm.DB
	clock   *fakeClock
	service *ComplaintService
	tenant  *model.User
}

func newComplaintFixture(t *testing.T) *complaintFixture {
	t.Helper()
	clock := newFakeClock()
	db := newTestDB(t, clock)
	return &complaintFixture{
		db:      db,
		clock:   clock,
		service: NewComplaintService(db, zap.NewNop()).WithClock(clock.Now),
		tenant:  seedUser(t, db, "9876543210"),
	}
}

func (f *complaintFixture) create(t *testing.T, reporter *model.User, description string) *model.Complaint {
	t.Helper()
	complaint, err := f.service.Create(context.Background(), identityOf(reporter), CreateComplaintInput{
		Description: description,
		Category:    model.CategoryPlumbing,
	})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	return complaint
}

func (f *complaintFixture) reload(t *testing.T, id string) model.Complaint {
	t.Helper()
	var c model.Complaint
	require.NoError(t, f.db.First(&c, "id = ?", id).Error)
	return c
}

func statusPtr(s model.ComplaintStatus) *model.ComplaintStatus { return &s }

func TestComplaintCreate(t *testing.T) {
	ctx := context.Background()
	f := newComplaintFixture(t)

	t.Run("creates an open complaint on the reporter's property", func(t *testing.T) {
		complaint, err := f.service.Create(ctx, identityOf(f.tenant), CreateComplaintInput{
			Title:       strPtr("Kitchen tap"),
			Description: "Leaking tap",
			Category:    model.CategoryPlumbing,
			IssueImages: []string{"https://cdn.example.com/tap.jpg"},
		})
		require.NoError(t, err)

		assert.Equal(t, model.StatusOpen, complaint.Status)
		assert.Equal(t, model.PriorityMedium, complaint.Priority)
		assert.Equal(t, f.tenant.ID, complaint.UserID)
		assert.Equal(t, f.tenant.PropertyID, complaint.PropertyID)
		assert.Equal(t, []string{"https://cdn.example.com/tap.jpg"}, []string(complaint.IssueImages))
		assert.Empty(t, complaint.IssueVideos)
		assert.Nil(t, complaint.StartedAt)
		assert.Nil(t, complaint.ResolvedAt)
		assert.Nil(t, complaint.ClosedAt)

		require.NotNil(t, complaint.Reporter)
		assert.Equal(t, "9876543210", complaint.Reporter.Mobile)
		require.NotNil(t, complaint.Property)
		assert.Equal(t, f.tenant.PropertyID, complaint.Property.ID)
	})

	t.Run("requires description and category", func(t *testing.T) {
		_, err := f.service.Create(ctx, identityOf(f.tenant), CreateComplaintInput{Category: model.CategoryPlumbing})
		assert.ErrorIs(t, err, ErrComplaintFieldsEmpty)

		_, err = f.service.Create(ctx, identityOf(f.tenant), CreateComplaintInput{Description: "Leaking tap"})
		assert.ErrorIs(t, err, ErrComplaintFieldsEmpty)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := f.service.Create(ctx, identityOf(f.tenant), CreateComplaintInput{
			Description: "Weeds",
			Category:    "GARDENING",
		})
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})
}

func TestComplaintUpdateTimestamps(t *testing.T) {
	ctx := context.Background()
	f := newComplaintFixture(t)
	complaint := f.create(t, f.tenant, "Leaking tap")

	startedAt := f.clock.Now()
	updated, err := f.service.Update(ctx, complaint.ID, UpdateComplaintInput{Status: statusPtr(model.StatusInProgress)})
	require.NoError(t, err)
	require.NotNil(t, updated.StartedAt)
	assert.WithinDuration(t, startedAt, *updated.StartedAt, time.Millisecond)

	t.Run("second IN_PROGRESS keeps startedAt", func(t *testing.T) {
		f.clock.Advance(time.Hour)
		again, err := f.service.Update(ctx, complaint.ID, UpdateComplaintInput{Status: statusPtr(model.StatusInProgress)})
		require.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, again.Status)
		assert.WithinDuration(t, startedAt, *again.StartedAt, time.Millisecond)
	})

	t.Run("resolvedAt stamped once", func(t *testing.T) {
		f.clock.Advance(time.Hour)
		resolvedAt := f.clock.Now()
		resolved, err := f.service.Update(ctx, complaint.ID, UpdateComplaintInput{Status: statusPtr(model.StatusResolved)})
		require.NoError(t, err)
		require.NotNil(t, resolved.ResolvedAt)
		assert.WithinDuration(t, resolvedAt, *resolved.ResolvedAt, time.Millisecond)

		f.clock.Advance(time.Hour)
		_, err = f.service.Update(ctx, complaint.ID, UpdateComplaintInput{Status: statusPtr(model.StatusInProgress)})
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
		again, err := f.service.Update(ctx, complaint.ID, UpdateComplaintInput{Status: statusPtr(model.StatusResolved)})
		require.NoError(t, err)

		assert.WithinDuration(t, resolvedAt, *again.ResolvedAt, time.Millisecond)
		assert.WithinDuration(t, startedAt, *again.StartedAt, time.Millisecond)
	})
}

func TestComplaintUpdatePatch(t *testing.T) {
	ctx := context.Background()
	f := newComplaintFixture(t)
	complaint := f.create(t, f.tenant, "Broken switch")

	before := []string{"before-1.jpg", "before-2.jpg"}
	updated, err := f.service.Update(ctx, complaint.ID, UpdateComplaintInput{
		WorkNotes:    strPtr("Replaced switch plate"),
		BeforeImages: &before,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, updated.Status)
	assert.Equal(t, "Replaced switch plate", *updated.WorkNotes)
	assert.Nil(t, updated.WorkDescription)
	assert.Equal(t, before, []string(updated.BeforeImages))

	replacement := []string{"before-3.jpg"}
	updated, err = f.service.Update(ctx, complaint.ID, UpdateComplaintInput{
		BeforeImages: &replacement,
		Priority:     func() *model.ComplaintPriority { p := model.PriorityUrgent; return &p }(),
	})
	require.NoError(t, err)
	assert.Equal(t, replacement, []string(updated.BeforeImages), "lists are replaced, not appended")
	assert.Equal(t, "Replaced switch plate", *updated.WorkNotes)
	assert.Equal(t, model.PriorityUrgent, updated.Priority)
}

func TestComplaintUpdateRejections(t *testing.T) {
	ctx := context.Background()
	f := newComplaintFixture(t)
	complaint := f.create(t, f.tenant, "Leaking tap")

	tests := []struct {
		name   string
		input  UpdateComplaintInput
		target error
		kind   apperror.Kind
	}{
		{"unknown status", UpdateComplaintInput{Status: statusPtr("REOPENED")}, ErrInvalidStatus, apperror.KindValidation},
		{"close via update", UpdateComplaintInput{Status: statusPtr(model.StatusClosed)}, ErrCloseViaUpdate, apperror.KindInvalidTransition},
		{"unknown priority", UpdateComplaintInput{Priority: func() *model.ComplaintPriority { p := model.ComplaintPriority("CRITICAL"); return &p }()}, ErrInvalidPriority, apperror.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Update(ctx, complaint.ID, tt.input)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, apperror.IsKind(err, tt.kind))
			assert.Equal(t, model.StatusOpen, f.reload(t, complaint.ID).Status)
		})
	}

	t.Run("missing complaint", func(t *testing.T) {
		_, err := f.service.Update(ctx, "does-not-exist", UpdateComplaintInput{WorkNotes: strPtr("x")})
		assert.ErrorIs(t, err, ErrComplaintNotFound)
	})

	t.Run("terminal state is frozen", func(t *testing.T) {
		setStatus(t, f.db, complaint.ID, model.StatusCancelled)
		_, err := f.service.Update(ctx, complaint.ID, UpdateComplaintInput{Status: statusPtr(model.StatusOpen)})
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
		assert.Equal(t, model.StatusCancelled, f.reload(t, complaint.ID).Status)
	})
}

func TestComplaintClose(t *testing.T) {
	ctx := context.Background()
	f := newComplaintFixture(t)

	for _, status := range []model.ComplaintStatus{
		model.StatusOpen, model.StatusInProgress, model.StatusClosed, model.StatusCancelled,
	} {
		t.Run("rejects "+string(status), func(t *testing.T) {
			complaint := f.create(t, f.tenant, "Cracked wall")
			setStatus(t, f.db, complaint.ID, status)

			_, err := f.service.Close(ctx, complaint.ID)
			assert.ErrorIs(t, err, ErrCloseNotResolved)
			assert.Equal(t, 400, apperror.As(err).HTTPStatus())

			stored := f.reload(t, complaint.ID)
			assert.Equal(t, status, stored.Status)
			assert.Nil(t, stored.ClosedAt)
		})
	}

	t.Run("closes a resolved complaint once", func(t *testing.T) {
		complaint := f.create(t, f.tenant, "Cracked wall")
		_, err := f.service.Update(ctx, complaint.ID, UpdateComplaintInput{Status: statusPtr(model.StatusResolved)})
		require.NoError(t, err)

		closedAt := f.clock.Now()
		closed, err := f.service.Close(ctx, complaint.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusClosed, closed.Status)
		require.NotNil(t, closed.ClosedAt)
		assert.WithinDuration(t, closedAt, *closed.ClosedAt, time.Millisecond)

		_, err = f.service.Close(ctx, complaint.ID)
		assert.ErrorIs(t, err, ErrCloseNotResolved)
	})

	t.Run("missing complaint", func(t *testing.T) {
		_, err := f.service.Close(ctx, "does-not-exist")
		assert.ErrorIs(t, err, ErrComplaintNotFound)
	})
}

func TestComplaintCancel(t *testing.T) {
	ctx := context.Background()
	f := newComplaintFixture(t)

	open := f.create(t, f.tenant, "Fan noise")
	cancelled, err := f.service.Cancel(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	resolved := f.create(t, f.tenant, "Door hinge")
	setStatus(t, f.db, resolved.ID, model.StatusResolved)
	_, err = f.service.Cancel(ctx, resolved.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	assert.Equal(t, model.StatusResolved, f.reload(t, resolved.ID).Status)
}

func TestComplaintGetScope(t *testing.T) {
	ctx := context.Background()
	f := newComplaintFixture(t)
	other := seedUser(t, f.db, "9123456789")
	complaint := f.create(t, f.tenant, "Leaking tap")

	owner := identityOf(f.tenant)
	stranger := identityOf(other)

	got, err := f.service.Get(ctx, complaint.ID, &owner, ScopeSelf)
	require.NoError(t, err)
	assert.Equal(t, complaint.ID, got.ID)

	_, err = f.service.Get(ctx, complaint.ID, &stranger, ScopeSelf)
	assert.ErrorIs(t, err, ErrComplaintNotFound, "ownership mismatch looks like a missing complaint")

	_, err = f.service.Get(ctx, complaint.ID, nil, ScopeSelf)
	assert.ErrorIs(t, err, ErrUnauthorized)

	got, err = f.service.Get(ctx, complaint.ID, nil, ScopeSupervisor)
	require.NoError(t, err)
	require.NotNil(t, got.Reporter)
	assert.Equal(t, f.tenant.ID, got.Reporter.ID)
}

func TestComplaintList(t *testing.T) {
	ctx := context.Background()
	f := newComplaintFixture(t)
	other := seedUser(t, f.db, "9123456789")

	first := f.create(t, f.tenant, "Leaking tap")
	second := f.create(t, f.tenant, "Broken window latch")
	third := f.create(t, other, "No hot water")

	t.Run("self scope sees own complaints newest first", func(t *testing.T) {
		owner := identityOf(f.tenant)
		list, err := f.service.List(ctx, &owner, ScopeSelf, ComplaintFilter{})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
		assert.NotNil(t, list[0].Property)
	})

	t.Run("self scope requires identity", func(t *testing.T) {
		_, err := f.service.List(ctx, nil, ScopeSelf, ComplaintFilter{})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("supervisor scope sees everything with reporters", func(t *testing.T) {
		list, err := f.service.List(ctx, nil, ScopeSupervisor, ComplaintFilter{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, third.ID, list[0].ID)
		for _, c := range list {
			assert.NotNil(t, c.Reporter)
		}
	})

	t.Run("supervisor filters", func(t *testing.T) {
		setStatus(t, f.db, first.ID, model.StatusInProgress)

		list, err := f.service.List(ctx, nil, ScopeSupervisor, ComplaintFilter{Status: model.StatusInProgress})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, first.ID, list[0].ID)

		list, err = f.service.List(ctx, nil, ScopeSupervisor, ComplaintFilter{UserID: other.ID})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, third.ID, list[0].ID)

		list, err = f.service.List(ctx, nil, ScopeSupervisor, ComplaintFilter{Query: "WINDOW"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, second.ID, list[0].ID)

		list, err = f.service.List(ctx, nil, ScopeSupervisor, ComplaintFilter{Query: "912345"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, third.ID, list[0].ID)
	})
}
