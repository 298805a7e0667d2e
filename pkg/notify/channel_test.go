package notify_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var msgs = domain.Messages{
	Pending: "Creating stream...",
	Success: "Stream created!",
	Error:   "Failed to create stream!",
}

func TestChannel_DirectNotices(t *testing.T) {
	ch := notify.New()

	ch.Success("Copied")
	ch.Error("Stream name is invalid")

	list := ch.Notices()
	require.Len(t, list, 2)
	assert.Equal(t, domain.NoticeError, list[0].Kind, "newest first")
	assert.Equal(t, "Stream name is invalid", list[0].Message)
	assert.Equal(t, domain.NoticeSuccess, list[1].Kind)
}

func TestChannel_TrackSuccess(t *testing.T) {
	ch := notify.New()
	release := make(chan struct{})

	ticket := ch.Track(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	}, msgs)

	pending, ok := ch.Get(ticket.ID())
	require.True(t, ok)
	assert.Equal(t, domain.NoticePending, pending.Kind)
	assert.Equal(t, "Creating stream...", pending.Message)

	close(release)
	require.NoError(t, ticket.Wait(context.Background()))

	settled, ok := ch.Get(ticket.ID())
	require.True(t, ok)
	assert.Equal(t, domain.NoticeSuccess, settled.Kind)
	assert.Equal(t, "Stream created!", settled.Message)
	assert.Len(t, ch.Notices(), 1, "the pending notice is replaced, not duplicated")
}

func TestChannel_TrackError(t *testing.T) {
	ch := notify.New()
	boom := errors.New("503")

	ticket := ch.Track(context.Background(), func(ctx context.Context) error {
		return boom
	}, msgs)

	err := ticket.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, ticket.Err(), boom)

	n, _ := ch.Get(ticket.ID())
	assert.Equal(t, domain.NoticeError, n.Kind)
	assert.Equal(t, "Failed to create stream!", n.Message)
}

func TestChannel_TrackErrorWithOwnNotice(t *testing.T) {
	ch := notify.New()

	ticket := ch.Track(context.Background(), func(ctx context.Context) error {
		return &domain.UserFacingError{Err: domain.ErrBalanceMissing, Message: "Failed to update balance"}
	}, msgs)
	_ = ticket.Wait(context.Background())

	n, _ := ch.Get(ticket.ID())
	assert.Equal(t, "Failed to update balance", n.Message)
}

func TestChannel_TrackPanicSettles(t *testing.T) {
	ch := notify.New()

	ticket := ch.Track(context.Background(), func(ctx context.Context) error {
		panic("nil map")
	}, msgs)

	err := ticket.Wait(context.Background())
	assert.Error(t, err)
	n, _ := ch.Get(ticket.ID())
	assert.Equal(t, domain.NoticeError, n.Kind)
}

func TestChannel_TicketsAreIndependent(t *testing.T) {
	ch := notify.New()
	slow := make(chan struct{})

	first := ch.Track(context.Background(), func(ctx context.Context) error {
		<-slow
		return nil
	}, msgs)
	second := ch.Track(context.Background(), func(ctx context.Context) error {
		return errors.New("rejected")
	}, msgs)

	require.Error(t, second.Wait(context.Background()))

	n, _ := ch.Get(first.ID())
	assert.Equal(t, domain.NoticePending, n.Kind, "settling one ticket must not touch another")
	assert.Nil(t, first.Err())

	close(slow)
	require.NoError(t, first.Wait(context.Background()))
}

func TestChannel_StalledOperationStaysPending(t *testing.T) {
	ch := notify.New()
	block := make(chan struct{})
	defer close(block)

	ticket := ch.Track(context.Background(), func(ctx context.Context) error {
		<-block
		return nil
	}, msgs)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, ticket.Wait(ctx), context.DeadlineExceeded)

	n, _ := ch.Get(ticket.ID())
	assert.Equal(t, domain.NoticePending, n.Kind)
}

func TestChannel_Subscribe(t *testing.T) {
	ch := notify.New()
	updates, cancel := ch.Subscribe(8)
	defer cancel()

	ticket := ch.Track(context.Background(), func(ctx context.Context) error { return nil }, msgs)
	require.NoError(t, ticket.Wait(context.Background()))

	first := <-updates
	second := <-updates
	assert.Equal(t, domain.NoticePending, first.Kind)
	assert.Equal(t, domain.NoticeSuccess, second.Kind)
	assert.Equal(t, first.ID, second.ID)
}

func TestChannel_MaxVisibleKeepsPending(t *testing.T) {
	ch := notify.New(notify.WithMaxVisible(2))
	block := make(chan struct{})
	defer close(block)

	ticket := ch.Track(context.Background(), func(ctx context.Context) error {
		<-block
		return nil
	}, msgs)
	for i := 0; i < 5; i++ {
		ch.Info(fmt.Sprintf("info %d", i))
	}

	list := ch.Notices()
	require.Len(t, list, 2)
	_, ok := ch.Get(ticket.ID())
	assert.True(t, ok, "pending notices are never evicted")
	assert.Equal(t, "info 4", list[0].Message)
}

func TestChannel_DismissAndDrain(t *testing.T) {
	ch := notify.New()
	n := ch.Info("hello")
	assert.True(t, ch.Dismiss(n.ID))
	assert.False(t, ch.Dismiss(n.ID))

	for i := 0; i < 3; i++ {
		ch.Track(context.Background(), func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			return nil
		}, msgs)
	}
	require.NoError(t, ch.Drain(context.Background()))
	for _, n := range ch.Notices() {
		assert.True(t, n.Settled())
	}
}
