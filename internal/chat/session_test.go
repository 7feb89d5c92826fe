package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/domain"
)

func TestJoinRegistersPresence(t *testing.T) {
	svc, reg := newTestService(t)
	conn := &fakeConn{}
	sess := svc.NewSession(conn)

	online, err := sess.Join(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, online)
	assert.Equal(t, StateJoined, sess.State())
	assert.Equal(t, "alice", sess.Username())
	assert.NotNil(t, reg.Lookup("alice"))
}

func TestJoinEmptyUsername(t *testing.T) {
	svc, _ := newTestService(t)
	sess := svc.NewSession(&fakeConn{})

	_, err := sess.Join(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, StateUnjoined, sess.State())
}

func TestJoinReusesExistingUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	mustCreateUser(t, svc, "alice")
	created, err := svc.FindUser(ctx, "alice")
	require.NoError(t, err)

	sess := svc.NewSession(&fakeConn{})
	_, err = sess.Join(ctx, "alice")
	require.NoError(t, err)

	again, err := svc.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, created.CreatedAt.Equal(again.CreatedAt), "join must not replace the directory entry")

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSendBeforeJoinMutatesNothing(t *testing.T) {
	ctx := context.Background()
	svc, reg := newTestService(t)
	mustCreateUser(t, svc, "bob")
	sess := svc.NewSession(&fakeConn{})

	_, err := sess.Send(ctx, "bob", "hi")
	require.ErrorIs(t, err, domain.ErrNotJoined)

	history, err := svc.Inbox(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, reg.ListOnline())
}

func TestSendValidatesArguments(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	sess := svc.NewSession(&fakeConn{})
	_, err := sess.Join(ctx, "alice")
	require.NoError(t, err)

	_, err = sess.Send(ctx, "", "hi")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = sess.Send(ctx, "bob", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDisconnectIsTerminal(t *testing.T) {
	ctx := context.Background()
	svc, reg := newTestService(t)
	sess := svc.NewSession(&fakeConn{})
	_, err := sess.Join(ctx, "alice")
	require.NoError(t, err)

	sess.Disconnect()
	assert.Equal(t, StateClosed, sess.State())
	assert.Nil(t, reg.Lookup("alice"))

	_, err = sess.Send(ctx, "bob", "hi")
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	_, err = sess.Join(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	// Idempotent second disconnect.
	sess.Disconnect()
	assert.Equal(t, StateClosed, sess.State())
}

func TestDisconnectBeforeJoin(t *testing.T) {
	svc, reg := newTestService(t)
	sess := svc.NewSession(&fakeConn{})

	sess.Disconnect()
	assert.Equal(t, StateClosed, sess.State())
	assert.Empty(t, reg.ListOnline())
}

func TestRejoinOverwritesBinding(t *testing.T) {
	ctx := context.Background()
	svc, reg := newTestService(t)
	sess := svc.NewSession(&fakeConn{})

	_, err := sess.Join(ctx, "alice")
	require.NoError(t, err)
	online, err := sess.Join(ctx, "alice2")
	require.NoError(t, err)

	assert.Equal(t, []string{"alice2"}, online)
	assert.Equal(t, "alice2", sess.Username())
	assert.Nil(t, reg.Lookup("alice"))
	assert.NotNil(t, reg.Lookup("alice2"))
}

func TestDuplicateUsernameLastJoinWins(t *testing.T) {
	ctx := context.Background()
	svc, reg := newTestService(t)

	firstConn := &fakeConn{}
	first := svc.NewSession(firstConn)
	_, err := first.Join(ctx, "alice")
	require.NoError(t, err)

	secondConn := &fakeConn{}
	second := svc.NewSession(secondConn)
	_, err = second.Join(ctx, "alice")
	require.NoError(t, err)

	// Messages to alice now route to the newer connection.
	mustCreateUser(t, svc, "bob")
	_, err = svc.Send(ctx, "bob", "alice", "which tab?")
	require.NoError(t, err)
	assert.Empty(t, firstConn.newMessages())
	assert.Len(t, secondConn.newMessages(), 1)

	// The evicted session's disconnect must not take the winner offline.
	first.Disconnect()
	assert.NotNil(t, reg.Lookup("alice"))
	assert.Equal(t, []string{"alice"}, reg.ListOnline())
}

func TestDeliveryScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	aliceConn := &fakeConn{}
	alice := svc.NewSession(aliceConn)
	_, err := alice.Join(ctx, "alice")
	require.NoError(t, err)

	bobConn := &fakeConn{}
	bob := svc.NewSession(bobConn)
	_, err = bob.Join(ctx, "bob")
	require.NoError(t, err)

	// alice -> bob while bob is online: exactly one push to bob.
	first, err := alice.Send(ctx, "bob", "hello")
	require.NoError(t, err)
	assert.True(t, first.Delivered)
	require.Len(t, bobConn.newMessages(), 1)
	assert.Equal(t, "hello", bobConn.newMessages()[0].Content)

	// bob disconnects; a second send is stored but not pushed.
	bob.Disconnect()
	second, err := alice.Send(ctx, "bob", "are you there?")
	require.NoError(t, err)
	assert.False(t, second.Delivered)
	assert.Len(t, bobConn.newMessages(), 1)

	history, err := svc.History(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "are you there?", history[1].Content)
	assert.Less(t, history[0].ID, history[1].ID)
}
