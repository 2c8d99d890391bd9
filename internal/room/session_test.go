package room

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakshamg567/catchping/internal/protocol"
)

const waitFor = 2 * time.Second

// connect wires a fake client to a running room the same way the transports do.
func connect(t *testing.T, r *Room, name string) (*Session, *fakeConn) {
	t.Helper()
	fc := newFakeConn()
	s := r.NewSession(fc, name)
	require.True(t, r.Join(s))
	go s.ReadPump(r)
	go s.WritePump()
	return s, fc
}

func runRoom(t *testing.T, r *Room) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-r.done
	})
	return cancel
}

func wrote(fc *fakeConn, line string) func() bool {
	return func() bool { return slices.Contains(fc.lines(), line) }
}

func TestPumpsRelayThroughRunningRoom(t *testing.T) {
	r, _ := newTestRoom(t, testGame())
	runRoom(t, r)

	_, annConn := connect(t, r, "Ann")
	_, boConn := connect(t, r, "Bo")
	assert.Eventually(t, wrote(annConn, "PLAYERS//Ann,0//Bo,0"), waitFor, 5*time.Millisecond)

	annConn.in <- "CHAT//hello//there"
	assert.Eventually(t, wrote(boConn, "CHAT//Ann: hello//there"), waitFor, 5*time.Millisecond)

	annConn.in <- "READY"
	boConn.in <- "READY"
	assert.Eventually(t, wrote(boConn, "START//?????//60//false"), waitFor, 5*time.Millisecond)
	assert.Eventually(t, wrote(annConn, "START//apple//60//true"), waitFor, 5*time.Millisecond)

	snap, err := r.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseRunning, snap.Phase)
	assert.Equal(t, "Ann", snap.Drawer)
}

func TestMalformedFramesAreDropped(t *testing.T) {
	r, _ := newTestRoom(t, testGame())
	runRoom(t, r)

	_, annConn := connect(t, r, "Ann")
	_, boConn := connect(t, r, "Bo")

	annConn.in <- "DRAW//1,2//3,4//0,0,0//5"
	annConn.in <- "DRAW//a,b//3,4//0,0,0//5//false"
	annConn.in <- "   "
	annConn.in <- "JUMP//high"
	annConn.in <- "CHAT//still here"
	assert.Eventually(t, wrote(boConn, "CHAT//Ann: still here"), waitFor, 5*time.Millisecond)

	for _, line := range boConn.lines() {
		assert.NotContains(t, line, "DRAW//")
	}
	assert.False(t, annConn.isClosed())
}

func TestChatRateLimit(t *testing.T) {
	g := testGame()
	g.ChatPerSecond = 0.001
	g.ChatBurst = 2
	r, _ := newTestRoom(t, g)
	runRoom(t, r)

	_, annConn := connect(t, r, "Ann")
	_, boConn := connect(t, r, "Bo")

	for _, text := range []string{"one", "two", "three"} {
		annConn.in <- "CHAT//" + text
	}
	annConn.in <- "CLEAR"
	assert.Eventually(t, wrote(boConn, "CLEAR"), waitFor, 5*time.Millisecond)

	lines := boConn.lines()
	assert.Contains(t, lines, "CHAT//Ann: one")
	assert.Contains(t, lines, "CHAT//Ann: two")
	assert.NotContains(t, lines, "CHAT//Ann: three")
}

func TestDisconnectLeavesRoom(t *testing.T) {
	r, _ := newTestRoom(t, testGame())
	runRoom(t, r)

	_, annConn := connect(t, r, "Ann")
	_, boConn := connect(t, r, "Bo")
	assert.Eventually(t, wrote(annConn, "PLAYERS//Ann,0//Bo,0"), waitFor, 5*time.Millisecond)

	close(boConn.in)
	assert.Eventually(t, wrote(annConn, "CHAT//Bo has left."), waitFor, 5*time.Millisecond)
	assert.Eventually(t, boConn.isClosed, waitFor, 5*time.Millisecond)

	snap, err := r.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Players, 1)
}

func TestShutdownNotifiesAndCloses(t *testing.T) {
	r, _ := newTestRoom(t, testGame())
	cancel := runRoom(t, r)

	ann, annConn := connect(t, r, "Ann")
	assert.Eventually(t, wrote(annConn, "PLAYERS//Ann,0"), waitFor, 5*time.Millisecond)

	cancel()
	assert.Eventually(t, wrote(annConn, "CHAT//The server is shutting down."), waitFor, 5*time.Millisecond)
	assert.Eventually(t, annConn.isClosed, waitFor, 5*time.Millisecond)
	<-ann.Done()

	<-r.done
	_, err := r.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrRoomClosed)
	assert.False(t, r.Join(r.NewSession(newFakeConn(), "Late")))
}

func TestWritePumpFlushesOnClose(t *testing.T) {
	r, _ := newTestRoom(t, testGame())
	fc := newFakeConn()
	s := r.NewSession(fc, "Ann")

	require.True(t, s.deliver("CHAT//one"))
	require.True(t, s.deliver("CHAT//two"))
	s.Close()
	assert.False(t, s.deliver("CHAT//late"), "closed sessions take no more lines")

	done := make(chan struct{})
	go func() {
		s.WritePump()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("write pump did not exit")
	}
	assert.Equal(t, []string{"CHAT//one", "CHAT//two"}, fc.lines())
	assert.True(t, fc.isClosed())
}

func TestWriteFailureClosesSession(t *testing.T) {
	r, _ := newTestRoom(t, testGame())
	fc := newFakeConn()
	fc.failW = true
	s := r.NewSession(fc, "Ann")

	go s.WritePump()
	s.deliver("CHAT//hi")

	select {
	case <-s.Done():
	case <-time.After(waitFor):
		t.Fatal("session not closed after write error")
	}
	assert.Eventually(t, fc.isClosed, waitFor, 5*time.Millisecond)
}

func TestSlowSessionIsDisconnected(t *testing.T) {
	r, _ := newTestRoom(t, testGame())
	s := r.NewSession(newFakeConn(), "Ann")

	for i := 0; i < sendBuffer; i++ {
		require.True(t, s.deliver("CHAT//x"))
	}
	assert.False(t, s.deliver("CHAT//overflow"))
	assert.Error(t, s.ctx.Err())
}

func TestSanitizedNameOnSession(t *testing.T) {
	r, _ := newTestRoom(t, testGame())
	s := r.NewSession(newFakeConn(), "A//n,n\x00")
	assert.Equal(t, "Ann", s.Name())
	assert.NotEmpty(t, s.ID)
}

func TestStrokeBurstDoesNotDisconnectPeers(t *testing.T) {
	r, _ := newTestRoom(t, testGame())
	runRoom(t, r)

	ann, annConn := connect(t, r, "Ann")
	boConn := newFakeConn()
	boConn.delay = 2 * time.Millisecond
	bo := r.NewSession(boConn, "Bo")
	require.True(t, r.Join(bo))
	go bo.ReadPump(r)
	go bo.WritePump()
	assert.Eventually(t, wrote(annConn, "PLAYERS//Ann,0//Bo,0"), waitFor, 5*time.Millisecond)

	const stroke = "DRAW//1,2//3,4//0,0,0//5//false"
	for i := 0; i < 600; i++ {
		annConn.in <- stroke
	}
	annConn.in <- "CHAT//done"
	assert.Eventually(t, wrote(boConn, "CHAT//Ann: done"), 5*time.Second, 10*time.Millisecond)

	assert.NoError(t, bo.ctx.Err(), "a quiet peer must survive another session's burst")
	assert.NoError(t, ann.ctx.Err())

	relayed := 0
	for _, line := range boConn.lines() {
		if line == stroke {
			relayed++
		}
	}
	assert.GreaterOrEqual(t, relayed, testGame().DrawBurst)
	assert.Less(t, relayed, sendBuffer)
}

func TestClearSharesStrokeBudget(t *testing.T) {
	g := testGame()
	g.DrawPerSecond = 0.001
	g.DrawBurst = 2
	r, _ := newTestRoom(t, g)
	s := r.NewSession(newFakeConn(), "Ann")

	assert.True(t, s.allow(protocol.Draw{}))
	assert.True(t, s.allow(protocol.Clear{}))
	assert.False(t, s.allow(protocol.Draw{}))
	assert.False(t, s.allow(protocol.Clear{}))
	assert.True(t, s.allow(protocol.Chat{Text: "still talking"}))
	assert.True(t, s.allow(protocol.Ready{}))
}

func TestStrokeRelayedByteForByte(t *testing.T) {
	r, _ := newTestRoom(t, testGame())
	runRoom(t, r)

	_, annConn := connect(t, r, "Ann")
	_, boConn := connect(t, r, "Bo")

	annConn.in <- "DRAW//+1, 02//3,4//0,0,0//05//false"
	annConn.in <- "DRAW//-7,0//300,12//10,20,30//4//true"
	annConn.in <- "CLEAR"
	assert.Eventually(t, wrote(boConn, "CLEAR"), waitFor, 5*time.Millisecond)

	draws := []string{}
	for _, line := range boConn.lines() {
		if strings.HasPrefix(line, protocol.CmdDraw) {
			draws = append(draws, line)
		}
	}
	assert.Equal(t, []string{"DRAW//-7,0//300,12//10,20,30//4//true"}, draws)
}

func TestStoppedRoomClosesPendingJoins(t *testing.T) {
	for i := 0; i < 50; i++ {
		r, _ := newTestRoom(t, testGame())
		s := r.NewSession(newFakeConn(), "Ann")
		require.True(t, r.Join(s))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r.Run(ctx)

		require.Error(t, s.ctx.Err(), "run %d: accepted join left open", i)
	}
}
