package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestState_Constants_HaveExpectedStringValues(t *testing.T) {
	assert.Equal(t, RequestState("queued"), StateQueued)
	assert.Equal(t, RequestState("running"), StateRunning)
	assert.Equal(t, RequestState("completed"), StateCompleted)
}

func TestRequest_String_IncludesStateAndCommand(t *testing.T) {
	req := NewRequest("test-1", 0, CmdWrite, 4096, 512)
	s := req.String()
	assert.Contains(t, s, "queued")
	assert.Contains(t, s, "write")
	assert.Contains(t, s, "4096")
}

func TestNewRequest_RequiredFields_SetCorrectly(t *testing.T) {
	// GIVEN required field values
	// WHEN NewRequest is called
	req := NewRequest("req_42", 5000, CmdDelete, 1<<20, 8192)

	// THEN the fields match and the request is not in any queue
	assert.Equal(t, "req_42", req.ID)
	assert.Equal(t, int64(5000), req.ArrivalTime)
	assert.Equal(t, CmdDelete, req.Cmd)
	assert.Equal(t, int64(1<<20), req.Offset)
	assert.Equal(t, int64(8192), req.Length)
	assert.Equal(t, StateQueued, req.State)
	assert.Zero(t, req.Error)
	assert.Zero(t, req.Resid)
	assert.False(t, req.Linked())
}

func TestCommand_StringAndParse_RoundTrip(t *testing.T) {
	for _, cmd := range []Command{CmdRead, CmdWrite, CmdDelete, CmdGetAttr, CmdFlush} {
		parsed, ok := ParseCommand(cmd.String())
		assert.True(t, ok, cmd.String())
		assert.Equal(t, cmd, parsed)
	}
}

func TestCommand_Unknown(t *testing.T) {
	assert.Equal(t, "illegal", Command(0).String())
	assert.Equal(t, "illegal", Command(42).String())
	_, ok := ParseCommand("trim")
	assert.False(t, ok)
}
