package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

type mockSink struct {
	mock.Mock
	name string
}

func (m *mockSink) Name() string     { return m.name }
func (m *mockSink) Configured() bool { return true }
func (m *mockSink) Send(ctx context.Context, p model.OrderPayload) model.SinkResult {
	args := m.Called(ctx, p)
	return args.Get(0).(model.SinkResult)
}

func ok(id, msg string) model.SinkResult {
	return model.SinkResult{Success: true, OrderID: id, Message: msg}
}

func fail(msg string) model.SinkResult {
	return model.SinkResult{Success: false, Message: msg, Error: msg}
}

func TestDispatchSuccessPolicy(t *testing.T) {
	cases := []struct {
		name     string
		sheets   model.SinkResult
		telegram model.SinkResult
		want     bool
	}{
		{"both", ok("ORDER-1", "A"), ok("ORDER-2", "B"), true},
		{"sheets only", ok("ORDER-1", "A"), fail("B down"), true},
		{"telegram only", fail("A down"), ok("ORDER-2", "B"), true},
		{"neither", fail("A down"), fail("B down"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sh := &mockSink{name: "googleSheets"}
			tg := &mockSink{name: "telegram"}
			sh.On("Send", mock.Anything, mock.Anything).Return(tc.sheets).Once()
			tg.On("Send", mock.Anything, mock.Anything).Return(tc.telegram).Once()

			res := New(sh, tg, time.Second).Dispatch(context.Background(), model.OrderPayload{FullName: "x"})
			assert.Equal(t, tc.want, res.OverallSuccess)
			assert.Equal(t, tc.sheets, res.GoogleSheets)
			assert.Equal(t, tc.telegram, res.Telegram)
			sh.AssertExpectations(t)
			tg.AssertExpectations(t)
		})
	}
}

func TestCombinedMessage(t *testing.T) {
	r := model.DispatchResult{GoogleSheets: fail("A down"), Telegram: fail("B down")}
	assert.Equal(t, "A down | B down", CombinedMessage(r))
	assert.Equal(t, "", OrderID(r))

	r.Telegram = ok("ORDER-2", "B")
	assert.Equal(t, "ORDER-2", OrderID(r))
	r.GoogleSheets = ok("ORDER-1", "A")
	assert.Equal(t, "ORDER-1", OrderID(r))
}

type panicSink struct{}

func (panicSink) Name() string     { return "panicky" }
func (panicSink) Configured() bool { return true }
func (panicSink) Send(context.Context, model.OrderPayload) model.SinkResult {
	panic("boom")
}

func TestDispatchRecoversPanic(t *testing.T) {
	tg := &mockSink{name: "telegram"}
	tg.On("Send", mock.Anything, mock.Anything).Return(ok("ORDER-2", "B"))

	res := New(panicSink{}, tg, time.Second).Dispatch(context.Background(), model.OrderPayload{})
	assert.True(t, res.OverallSuccess)
	assert.False(t, res.GoogleSheets.Success)
	assert.Equal(t, "boom", res.GoogleSheets.Error)
}

type slowSink struct{}

func (slowSink) Name() string     { return "slow" }
func (slowSink) Configured() bool { return true }
func (slowSink) Send(ctx context.Context, _ model.OrderPayload) model.SinkResult {
	<-ctx.Done()
	return model.SinkResult{Success: false, Message: "timeout", Error: ctx.Err().Error()}
}

func TestDispatchAppliesSinkTimeout(t *testing.T) {
	tg := &mockSink{name: "telegram"}
	tg.On("Send", mock.Anything, mock.Anything).Return(fail("B down"))

	start := time.Now()
	res := New(slowSink{}, tg, 50*time.Millisecond).Dispatch(context.Background(), model.OrderPayload{})
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, res.OverallSuccess)
	assert.Equal(t, "timeout | B down", CombinedMessage(res))
}
