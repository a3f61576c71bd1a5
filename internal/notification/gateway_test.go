package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagora/backend/internal/clock"
	"github.com/tagora/backend/internal/metrics"
)

type mockSender struct {
	channel  Channel
	err      error
	messages []Message
	deadline bool
}

func (m *mockSender) Channel() Channel {
	return m.channel
}

func (m *mockSender) Send(ctx context.Context, msg Message) error {
	_, m.deadline = ctx.Deadline()
	m.messages = append(m.messages, msg)
	return m.err
}

func TestGatewayDeliverFormatsMessage(t *testing.T) {
	sender := &mockSender{channel: ChannelTelegram}
	reg := metrics.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gateway := NewGateway(GatewayConfig{Sender: sender, Metrics: reg, Logger: newTestLogger(), Clock: clock.NewFake(now)})

	gateway.Deliver(context.Background(), "abc.def.ghi", now.Add(2*time.Minute))

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Equal(t, "abc.def.ghi", msg.Token)
	assert.Contains(t, msg.Text, "`abc.def.ghi`")
	assert.Contains(t, msg.Text, "Valid for 2 minutes or until used.")
	assert.True(t, sender.deadline, "delivery must run under a timeout")

	gathered, err := reg.Gatherer().Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range gathered {
		if mf.GetName() == "tagora_admin_token_deliveries_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGatewayValidityFollowsClock(t *testing.T) {
	sender := &mockSender{channel: ChannelTelegram}
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)
	gateway := NewGateway(GatewayConfig{Sender: sender, Logger: newTestLogger(), Clock: clk})

	clk.Advance(30 * time.Second)
	gateway.Deliver(context.Background(), "tok", start.Add(2*time.Minute))

	require.Len(t, sender.messages, 1)
	assert.Contains(t, sender.messages[0].Text, "Valid for 90 seconds or until used.")
}

func TestGatewayDeliverSwallowsFailure(t *testing.T) {
	sender := &mockSender{channel: ChannelSlack, err: errors.New("webhook down")}
	reg := metrics.New()
	gateway := NewGateway(GatewayConfig{Sender: sender, Metrics: reg, Logger: newTestLogger()})

	assert.NotPanics(t, func() {
		gateway.Deliver(context.Background(), "tok", time.Now().Add(time.Minute))
	})

	expected := `
# HELP tagora_admin_token_deliveries_total Out-of-band admin token deliveries by result.
# TYPE tagora_admin_token_deliveries_total counter
tagora_admin_token_deliveries_total{channel="slack",result="failed"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg.Gatherer(), strings.NewReader(expected), "tagora_admin_token_deliveries_total"))
}

func TestFormatAdminTokenMessage(t *testing.T) {
	tests := []struct {
		validFor time.Duration
		want     string
	}{
		{2 * time.Minute, "Valid for 2 minutes"},
		{119*time.Second + 600*time.Millisecond, "Valid for 2 minutes"},
		{time.Minute, "Valid for 1 minute"},
		{45 * time.Second, "Valid for 45 seconds"},
		{90 * time.Second, "Valid for 90 seconds"},
		{0, "Valid for a moment"},
	}

	for _, tt := range tests {
		t.Run(tt.validFor.String(), func(t *testing.T) {
			msg := FormatAdminTokenMessage("tok", tt.validFor)
			assert.Contains(t, msg, tt.want)
			assert.Contains(t, msg, "Do not share this token.")
		})
	}
}
