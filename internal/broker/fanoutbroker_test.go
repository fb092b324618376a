package broker_test

import (
	"testing"
	"time"

	"github.com/detectivesigma/sigma/internal/broker"
	"github.com/stretchr/testify/require"
)

func TestFanOutBroker(t *testing.T) {
	type testCase struct {
		name     string
		testFunc func(t *testing.T, b *broker.FanOutBroker[string])
	}
	tests := []testCase{
		{
			name: "every subscriber receives the payload",
			testFunc: func(t *testing.T, b *broker.FanOutBroker[string]) {
				first := b.Subscribe()
				second := b.Subscribe()

				b.Publish("snapshot")

				require.Equal(t, "snapshot", <-first, "first subscriber did not receive payload")
				require.Equal(t, "snapshot", <-second, "second subscriber did not receive payload")
			},
		},
		{
			name: "unsubscribed channel is closed and stops receiving",
			testFunc: func(t *testing.T, b *broker.FanOutBroker[string]) {
				channel := b.Subscribe()
				b.Unsubscribe(channel)

				payload, ok := <-channel
				require.Empty(t, payload)
				require.False(t, ok, "channel not closed after unsubscribe")

				// Publishing after unsubscribe must not panic or block.
				b.Publish("snapshot")
			},
		},
		{
			name: "slow subscriber misses superseded payloads instead of blocking",
			testFunc: func(t *testing.T, b *broker.FanOutBroker[string]) {
				channel := b.Subscribe()

				b.Publish("first")
				b.Publish("second")

				require.Equal(t, "first", <-channel)

				select {
				case payload := <-channel:
					t.Fatalf("expected dropped payload, got %q", payload)
				case <-time.After(50 * time.Millisecond):
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := broker.NewFanOutBroker[string]()
			go br.Start()
			t.Cleanup(func() {
				br.Stop()
			})
			tt.testFunc(t, br)
		})
	}
}
