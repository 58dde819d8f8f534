//go:build integration

package publisher_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"medchain/pkg/platform/audit/publisher"
	"medchain/pkg/testutil/containers"
)

func TestKafkaPublishRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redpanda := containers.GetManager().GetRedpanda(t)

	topic := "medchain.audit.test"
	pub, err := publisher.NewKafka(ctx, redpanda.Brokers, publisher.WithTopic(topic))
	require.NoError(t, err)
	defer pub.Close()

	payload := []byte(`{"ID":"evt-1","Action":"upload","Actor":"patient-1"}`)
	require.NoError(t, pub.Publish(ctx, "evt-1", payload))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "evt-1", string(records[0].Key))
	assert.Equal(t, payload, records[0].Value)
}
