package mqtt

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/leafn/core/metrics"
	"github.com/kilianp07/leafn/core/model"
)

func withMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
}

func TestPublisher_RecordPredictions(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", TopicPrefix: "site/n/", QoS: 1, Retain: true})
	require.NoError(t, err)

	now := time.Now()
	ev := coremetrics.PredictionEvent{RunID: "run-1", Time: now, Results: []model.PredictionResult{
		{Sample: model.SampleRecord{ID: "s1", Observed: 1.2}, Point: 1.3, FoldMean: 1.3, Lower: 1.2, Upper: 1.4, StdDev: 0.1, Residual: 0.1, HasResidual: true},
		{Sample: model.SampleRecord{ID: "s2", Observed: math.NaN()}, Point: math.NaN()},
	}}
	require.NoError(t, pub.RecordPredictions(ev))
	require.Len(t, mc.published, 2)
	assert.Equal(t, "site/n/s1", mc.published[0].topic)
	assert.Equal(t, byte(1), mc.published[0].qos)
	assert.True(t, mc.published[0].retained)

	var msg struct {
		MessageID string         `json:"message_id"`
		Timestamp int64          `json:"timestamp"`
		Data      map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &msg))
	assert.NotEmpty(t, msg.MessageID)
	assert.Equal(t, now.UnixMilli(), msg.Timestamp)
	assert.Equal(t, "run-1", msg.Data["run_id"])
	assert.Equal(t, 1.3, msg.Data["prediction"])

	require.NoError(t, json.Unmarshal(mc.published[1].payload, &msg))
	assert.Nil(t, msg.Data["prediction"])
}

func TestPublisher_RecordRun(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)

	require.NoError(t, pub.RecordRun(coremetrics.RunEvent{RunID: "run-1", Samples: 3, Folds: 25, Duration: 1500 * time.Millisecond}))
	require.Len(t, mc.published, 1)
	assert.Equal(t, DefaultTopicPrefix+"/_run", mc.published[0].topic)

	var msg struct {
		Data runPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &msg))
	assert.Equal(t, int64(1500), msg.Data.DurationMS)
	assert.Equal(t, 25, msg.Data.Folds)
	assert.Nil(t, msg.Data.Fit)
	require.NoError(t, pub.Close())
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)
	require.NoError(t, pub.RecordRun(coremetrics.RunEvent{RunID: "r"}))
	assert.Len(t, mc.published, 2)
}

func TestRetryExhausted(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1})
	require.NoError(t, err)
	err = pub.RecordPredictions(coremetrics.PredictionEvent{Results: []model.PredictionResult{{Sample: model.SampleRecord{ID: "s1"}}}})
	assert.ErrorIs(t, err, fail)
	assert.Contains(t, err.Error(), "sample s1")
	assert.Len(t, mc.published, 3)
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	pub, err := NewPublisher(cfg)
	require.NoError(t, err)
	assert.True(t, mc.opts.WillEnabled)
	assert.Equal(t, "lwt", mc.opts.WillTopic)
	assert.Equal(t, "bye", string(mc.opts.WillPayload))
	require.NoError(t, pub.Close())
	assert.Empty(t, mc.published)
}

func TestNewClientOptions_RequiresBroker(t *testing.T) {
	_, err := NewClientOptions(Config{})
	assert.Error(t, err)

	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	assert.Contains(t, opts.ClientID, "leafn-")
}
