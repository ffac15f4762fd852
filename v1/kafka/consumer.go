package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

// ConsumerMessage implements the Message interface and wraps a fetched
// record together with its decoded value.
type ConsumerMessage struct {
	ctx       context.Context
	msg       kafka.Message
	value     any
	decodeErr error
	commit    func(ctx context.Context, msgs ...kafka.Message) error
}

// Consume starts reading messages from the configured topic and decodes
// each value with the configured Deserializer.
//
// The returned channel is closed when ctx is cancelled, the client shuts
// down, or the reader is closed. Decoding failures do not stop consumption;
// they are reported through Message.DecodeErr.
//
// Example:
//
//	wg := &sync.WaitGroup{}
//	msgChan := client.Consume(ctx, wg)
//	for msg := range msgChan {
//	    if err := msg.DecodeErr(); err != nil {
//	        log.Error("Failed to decode message", err, nil)
//	        continue
//	    }
//	    article := msg.Value().(Article)
//	    // ...
//	    if err := msg.CommitMsg(); err != nil {
//	        log.Error("Failed to commit message", err, nil)
//	    }
//	}
func (k *KafkaClient) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	fetched := k.fetchLoop(ctx, wg)
	out := make(chan Message, DefaultConsumerBuffer)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		for msg := range fetched {
			if !k.deliver(ctx, out, k.decode(ctx, msg)) {
				return
			}
		}
	}()
	return out
}

// ConsumeParallel is Consume with decoding spread over workers
// goroutines. Messages are delivered as soon as they are decoded, so order
// is not preserved.
func (k *KafkaClient) ConsumeParallel(ctx context.Context, wg *sync.WaitGroup, workers int) <-chan Message {
	if workers < 1 {
		workers = 1
	}
	fetched := k.fetchLoop(ctx, wg)
	out := make(chan Message, DefaultConsumerBuffer)

	var workerWG sync.WaitGroup
	for i := 0; i < workers; i++ {
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			for msg := range fetched {
				if !k.deliver(ctx, out, k.decode(ctx, msg)) {
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		workerWG.Wait()
		close(out)
	}()
	return out
}

// fetchLoop reads raw records until ctx is done, the client shuts down or
// the reader is closed.
func (k *KafkaClient) fetchLoop(ctx context.Context, wg *sync.WaitGroup) <-chan kafka.Message {
	out := make(chan kafka.Message, DefaultConsumerBuffer)

	k.mu.RLock()
	reader := k.reader
	k.mu.RUnlock()

	if reader == nil {
		k.logWarn(ctx, "Consume called on a client without a reader", ErrNotConsumer, nil)
		close(out)
		return out
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		for {
			msg, err := reader.FetchMessage(ctx)
			if err != nil {
				switch {
				case ctx.Err() != nil:
					k.logInfo(ctx, "Stopping consumer due to context cancellation", nil)
					return
				case k.closed(), errors.Is(err, io.EOF):
					k.logInfo(ctx, "Stopping consumer due to shutdown signal", nil)
					return
				}
				k.logWarn(ctx, "Failed to fetch message", err, nil)
				k.observeOperation("consume", k.cfg.Topic, "", 0, err, 0)
				if !k.sleep(ctx, 100*time.Millisecond) {
					return
				}
				continue
			}

			select {
			case out <- msg:
			case <-ctx.Done():
				return
			case <-k.shutdownSignal:
				return
			}
		}
	}()
	return out
}

func (k *KafkaClient) decode(ctx context.Context, msg kafka.Message) *ConsumerMessage {
	k.mu.RLock()
	deserializer, reader := k.deserializer, k.reader
	k.mu.RUnlock()

	if msg.Topic == "" {
		msg.Topic = k.cfg.Topic
	}

	// The message context outlives the consume call, so it does not
	// inherit its cancellation.
	msgCtx := context.Background()
	var span trace.Span
	if k.tracer != nil {
		carrier := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			carrier[h.Key] = string(h.Value)
		}
		msgCtx, span = k.tracer.StartSpan(k.tracer.SetCarrierOnContext(msgCtx, carrier), "kafka.consume "+msg.Topic)
		ctx = trace.ContextWithSpan(ctx, span)
	}

	start := time.Now()
	value, err := deserializer.DeserializeContext(ctx, msg.Topic, msg.Value)
	k.observeOperation("consume", msg.Topic, string(msg.Key), time.Since(start), err, int64(len(msg.Value)))

	if span != nil {
		if err != nil {
			k.tracer.RecordErrorOnSpan(span, err)
		}
		span.End()
	}

	cm := &ConsumerMessage{ctx: msgCtx, msg: msg, value: value, decodeErr: err}
	if reader != nil {
		cm.commit = reader.CommitMessages
	}
	return cm
}

func (k *KafkaClient) deliver(ctx context.Context, out chan<- Message, msg Message) bool {
	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-k.shutdownSignal:
		return false
	}
}

func (k *KafkaClient) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	case <-k.shutdownSignal:
		return false
	}
}

// CommitMsg commits the message offset. With EnableAutoCommit the commit is
// batched by the reader; otherwise it is synchronous.
func (m *ConsumerMessage) CommitMsg() error {
	if m.commit == nil {
		return ErrNotConsumer
	}
	return m.commit(context.Background(), m.msg)
}

// Body returns the raw record value.
func (m *ConsumerMessage) Body() []byte {
	return m.msg.Value
}

// Key returns the record key.
func (m *ConsumerMessage) Key() string {
	return string(m.msg.Key)
}

// Header returns the record headers with string values.
func (m *ConsumerMessage) Header() map[string]interface{} {
	return fromKafkaHeaders(m.msg.Headers)
}

// Value returns the decoded record value.
func (m *ConsumerMessage) Value() any {
	return m.value
}

// DecodeErr returns the decoding error, if any.
func (m *ConsumerMessage) DecodeErr() error {
	return m.decodeErr
}

// Topic returns the record topic.
func (m *ConsumerMessage) Topic() string {
	return m.msg.Topic
}

// Partition returns the record partition.
func (m *ConsumerMessage) Partition() int {
	return m.msg.Partition
}

// Context returns the context restored from the record headers.
func (m *ConsumerMessage) Context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

// Offset returns the record offset.
func (m *ConsumerMessage) Offset() int64 {
	return m.msg.Offset
}
