package broker

type subscribeRequest[TPayload any] struct {
	channel chan TPayload
	done    chan struct{}
}

type unsubscribeRequest[TPayload any] struct {
	channel chan TPayload
	done    chan struct{}
}

// FanOutBroker delivers every published payload to all current subscribers.
//
// It backs the SSE leaderboard stream: each connected dashboard subscribes,
// and every quiz submission publishes a fresh snapshot that fans out to all
// of them. A subscriber that cannot keep up has the payload dropped rather
// than blocking the publisher, since a newer snapshot supersedes the missed
// one anyway.
type FanOutBroker[TPayload any] struct {
	stopChannel        chan struct{}
	publishChannel     chan TPayload
	subscribeChannel   chan subscribeRequest[TPayload]
	unsubscribeChannel chan unsubscribeRequest[TPayload]
}

// NewFanOutBroker creates a new FanOutBroker. Call Start in a goroutine and
// Stop to shut it down.
func NewFanOutBroker[TPayload any]() *FanOutBroker[TPayload] {
	broker := FanOutBroker[TPayload]{
		stopChannel:        make(chan struct{}),
		publishChannel:     make(chan TPayload),
		subscribeChannel:   make(chan subscribeRequest[TPayload]),
		unsubscribeChannel: make(chan unsubscribeRequest[TPayload]),
	}
	return &broker
}

// Start listening for publish, subscribe, and unsubscribe events. This
// function blocks until Stop() is called, so it should be called in a
// goroutine.
func (b *FanOutBroker[TPayload]) Start() {
	subscribers := map[chan TPayload]struct{}{}
	for {
		select {
		case <-b.stopChannel:
			for channel := range subscribers {
				close(channel)
			}
			return

		case subscription := <-b.subscribeChannel:
			subscribers[subscription.channel] = struct{}{}
			close(subscription.done)

		case unsubscription := <-b.unsubscribeChannel:
			if _, ok := subscribers[unsubscription.channel]; ok {
				delete(subscribers, unsubscription.channel)
				close(unsubscription.channel)
			}
			close(unsubscription.done)

		case payload := <-b.publishChannel:
			for channel := range subscribers {
				select {
				case channel <- payload:
				default:
					// Subscriber is not keeping up, drop the payload.
				}
			}
		}
	}
}

// Stop the goroutine that handles the broker and close all subscriber
// channels.
func (b *FanOutBroker[TPayload]) Stop() {
	close(b.stopChannel)
}

// Subscribe registers a new subscriber and returns its channel. The channel
// is buffered so a slow reader misses snapshots instead of stalling the
// broker.
func (b *FanOutBroker[TPayload]) Subscribe() chan TPayload {
	channel := make(chan TPayload, 1)
	done := make(chan struct{})
	select {
	case b.subscribeChannel <- subscribeRequest[TPayload]{channel: channel, done: done}:
		<-done
	case <-b.stopChannel:
		close(channel)
	}
	return channel
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *FanOutBroker[TPayload]) Unsubscribe(channel chan TPayload) {
	done := make(chan struct{})
	select {
	case b.unsubscribeChannel <- unsubscribeRequest[TPayload]{channel: channel, done: done}:
		<-done
	case <-b.stopChannel:
	}
}

// Publish fans the payload out to every current subscriber.
func (b *FanOutBroker[TPayload]) Publish(payload TPayload) {
	select {
	case b.publishChannel <- payload:
	case <-b.stopChannel:
	}
}
