// Package audit buffers credential audit events and delivers them to a sink.
//
// # Components
//
//   - [Sink] consumes events. Implementations: [NoOpSink], [ChannelSink],
//     [JSONWriterSink], [ZapSink] and [KafkaSink].
//   - [Dispatcher] relays events to a sink from a single goroutine, either
//     dropping or blocking when its buffer is full.
//
// The package does not decide which events are emitted; flows do. Events never
// carry plaintext passwords, reset tokens or hashes.
package audit
