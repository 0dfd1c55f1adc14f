// Package ringbuf implements a fixed-capacity circular byte buffer for
// firmware-style producer/consumer queues, such as a UART receive path.
//
// Storage is allocated once by New and never grows. Push and Get are O(1).
// The buffer tracks an explicit element count next to its write and read
// cursors, so a full buffer is distinguishable from an empty one and every
// slot is usable. By default a push into a full buffer drops the oldest
// unread byte; WithOverflow(OverflowReject) makes it fail instead.
//
// A RingBuffer is not safe for concurrent use.
package ringbuf
