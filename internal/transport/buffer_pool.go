package transport

import (
	"sync"
)

// bufferPool holds reusable MaxDatagram-sized receive buffers so Receive
// doesn't allocate on every call.
var bufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, MaxDatagram)
		return &buf
	},
}

// GetBuffer returns a pointer to a MaxDatagram-sized buffer from the pool.
// Callers must return it with PutBuffer.
func GetBuffer() *[]byte {
	return bufferPool.Get().(*[]byte)
}

// PutBuffer zeroes and returns a buffer obtained from GetBuffer to the pool.
func PutBuffer(bufPtr *[]byte) {
	buf := *bufPtr
	for i := range buf {
		buf[i] = 0
	}
	bufferPool.Put(bufPtr)
}
