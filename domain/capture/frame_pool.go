package capture

import "sync"

// Read-back buffers are pooled so a steady capture rate does not allocate a
// fresh w*h*4 slice per frame. The pixels are copied into a caller-owned
// pic.Image before the buffer goes back.

var bufferPool sync.Pool // stores *[]byte

// acquireBuffer returns a pooled slice of exactly n bytes.
func acquireBuffer(n int) *[]byte {
	if v := bufferPool.Get(); v != nil {
		buf := v.(*[]byte)
		if cap(*buf) >= n {
			*buf = (*buf)[:n]
			return buf
		}
	}
	buf := make([]byte, n)
	return &buf
}

// recycleBuffer returns buf to the pool. The caller must not touch it again.
func recycleBuffer(buf *[]byte) {
	if buf == nil || *buf == nil {
		return
	}
	bufferPool.Put(buf)
}
