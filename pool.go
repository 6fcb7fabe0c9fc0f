// pool.go: Buffer pooling for block scratch space and stream chunks.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import (
	"sync"
)

const (
	blockBufferSize = 32               // largest Rijndael block
	chunkBufferSize = DefaultChunkSize // default stream chunk
)

func newPool(size int) *sync.Pool {
	return &sync.Pool{
		New: func() interface{} {
			buf := make([]byte, size)
			return &buf
		},
	}
}

var (
	// One State worth of bytes, taken on every cipher.Block call.
	blockBufferPool = newPool(blockBufferSize)

	// Stream chunks up to the default size share one class.
	chunkBufferPool = newPool(chunkBufferSize)
)

func init() {
	WarmupPools(4)
}

// poolFor returns the pool serving buffers of the given capacity, or nil.
func poolFor(capacity int) *sync.Pool {
	switch capacity {
	case blockBufferSize:
		return blockBufferPool
	case chunkBufferSize:
		return chunkBufferPool
	}
	return nil
}

// getBuffer returns a buffer of len size. Sizes above the chunk class are
// allocated directly and never pooled.
func getBuffer(size int) *[]byte {
	var class int
	switch {
	case size <= blockBufferSize:
		class = blockBufferSize
	case size <= chunkBufferSize:
		class = chunkBufferSize
	default:
		buf := make([]byte, size)
		return &buf
	}
	buf := poolFor(class).Get().(*[]byte)
	*buf = (*buf)[:size]
	return buf
}

// putBuffer wipes the whole capacity of buf, which may hold plaintext or
// round keys, and returns it to its pool.
func putBuffer(buf *[]byte) {
	if buf == nil {
		return
	}
	full := (*buf)[:cap(*buf)]
	clear(full)
	if p := poolFor(cap(full)); p != nil {
		*buf = full
		p.Put(buf)
	}
}

// WarmupPools pre-allocates count buffers in each pool.
func WarmupPools(count int) {
	for _, size := range []int{blockBufferSize, chunkBufferSize} {
		held := make([]*[]byte, count)
		for i := range held {
			held[i] = getBuffer(size)
		}
		for _, b := range held {
			putBuffer(b)
		}
	}
}
