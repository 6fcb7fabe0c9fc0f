// streaming.go: Chunked encryption and decryption for large files.
//
// The stream format is the raw ciphertext, identical to what
// Algorithm.Encrypt produces for the same input, so files written either
// way can be read either way.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import (
	"errors"
	"io"

	goerrors "github.com/agilira/go-errors"
)

// DefaultChunkSize is the default streaming chunk (64KB), rounded down to a
// whole number of blocks at construction.
const DefaultChunkSize = 64 * 1024

const maxChunkSize = 10 * 1024 * 1024

// StreamingEncryptor encrypts everything written to it.
//
// Example usage:
//
//	enc, _ := alg.CreateEncryptor(key, nil)
//	w, _ := cryptex.NewStreamingEncryptor(out, enc)
//	io.Copy(w, in)
//	w.Close() // pads and flushes the final block
type StreamingEncryptor interface {
	// Write buffers data and encrypts every full chunk.
	Write(data []byte) (int, error)

	// Close pads and flushes the tail. It must be called.
	Close() error
}

// StreamingDecryptor decrypts everything read through it.
type StreamingDecryptor interface {
	Read(data []byte) (int, error)
	Close() error
}

type streamingEncryptor struct {
	writer    io.Writer
	t         *Transform
	blockSize int
	chunkSize int
	chunk     *[]byte
	buffered  int
	total     int64
	closed    bool
}

type streamingDecryptor struct {
	reader    io.Reader
	t         *Transform
	blockSize int
	chunk     *[]byte
	pending   []byte
	total     int64
	eof       bool
	closed    bool
}

// NewStreamingEncryptor wraps writer with an encrypting transform and the
// default chunk size.
func NewStreamingEncryptor(writer io.Writer, t *Transform) (StreamingEncryptor, error) {
	return NewStreamingEncryptorWithChunkSize(writer, t, DefaultChunkSize)
}

// NewStreamingEncryptorWithChunkSize is NewStreamingEncryptor with a custom
// chunk size between one block and 10MB.
func NewStreamingEncryptorWithChunkSize(writer io.Writer, t *Transform, chunkSize int) (StreamingEncryptor, error) {
	bs, chunkSize, err := prepareStream(t, OpEncrypt, chunkSize)
	if err != nil {
		return nil, err
	}
	return &streamingEncryptor{
		writer:    writer,
		t:         t,
		blockSize: bs,
		chunkSize: chunkSize,
		chunk:     getBuffer(chunkSize),
	}, nil
}

// NewStreamingDecryptor wraps reader with a decrypting transform and the
// default chunk size.
func NewStreamingDecryptor(reader io.Reader, t *Transform) (StreamingDecryptor, error) {
	return NewStreamingDecryptorWithChunkSize(reader, t, DefaultChunkSize)
}

// NewStreamingDecryptorWithChunkSize is NewStreamingDecryptor with a custom chunk size.
func NewStreamingDecryptorWithChunkSize(reader io.Reader, t *Transform, chunkSize int) (StreamingDecryptor, error) {
	bs, chunkSize, err := prepareStream(t, OpDecrypt, chunkSize)
	if err != nil {
		return nil, err
	}
	return &streamingDecryptor{
		reader:    reader,
		t:         t,
		blockSize: bs,
		chunk:     getBuffer(chunkSize),
	}, nil
}

// prepareStream finalizes t and aligns chunkSize to its block size.
func prepareStream(t *Transform, op Operation, chunkSize int) (int, int, error) {
	if t == nil || t.Operation() != op {
		return 0, 0, newError(ErrInvalidOperation, ErrCodeInvalidOperation, "stream requires a %s transform", op)
	}
	if chunkSize <= 0 || chunkSize > maxChunkSize {
		return 0, 0, goerrors.New("INVALID_CHUNK_SIZE", "chunk size must be between 1 and 10MB")
	}
	if err := checkPadding(t.Padding()); err != nil {
		return 0, 0, err
	}
	if err := t.Finalize(); err != nil {
		return 0, 0, err
	}

	bs := t.BlockSize() / 8
	chunkSize -= chunkSize % bs
	if chunkSize == 0 {
		chunkSize = bs
	}
	return bs, chunkSize, nil
}

// Write implements io.Writer.
func (e *streamingEncryptor) Write(data []byte) (int, error) {
	if e.closed {
		return 0, goerrors.New("ENCRYPTOR_CLOSED", "cannot write to closed encryptor")
	}

	written := 0
	for len(data) > 0 {
		n := copy((*e.chunk)[e.buffered:e.chunkSize], data)
		e.buffered += n
		data = data[n:]
		written += n

		if e.buffered == e.chunkSize {
			if err := e.flushChunk(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

func (e *streamingEncryptor) flushChunk() error {
	chunk := (*e.chunk)[:e.buffered]
	if _, err := e.t.TransformBlock(chunk, chunk); err != nil {
		return err
	}
	if _, err := e.writer.Write(chunk); err != nil {
		return goerrors.Wrap(err, "CHUNK_WRITE_FAILED", "failed to write encrypted chunk")
	}
	e.total += int64(e.buffered)
	e.buffered = 0
	return nil
}

// Close pads the buffered tail, encrypts it and writes it out. An empty
// stream fails with ErrEmptyInput.
func (e *streamingEncryptor) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	defer putBuffer(e.chunk)

	if e.total == 0 && e.buffered == 0 {
		return newError(ErrEmptyInput, ErrCodeEmptyInput, "plaintext stream is empty")
	}
	if e.buffered == 0 {
		return nil
	}

	padding := e.t.Padding()
	tail, err := Pad((*e.chunk)[:e.buffered], e.blockSize, padding)
	if err != nil {
		return err
	}
	defer Zeroize(tail)
	if len(tail)%e.blockSize != 0 {
		return newError(ErrBlockSizeMismatch, ErrCodeBlockSizeMismatch,
			"stream length is not a multiple of %d and padding is %s", e.blockSize, padding)
	}

	out, err := e.t.TransformFinalBlock(tail)
	if err != nil {
		return err
	}
	if _, err := e.writer.Write(out); err != nil {
		return goerrors.Wrap(err, "CHUNK_WRITE_FAILED", "failed to write final block")
	}
	e.total += int64(len(out))
	return nil
}

// Read implements io.Reader.
func (d *streamingDecryptor) Read(data []byte) (int, error) {
	if d.closed {
		return 0, goerrors.New("DECRYPTOR_CLOSED", "cannot read from closed decryptor")
	}

	for len(d.pending) == 0 {
		if d.eof {
			return 0, io.EOF
		}
		if err := d.readNextChunk(); err != nil {
			return 0, err
		}
	}

	n := copy(data, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *streamingDecryptor) readNextChunk() error {
	chunk := *d.chunk
	n, err := io.ReadFull(d.reader, chunk)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		d.eof = true
	default:
		return goerrors.Wrap(err, "CHUNK_READ_FAILED", "failed to read encrypted chunk")
	}

	if n == 0 {
		if d.total == 0 {
			return newError(ErrEmptyInput, ErrCodeEmptyInput, "ciphertext stream is empty")
		}
		return nil
	}
	if n%d.blockSize != 0 {
		return newError(ErrBlockSizeMismatch, ErrCodeBlockSizeMismatch,
			"ciphertext stream is not a multiple of the %d-byte block", d.blockSize)
	}

	plain := chunk[:n]
	if _, err := d.t.TransformBlock(plain, plain); err != nil {
		return err
	}
	d.total += int64(n)
	if d.eof {
		if plain, err = Unpad(plain, d.t.Padding()); err != nil {
			return err
		}
	}
	d.pending = plain
	return nil
}

// Close releases the chunk buffer.
func (d *streamingDecryptor) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.pending = nil
	putBuffer(d.chunk)
	return nil
}

// EncryptStream encrypts src into dst with key material from ks and returns
// the number of ciphertext bytes written.
func (a *Algorithm) EncryptStream(dst io.Writer, src io.Reader, ks KeySource) (int64, error) {
	if ks == nil {
		return 0, newError(ErrNoKeySource, ErrCodeNoKeySource, "encrypt requires a key source")
	}
	defer a.rewind(ks)

	key, iv, err := a.material(ks, a.snapshot())
	if err != nil {
		return 0, err
	}
	defer Zeroize(key)

	enc, err := a.CreateEncryptor(key, iv)
	if err != nil {
		return 0, err
	}
	w, err := NewStreamingEncryptorWithChunkSize(dst, enc, a.chunkSize)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return w.(*streamingEncryptor).total, nil
}

// DecryptStream decrypts src into dst with key material from ks and returns
// the number of plaintext bytes written.
func (a *Algorithm) DecryptStream(dst io.Writer, src io.Reader, ks KeySource) (int64, error) {
	if ks == nil {
		return 0, newError(ErrNoKeySource, ErrCodeNoKeySource, "decrypt requires a key source")
	}
	defer a.rewind(ks)

	key, iv, err := a.material(ks, a.snapshot())
	if err != nil {
		return 0, err
	}
	defer Zeroize(key)

	dec, err := a.CreateDecryptor(key, iv)
	if err != nil {
		return 0, err
	}
	r, err := NewStreamingDecryptorWithChunkSize(src, dec, a.chunkSize)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return io.Copy(dst, r)
}
