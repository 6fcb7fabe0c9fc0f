// algorithm.go: Symmetric-algorithm wrapper over any registered cipher family.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import (
	"sync"

	timecache "github.com/agilira/go-timecache"
	"go.uber.org/zap"
)

// Cipher is the capability a host drives: legal configuration values, the
// two file-transform entry points and the settings hook.
type Cipher interface {
	Identifier() string
	LegalBlockSizes() []KeySizes
	LegalKeySizes() []KeySizes
	LegalModes() []CipherMode
	LegalPaddings() []PaddingMode
	Encrypt(plaintext []byte, ks KeySource) ([]byte, error)
	Decrypt(ciphertext []byte, ks KeySource) ([]byte, error)
	Settings() Settings
	ApplySettings(s Settings) error
}

var _ Cipher = (*Algorithm)(nil)

// Option configures an Algorithm at construction.
type Option func(*Algorithm)

// WithLogger sets the logger. Key bytes are never logged, only fingerprints.
func WithLogger(l *zap.Logger) Option {
	return func(a *Algorithm) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithAllowZeroFill lets GenerateKey and GenerateIV pad short key-source
// output with zeros instead of failing. It weakens the key and is off by
// default; every fallback is logged as a warning.
func WithAllowZeroFill(allow bool) Option {
	return func(a *Algorithm) {
		a.allowZeroFill = allow
	}
}

// WithChunkSize sets the chunk size used by EncryptStream and DecryptStream.
// Zero keeps DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(a *Algorithm) {
		a.chunkSize = n
	}
}

// Algorithm turns a cipher family into a key, IV, mode and padding aware
// encrypt/decrypt object.
//
// Configuration setters fail with ErrConfigLocked once the algorithm has
// created its first encryptor or decryptor. The configuration is guarded
// by a mutex, so settings may be read while another goroutine runs an
// operation; the block loop itself runs outside the lock on a transform
// owned by the caller.
type Algorithm struct {
	mu sync.Mutex

	family        *Family
	blockSize     int // bits
	keySize       int // bits
	key           []byte
	iv            []byte
	mode          CipherMode
	padding       PaddingMode
	allowZeroFill bool
	locked        bool
	chunkSize     int

	logger *zap.Logger
}

// NewAlgorithm returns an algorithm with the family's default sizes, ECB and
// no padding.
func NewAlgorithm(family *Family, opts ...Option) (*Algorithm, error) {
	if family == nil || family.NewBlock == nil {
		return nil, newError(ErrUnknownFamily, ErrCodeUnknownFamily, "family requires a block factory")
	}
	a := &Algorithm{
		family:    family,
		blockSize: family.DefaultBlockSize,
		keySize:   family.DefaultKeySize,
		key:       make([]byte, family.DefaultKeySize/8),
		mode:      ModeECB,
		padding:   PaddingNone,
		chunkSize: DefaultChunkSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.chunkSize == 0 {
		a.chunkSize = DefaultChunkSize
	}
	return a, nil
}

// Identifier returns the family identifier.
func (a *Algorithm) Identifier() string { return a.family.ID }

// LegalBlockSizes returns the legal block sizes in bits.
func (a *Algorithm) LegalBlockSizes() []KeySizes {
	return append([]KeySizes(nil), a.family.BlockSizes...)
}

// LegalKeySizes returns the legal key sizes in bits.
func (a *Algorithm) LegalKeySizes() []KeySizes {
	return append([]KeySizes(nil), a.family.KeySizes...)
}

// LegalModes returns the modes the driver can run.
func (a *Algorithm) LegalModes() []CipherMode {
	return append([]CipherMode(nil), supportedModes...)
}

// LegalPaddings returns every declared padding value, including the ones
// whose Pad and Unpad are not implemented.
func (a *Algorithm) LegalPaddings() []PaddingMode {
	return []PaddingMode{PaddingNone, PaddingZeros, PaddingANSIX923, PaddingISO10126, PaddingPKCS7}
}

func (a *Algorithm) checkUnlocked(what string) error {
	if a.locked {
		return newError(ErrConfigLocked, ErrCodeConfigLocked,
			"cannot change %s of %s after operations have begun", what, a.family.ID)
	}
	return nil
}

// BlockSize returns the block size in bits.
func (a *Algorithm) BlockSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blockSize
}

// SetBlockSize sets the block size in bits. A shorter IV grows to the new
// block size with its prefix kept and the remainder zeroed.
func (a *Algorithm) SetBlockSize(bits int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setBlockSizeLocked(bits)
}

func (a *Algorithm) setBlockSizeLocked(bits int) error {
	if err := a.checkUnlocked("block size"); err != nil {
		return err
	}
	if !IsLegalSize(bits, a.family.BlockSizes) {
		return newError(ErrInvalidBlockSize, ErrCodeInvalidBlockSize,
			"legal block sizes for %s are %v, not %d", a.family.ID, LegalSizes(a.family.BlockSizes), bits)
	}
	a.blockSize = bits
	if a.iv != nil && len(a.iv) < bits/8 {
		grown := make([]byte, bits/8)
		copy(grown, a.iv)
		a.iv = grown
	}
	return nil
}

// KeySize returns the key size in bits.
func (a *Algorithm) KeySize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keySize
}

// SetKeySize sets the key size in bits. The stored key keeps its prefix and
// is truncated or zero-extended to the new size.
func (a *Algorithm) SetKeySize(bits int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setKeySizeLocked(bits)
}

func (a *Algorithm) setKeySizeLocked(bits int) error {
	if err := a.checkUnlocked("key size"); err != nil {
		return err
	}
	if !IsLegalSize(bits, a.family.KeySizes) {
		return newError(ErrInvalidKeySize, ErrCodeInvalidKeySize,
			"legal key sizes for %s are %v, not %d", a.family.ID, LegalSizes(a.family.KeySizes), bits)
	}
	resized := make([]byte, bits/8)
	copy(resized, a.key)
	Zeroize(a.key)
	a.key = resized
	a.keySize = bits
	return nil
}

// Key returns a copy of the stored key.
func (a *Algorithm) Key() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]byte(nil), a.key...)
}

// SetKey stores a copy of key and sets the key size from its length.
func (a *Algorithm) SetKey(key []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkUnlocked("key"); err != nil {
		return err
	}
	if !IsLegalSize(len(key)*8, a.family.KeySizes) {
		return newError(ErrInvalidKeySize, ErrCodeInvalidKeySize,
			"legal key sizes for %s are %v, not %d", a.family.ID, LegalSizes(a.family.KeySizes), len(key)*8)
	}
	Zeroize(a.key)
	a.key = append([]byte(nil), key...)
	a.keySize = len(key) * 8
	return nil
}

// IV returns a copy of the configured IV sized to the block, or nil if none is set.
func (a *Algorithm) IV() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.configuredIV()
}

func (a *Algorithm) configuredIV() []byte {
	if a.iv == nil {
		return nil
	}
	return append([]byte(nil), a.iv[:a.blockSize/8]...)
}

// SetIV stores a copy of iv, which must be exactly one block long.
func (a *Algorithm) SetIV(iv []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkUnlocked("IV"); err != nil {
		return err
	}
	if len(iv) != a.blockSize/8 {
		return newError(ErrInvalidIVSize, ErrCodeInvalidIVSize,
			"IV must be %d bytes, got %d", a.blockSize/8, len(iv))
	}
	a.iv = append([]byte(nil), iv...)
	return nil
}

// Mode returns the cipher mode.
func (a *Algorithm) Mode() CipherMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// SetMode sets the cipher mode. Only ModeECB is accepted.
func (a *Algorithm) SetMode(mode CipherMode) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setModeLocked(mode)
}

func (a *Algorithm) setModeLocked(mode CipherMode) error {
	if err := a.checkUnlocked("mode"); err != nil {
		return err
	}
	if !isSupportedMode(mode) {
		return newError(ErrModeNotSupported, ErrCodeModeNotSupported, "mode %s is not supported by %s", mode, a.family.ID)
	}
	a.mode = mode
	return nil
}

// Padding returns the padding mode.
func (a *Algorithm) Padding() PaddingMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.padding
}

// SetPadding sets the padding mode. Declared but unimplemented schemes are
// accepted here and fail when Encrypt or Decrypt runs.
func (a *Algorithm) SetPadding(padding PaddingMode) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setPaddingLocked(padding)
}

func (a *Algorithm) setPaddingLocked(padding PaddingMode) error {
	if err := a.checkUnlocked("padding"); err != nil {
		return err
	}
	if !padding.Valid() {
		return newError(ErrPaddingNotSupported, ErrCodePaddingUnsupported, "unknown padding mode %d", int(padding))
	}
	a.padding = padding
	return nil
}

// AllowZeroFill reports whether short key material is zero-filled.
func (a *Algorithm) AllowZeroFill() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allowZeroFill
}

// Locked reports whether the configuration is locked.
func (a *Algorithm) Locked() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.locked
}

// GenerateKey replaces the stored key with KeySize()/8 bytes from ks.
//
// If ks returns fewer bytes, the call fails with ErrShortKeyMaterial unless
// zero-fill was enabled with WithAllowZeroFill, in which case the missing
// trailing bytes are zero and a warning is logged.
func (a *Algorithm) GenerateKey(ks KeySource) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkUnlocked("key"); err != nil {
		return err
	}
	if ks == nil {
		return newError(ErrNoKeySource, ErrCodeNoKeySource, "no key source to generate a key from")
	}
	material, err := ks.RequestKey(a.keySize)
	if err != nil {
		return wrapError(ErrShortKeyMaterial, err, ErrCodeKeySource, "key source failed")
	}
	key, err := a.fill(material, a.keySize/8, "key")
	if err != nil {
		return err
	}
	Zeroize(a.key)
	a.key = key
	return nil
}

// GenerateIV replaces the configured IV with BlockSize()/8 bytes from ks,
// under the same short-material policy as GenerateKey. A key source that
// has no IV leaves the configured IV unchanged.
func (a *Algorithm) GenerateIV(ks KeySource) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkUnlocked("IV"); err != nil {
		return err
	}
	if ks == nil {
		return newError(ErrNoKeySource, ErrCodeNoKeySource, "no key source to generate an IV from")
	}
	material, err := ks.RequestIV(a.blockSize)
	if err != nil {
		return wrapError(ErrShortKeyMaterial, err, ErrCodeKeySource, "key source failed")
	}
	if material == nil {
		return nil
	}
	iv, err := a.fill(material, a.blockSize/8, "IV")
	if err != nil {
		return err
	}
	a.iv = iv
	return nil
}

// fill copies material into a buffer of size bytes, applying the zero-fill policy.
func (a *Algorithm) fill(material []byte, size int, what string) ([]byte, error) {
	defer Zeroize(material)

	if len(material) < size {
		if !a.allowZeroFill {
			return nil, newError(ErrShortKeyMaterial, ErrCodeShortKeyMaterial,
				"key source returned %d of %d %s bytes", len(material), size, what)
		}
		a.logger.Warn("zero-filling short key material",
			zap.String("family", a.family.ID),
			zap.String("material", what),
			zap.Int("have", len(material)),
			zap.Int("want", size))
	}
	out := make([]byte, size)
	copy(out, material)
	return out, nil
}

// CreateEncryptor returns a finalized encrypting transform. A nil key uses
// the stored key; a nil iv leaves the transform without an IV.
func (a *Algorithm) CreateEncryptor(key, iv []byte) (*Transform, error) {
	return a.createTransform(OpEncrypt, key, iv)
}

// CreateDecryptor returns a finalized decrypting transform.
func (a *Algorithm) CreateDecryptor(key, iv []byte) (*Transform, error) {
	return a.createTransform(OpDecrypt, key, iv)
}

func (a *Algorithm) createTransform(op Operation, key, iv []byte) (*Transform, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if key == nil {
		key = a.key
	}

	t, err := NewTransform(a.family, op)
	if err != nil {
		return nil, err
	}
	if err := t.SetBlockSize(a.blockSize); err != nil {
		return nil, err
	}
	if err := t.SetKey(key); err != nil {
		return nil, err
	}
	if err := t.SetIV(iv); err != nil {
		return nil, err
	}
	if err := t.SetMode(a.mode); err != nil {
		return nil, err
	}
	if err := t.SetPadding(a.padding); err != nil {
		return nil, err
	}
	if err := t.Finalize(); err != nil {
		return nil, err
	}

	a.locked = true
	a.logger.Debug("transform created",
		zap.String("family", a.family.ID),
		zap.Stringer("operation", op),
		zap.Int("block_size", a.blockSize),
		zap.Int("key_size", len(key)*8),
		zap.String("key_fingerprint", KeyFingerprint(key)))
	return t, nil
}

// snapshot is the configuration one Encrypt or Decrypt call runs with.
type snapshot struct {
	blockBytes, keyBytes int
	mode                 CipherMode
	padding              PaddingMode
	iv                   []byte
}

func (a *Algorithm) snapshot() snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return snapshot{
		blockBytes: a.blockSize / 8,
		keyBytes:   a.keySize / 8,
		mode:       a.mode,
		padding:    a.padding,
		iv:         a.configuredIV(),
	}
}

// material requests key and IV bytes from ks and checks them against cfg.
// The returned key must be zeroized by the caller.
func (a *Algorithm) material(ks KeySource, cfg snapshot) (key, iv []byte, err error) {
	raw, err := ks.RequestKey(cfg.keyBytes * 8)
	if err != nil {
		return nil, nil, wrapError(ErrNoKey, err, ErrCodeKeySource, "key source failed to supply a key")
	}
	if len(raw) == 0 {
		return nil, nil, newError(ErrNoKey, ErrCodeNoKey, "key source returned no key")
	}
	if len(raw) < cfg.keyBytes {
		Zeroize(raw)
		return nil, nil, newError(ErrKeyTooShort, ErrCodeKeyTooShort,
			"key source returned %d bytes, %d required", len(raw), cfg.keyBytes)
	}
	key = append([]byte(nil), raw[:cfg.keyBytes]...)
	Zeroize(raw)

	iv, err = ks.RequestIV(cfg.blockBytes * 8)
	if err != nil {
		Zeroize(key)
		return nil, nil, wrapError(ErrNoIV, err, ErrCodeKeySource, "key source failed to supply an IV")
	}
	switch {
	case iv == nil:
		iv = cfg.iv
	case len(iv) < cfg.blockBytes:
		Zeroize(key)
		return nil, nil, newError(ErrIVTooShort, ErrCodeIVTooShort,
			"key source returned a %d-byte IV, %d required", len(iv), cfg.blockBytes)
	default:
		iv = iv[:cfg.blockBytes]
	}
	if cfg.mode.NeedsIV() && iv == nil {
		Zeroize(key)
		return nil, nil, newError(ErrNoIV, ErrCodeNoIV, "mode %s requires an IV", cfg.mode)
	}
	return key, iv, nil
}

// Encrypt pads plaintext, then encrypts it with key and IV material drawn
// from ks. The stored key is not used or changed.
//
// Example:
//
//	c, _ := cryptex.NewCipher("rijndael")
//	_ = c.SetPadding(cryptex.PaddingZeros)
//	ct, err := c.Encrypt(data, cryptex.NewStaticKeySource(key, nil))
func (a *Algorithm) Encrypt(plaintext []byte, ks KeySource) ([]byte, error) {
	if ks == nil {
		return nil, newError(ErrNoKeySource, ErrCodeNoKeySource, "encrypt requires a key source")
	}
	defer a.rewind(ks)
	if len(plaintext) == 0 {
		return nil, newError(ErrEmptyInput, ErrCodeEmptyInput, "plaintext cannot be empty")
	}

	cfg := a.snapshot()
	key, iv, err := a.material(ks, cfg)
	if err != nil {
		return nil, err
	}
	defer Zeroize(key)

	padded, err := Pad(plaintext, cfg.blockBytes, cfg.padding)
	if err != nil {
		return nil, err
	}
	defer Zeroize(padded)
	if len(padded)%cfg.blockBytes != 0 {
		return nil, newError(ErrBlockSizeMismatch, ErrCodeBlockSizeMismatch,
			"plaintext of %d bytes is not a multiple of %d and padding is %s", len(padded), cfg.blockBytes, cfg.padding)
	}

	enc, err := a.CreateEncryptor(key, iv)
	if err != nil {
		return nil, err
	}
	return enc.TransformFinalBlock(padded)
}

// Decrypt decrypts ciphertext with material drawn from ks, then unpads it.
func (a *Algorithm) Decrypt(ciphertext []byte, ks KeySource) ([]byte, error) {
	if ks == nil {
		return nil, newError(ErrNoKeySource, ErrCodeNoKeySource, "decrypt requires a key source")
	}
	defer a.rewind(ks)
	if len(ciphertext) == 0 {
		return nil, newError(ErrEmptyInput, ErrCodeEmptyInput, "ciphertext cannot be empty")
	}

	cfg := a.snapshot()
	if len(ciphertext)%cfg.blockBytes != 0 {
		return nil, newError(ErrBlockSizeMismatch, ErrCodeBlockSizeMismatch,
			"ciphertext of %d bytes is not a multiple of the %d-byte block", len(ciphertext), cfg.blockBytes)
	}
	if err := checkPadding(cfg.padding); err != nil {
		return nil, err
	}

	key, iv, err := a.material(ks, cfg)
	if err != nil {
		return nil, err
	}
	defer Zeroize(key)

	dec, err := a.CreateDecryptor(key, iv)
	if err != nil {
		return nil, err
	}
	plain, err := dec.TransformFinalBlock(ciphertext)
	if err != nil {
		return nil, err
	}
	return Unpad(plain, cfg.padding)
}

func (a *Algorithm) rewind(ks KeySource) {
	r, ok := ks.(Rewinder)
	if !ok {
		return
	}
	if err := r.Rewind(); err != nil {
		a.logger.Warn("key source rewind failed", zap.Error(err))
	}
}

// Settings returns the current configuration as a settings record.
func (a *Algorithm) Settings() Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Settings{
		Version:       SettingsVersion,
		Family:        a.family.ID,
		KeySize:       a.keySize,
		BlockSize:     a.blockSize,
		Mode:          a.mode,
		Padding:       a.padding,
		AllowZeroFill: a.allowZeroFill,
		SavedAt:       timecache.CachedTime().UTC(),
	}
}

// ApplySettings validates s in full and then applies it. On error nothing
// changes.
func (a *Algorithm) ApplySettings(s Settings) error {
	if err := s.CheckVersion(); err != nil {
		return err
	}
	if s.Family != a.family.ID {
		return newError(ErrUnknownFamily, ErrCodeUnknownFamily,
			"settings are for %q, algorithm is %q", s.Family, a.family.ID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkUnlocked("settings"); err != nil {
		return err
	}
	if !IsLegalSize(s.BlockSize, a.family.BlockSizes) {
		return newError(ErrInvalidBlockSize, ErrCodeInvalidBlockSize,
			"legal block sizes for %s are %v, not %d", a.family.ID, LegalSizes(a.family.BlockSizes), s.BlockSize)
	}
	if !IsLegalSize(s.KeySize, a.family.KeySizes) {
		return newError(ErrInvalidKeySize, ErrCodeInvalidKeySize,
			"legal key sizes for %s are %v, not %d", a.family.ID, LegalSizes(a.family.KeySizes), s.KeySize)
	}
	if !isSupportedMode(s.Mode) {
		return newError(ErrModeNotSupported, ErrCodeModeNotSupported, "mode %s is not supported by %s", s.Mode, a.family.ID)
	}
	if !s.Padding.Valid() {
		return newError(ErrPaddingNotSupported, ErrCodePaddingUnsupported, "unknown padding mode %d", int(s.Padding))
	}

	// Validated above; the setters cannot fail from here on.
	_ = a.setBlockSizeLocked(s.BlockSize)
	_ = a.setKeySizeLocked(s.KeySize)
	_ = a.setModeLocked(s.Mode)
	_ = a.setPaddingLocked(s.Padding)
	a.allowZeroFill = s.AllowZeroFill

	a.logger.Debug("settings applied",
		zap.String("family", a.family.ID),
		zap.Int("block_size", a.blockSize),
		zap.Int("key_size", a.keySize),
		zap.Stringer("mode", a.mode),
		zap.Stringer("padding", a.padding))
	return nil
}
