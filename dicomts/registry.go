// Package dicomts implements the Transfer-Syntax Registry: resolution of
// a TransferSyntaxUID string to the byte order, VR style, and codec
// behavior a Decoder/Encoder needs to read or write a dataset body.
package dicomts

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/tvbird-dicom/dicomcore/dicomio"
	"github.com/tvbird-dicom/dicomcore/dicomuid"
)

// TransferSyntax describes one registered transfer syntax: how its
// dataset body is framed (byte order, Implicit vs Explicit VR) and
// whether PixelData under it is encapsulated and/or the dataset body
// itself is deflate-compressed.
type TransferSyntax struct {
	UID          string
	Name         string
	ByteOrder    binary.ByteOrder
	Implicit     dicomio.IsImplicitVR
	Encapsulated bool
	Deflated     bool

	stub bool
}

type registry struct {
	mu     sync.RWMutex
	frozen bool
	table  map[string]*TransferSyntax
}

var global = newRegistry()

func newRegistry() *registry {
	r := &registry{table: map[string]*TransferSyntax{}}
	r.registerBuiltins()
	return r
}

func (r *registry) registerBuiltins() {
	builtins := []*TransferSyntax{
		{UID: dicomuid.ImplicitVRLittleEndian, Name: "Implicit VR Little Endian",
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ImplicitVR},
		{UID: dicomuid.ExplicitVRLittleEndian, Name: "Explicit VR Little Endian",
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR},
		{UID: dicomuid.ExplicitVRBigEndian, Name: "Explicit VR Big Endian",
			ByteOrder: binary.BigEndian, Implicit: dicomio.ExplicitVR},
		{UID: dicomuid.DeflatedExplicitVRLittleEndian, Name: "Deflated Explicit VR Little Endian",
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Deflated: true},
		{UID: dicomuid.JPEGBaseline1, Name: dicomuid.Name(dicomuid.JPEGBaseline1),
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Encapsulated: true},
		{UID: dicomuid.JPEGExtended24, Name: dicomuid.Name(dicomuid.JPEGExtended24),
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Encapsulated: true},
		{UID: dicomuid.JPEGLossless14, Name: dicomuid.Name(dicomuid.JPEGLossless14),
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Encapsulated: true},
		{UID: dicomuid.JPEGLossless14FOP, Name: dicomuid.Name(dicomuid.JPEGLossless14FOP),
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Encapsulated: true},
		{UID: dicomuid.JPEGLSLossless, Name: dicomuid.Name(dicomuid.JPEGLSLossless),
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Encapsulated: true},
		{UID: dicomuid.JPEGLSLossy, Name: dicomuid.Name(dicomuid.JPEGLSLossy),
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Encapsulated: true},
		{UID: dicomuid.JPEG2000Lossless, Name: dicomuid.Name(dicomuid.JPEG2000Lossless),
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Encapsulated: true},
		{UID: dicomuid.JPEG2000, Name: dicomuid.Name(dicomuid.JPEG2000),
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Encapsulated: true},
		{UID: dicomuid.JPEG2000MCLossless, Name: dicomuid.Name(dicomuid.JPEG2000MCLossless),
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Encapsulated: true},
		{UID: dicomuid.JPEG2000MC, Name: dicomuid.Name(dicomuid.JPEG2000MC),
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Encapsulated: true},
		{UID: dicomuid.RLELossless, Name: dicomuid.Name(dicomuid.RLELossless),
			ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR, Encapsulated: true},
	}
	for _, ts := range builtins {
		r.table[ts.UID] = ts
	}
}

func (r *registry) lookup(uid string) (*TransferSyntax, error) {
	uid = strings.TrimSuffix(uid, "\x00")
	r.mu.RLock()
	defer r.mu.RUnlock()
	ts, ok := r.table[uid]
	if !ok || ts.stub {
		return nil, fmt.Errorf("%w: %s", dicomio.ErrUnsupportedTransferSyntax, uid)
	}
	return ts, nil
}

func (r *registry) registerStub(uid, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.table[uid]; !ok {
		r.table[uid] = &TransferSyntax{UID: uid, Name: name, stub: true}
	}
}

// submit registers ts under ts.UID. Once the registry is frozen, this
// only succeeds if an entry already exists for ts.UID and that entry is
// a stub (registered via RegisterStub) — late replacement of a stub is
// always allowed; adding a brand-new UID after Freeze is not.
func (r *registry) submit(ts *TransferSyntax) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, exists := r.table[ts.UID]
	if exists && !existing.stub {
		return fmt.Errorf("dicomts: %s is already registered with a full definition", ts.UID)
	}
	if r.frozen && !exists {
		return fmt.Errorf("dicomts: registry is frozen, cannot register new transfer syntax %s", ts.UID)
	}
	r.table[ts.UID] = ts
	return nil
}

func (r *registry) freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Lookup resolves a transfer syntax UID to its registered descriptor. A
// single trailing NUL byte (the padding DICOM uses to force a UI value to
// even length) is trimmed before comparison, so Lookup(uid) and
// Lookup(uid+"\x00") always agree.
func Lookup(uid string) (*TransferSyntax, error) { return global.lookup(uid) }

// Submit registers a new transfer syntax, or replaces a previously
// stubbed-out one (see RegisterStub). Submitting a brand-new UID after
// Freeze has been called fails.
func Submit(ts *TransferSyntax) error { return global.submit(ts) }

// RegisterStub pre-declares a transfer syntax UID without full codec
// semantics, so Lookup callers can at least get a "registered but
// unsupported" answer until a real Submit replaces it.
func RegisterStub(uid, name string) { global.registerStub(uid, name) }

// Freeze prevents any further brand-new UIDs from being registered.
// Stubs registered before Freeze may still be replaced by a later Submit;
// built-in transfer syntaxes are full definitions and are never replaced.
func Freeze() { global.freeze() }

// Reset restores the registry to its built-in-only, unfrozen state. Only
// meant for test isolation.
func Reset() { global = newRegistry() }
