// Package journal persists an append-only record of committed offering
// operations. Records are CBOR-encoded and keyed by a monotonically
// increasing big-endian sequence number, so iteration order is append
// order. The journal is an audit artifact; the ledger state itself is
// never reconstructed from it.
package journal

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	"github.com/ugorji/go/codec"

	"github.com/crowdlane/offeringd/internal/core/offering"
)

var ErrClosed = errors.New("journal is closed")

// Record is one committed operation.
type Record struct {
	Seq      uint64    `codec:"seq" json:"seq"`
	ID       string    `codec:"id" json:"id"`
	Kind     string    `codec:"kind" json:"kind"`
	Investor string    `codec:"investor,omitempty" json:"investor,omitempty"`
	Currency string    `codec:"currency,omitempty" json:"currency,omitempty"`
	Amount   string    `codec:"amount,omitempty" json:"amount,omitempty"`
	Phase    string    `codec:"phase" json:"phase"`
	At       time.Time `codec:"at" json:"at"`
}

// Recorder adapts the journal to the engine's fire-and-forget audit
// hook. Append failures are reported through onError and never block
// the operation that produced the record.
type Recorder struct {
	j       *Journal
	onError func(error)
}

// NewRecorder wraps j. onError may be nil.
func NewRecorder(j *Journal, onError func(error)) *Recorder {
	return &Recorder{j: j, onError: onError}
}

// Record implements offering.Auditor.
func (r *Recorder) Record(rec offering.AuditRecord) {
	err := r.j.Append(Record{
		Kind:     rec.Kind,
		Investor: rec.Investor,
		Currency: rec.Currency,
		Amount:   rec.Amount,
		Phase:    rec.Phase,
		At:       rec.At,
	})
	if err != nil && r.onError != nil {
		r.onError(err)
	}
}

// Journal is a pebble-backed append-only log.
type Journal struct {
	db     *pebble.DB
	nextSeq uint64
	handle codec.CborHandle
}

// Open opens (or creates) a journal at path and positions the sequence
// counter after the last persisted record.
func Open(path string) (*Journal, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	j := &Journal{db: db}
	iter, err := db.NewIter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	if iter.Last() && len(iter.Key()) == 8 {
		j.nextSeq = binary.BigEndian.Uint64(iter.Key()) + 1
	}
	if err := iter.Close(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Append assigns the next sequence number and a record id, then
// persists the record synchronously.
func (j *Journal) Append(r Record) error {
	if j.db == nil {
		return ErrClosed
	}
	r.Seq = j.nextSeq
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	var buf []byte
	if err := codec.NewEncoderBytes(&buf, &j.handle).Encode(r); err != nil {
		return err
	}
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], r.Seq)
	if err := j.db.Set(key[:], buf, pebble.Sync); err != nil {
		return err
	}
	j.nextSeq++
	return nil
}

// Tail returns up to n most recent records, oldest first.
func (j *Journal) Tail(n int) ([]Record, error) {
	if j.db == nil {
		return nil, ErrClosed
	}
	iter, err := j.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Record
	for ok := iter.Last(); ok && len(out) < n; ok = iter.Prev() {
		var r Record
		val := make([]byte, len(iter.Value()))
		copy(val, iter.Value())
		if err := codec.NewDecoderBytes(val, &j.handle).Decode(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	// Reverse into append order.
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// Close closes the underlying store.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}
