package snapshot

import (
	"github.com/raftzoo/zoocore/pkg/batch"
	"github.com/raftzoo/zoocore/pkg/checksum"
	"github.com/raftzoo/zoocore/pkg/metrics"
)

// batchAccumulator is the skeleton every domain serializer in this
// package shares (spec §4.5): accumulate records into a batch.Body,
// flush at the batch_size boundary, fold each flushed batch's CRC into
// the running file checksum, and close with a tail on Finish. An empty
// collection never flushes at all, so it produces zero batches and a
// zero running checksum, matching an all-zero tail.
type batchAccumulator struct {
	w          *Writer
	body       *batch.Body
	batchSize  int
	checksum   uint32
	collection string
	pending    bool
}

func newBatchAccumulator(w *Writer, typ batch.Type, batchSize int, collection string) *batchAccumulator {
	return &batchAccumulator{
		w:          w,
		body:       &batch.Body{Type: typ},
		batchSize:  batchSize,
		collection: collection,
	}
}

// Add appends elem to the current batch, then flushes the batch once it
// holds batchSize elements.
func (a *batchAccumulator) Add(elem []byte) error {
	a.body.Add(elem)
	a.pending = true
	if a.body.Len() >= a.batchSize {
		return a.flush()
	}
	return nil
}

func (a *batchAccumulator) flush() error {
	_, crc, err := a.w.WriteBatch(a.body)
	if err != nil {
		return err
	}
	a.checksum = checksum.Fold(a.checksum, crc)
	a.pending = false
	metrics.BatchesWrittenTotal.WithLabelValues(a.collection).Inc()
	return nil
}

// Finish flushes whatever remains and writes the tail. A collection that
// never had an element added produces no batches at all, so its tail
// checksum stays zero.
func (a *batchAccumulator) Finish() error {
	if a.pending {
		if err := a.flush(); err != nil {
			return err
		}
	}
	return a.w.CloseWithTail(a.checksum)
}
