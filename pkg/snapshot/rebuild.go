package snapshot

import (
	"io"

	"github.com/raftzoo/zoocore/pkg/metrics"
)

// forEachElement drives a Reader to completion, calling fn with every
// element of every batch in the file, then validates the tail checksum.
// Domain rebuilders use this so they only have to know how to decode one
// record at a time.
func forEachElement(path string, collection string, fn func(elem []byte) error) error {
	r, err := OpenReader(path)
	if err != nil {
		return err
	}

	for {
		body, err := r.NextBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.Close()
			return err
		}
		metrics.BatchesReadTotal.WithLabelValues(collection).Inc()
		for _, elem := range body.Elements {
			if err := fn(elem); err != nil {
				r.Close()
				return err
			}
		}
	}
	return r.Finish()
}
