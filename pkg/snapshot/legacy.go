package snapshot

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/raftzoo/zoocore/pkg/batch"
	"github.com/raftzoo/zoocore/pkg/zkerr"
)

// Legacy V0/V1 batches predate the self-describing Body format in
// package batch. The source system encoded each record as its own
// protobuf message, "SnapshotItemPB", with a batch_type enum field and a
// single opaque data byte field:
//
//	message SnapshotItemPB {
//	  int32 batch_type = 1;
//	  bytes data       = 2;
//	}
//
// A legacy batch body is a sequence of such messages, each framed as a
// length-delimited entry of one repeated field — the same wire shape
// protobuf itself uses for a `repeated SnapshotItemPB items = 1` field,
// which is what lets this module decode it with protowire directly
// rather than needing generated message types.
const legacyItemsFieldNumber = protowire.Number(1)

const (
	legacyBatchTypeField = protowire.Number(1)
	legacyDataField      = protowire.Number(2)
)

// legacySerializeItems encodes elements as a sequence of SnapshotItemPB
// entries, all sharing typ as their batch_type.
func legacySerializeItems(typ batch.Type, elements [][]byte) []byte {
	var out []byte
	for _, elem := range elements {
		var item []byte
		item = protowire.AppendTag(item, legacyBatchTypeField, protowire.VarintType)
		item = protowire.AppendVarint(item, uint64(int32(typ)))
		item = protowire.AppendTag(item, legacyDataField, protowire.BytesType)
		item = protowire.AppendBytes(item, elem)

		out = protowire.AppendTag(out, legacyItemsFieldNumber, protowire.BytesType)
		out = protowire.AppendBytes(out, item)
	}
	return out
}

// parseLegacyAsBody decodes a legacy batch body into the same batch.Body
// shape the V2+ reader produces, so every domain rebuilder can consume
// either version uniformly. All items in a legacy batch are expected to
// share one batch_type, matching how the V2+ serializers assign Type
// once per batch rather than per element.
func parseLegacyAsBody(data []byte) (*batch.Body, error) {
	body := &batch.Body{Type: batch.Type(-1)}

	for len(data) > 0 {
		num, wireType, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, errors.Wrap(zkerr.ErrMalformed, "snapshot: legacy batch has invalid field tag")
		}
		data = data[n:]

		if num != legacyItemsFieldNumber || wireType != protowire.BytesType {
			return nil, errors.Wrapf(zkerr.ErrMalformed, "snapshot: legacy batch has unexpected field %d", num)
		}

		item, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, errors.Wrap(zkerr.ErrMalformed, "snapshot: legacy batch item truncated")
		}
		data = data[n:]

		typ, elemData, err := parseLegacyItem(item)
		if err != nil {
			return nil, err
		}
		if body.Type == batch.Type(-1) {
			body.Type = typ
		}
		body.Add(elemData)
	}
	if body.Type == batch.Type(-1) {
		body.Type = batch.Type(0)
	}
	return body, nil
}

func parseLegacyItem(item []byte) (batch.Type, []byte, error) {
	var typ batch.Type
	var data []byte

	for len(item) > 0 {
		num, wireType, n := protowire.ConsumeTag(item)
		if n < 0 {
			return 0, nil, errors.Wrap(zkerr.ErrMalformed, "snapshot: legacy item has invalid field tag")
		}
		item = item[n:]

		switch {
		case num == legacyBatchTypeField && wireType == protowire.VarintType:
			v, n := protowire.ConsumeVarint(item)
			if n < 0 {
				return 0, nil, errors.Wrap(zkerr.ErrMalformed, "snapshot: legacy item batch_type truncated")
			}
			item = item[n:]
			typ = batch.Type(int32(v))
		case num == legacyDataField && wireType == protowire.BytesType:
			v, n := protowire.ConsumeBytes(item)
			if n < 0 {
				return 0, nil, errors.Wrap(zkerr.ErrMalformed, "snapshot: legacy item data truncated")
			}
			item = item[n:]
			data = append([]byte{}, v...)
		default:
			n := protowire.ConsumeFieldValue(num, wireType, item)
			if n < 0 {
				return 0, nil, errors.Wrap(zkerr.ErrMalformed, "snapshot: legacy item has unknown unparsable field")
			}
			item = item[n:]
		}
	}
	return typ, data, nil
}
