package pairing

import "github.com/backkem/hap/pkg/tlv8"

// field is one success item of a response.
type field struct {
	typ   tlv8.Type
	value []byte
}

// outcome is the result of one message handler. A non-None code means the
// response carries only State and Error; otherwise it carries State and items.
// teardown asks for the sender's pairing record to be destroyed.
type outcome struct {
	state    tlv8.State
	code     tlv8.ErrorCode
	teardown bool
	items    []field
}

func success(state tlv8.State, items ...field) outcome {
	return outcome{state: state, items: items}
}

// failure returns an error outcome that keeps the pairing record.
func failure(state tlv8.State, code tlv8.ErrorCode) outcome {
	return outcome{state: state, code: code}
}

// abort returns an error outcome that destroys the pairing record.
func abort(state tlv8.State, code tlv8.ErrorCode) outcome {
	return outcome{state: state, code: code, teardown: true}
}

// encode writes the outcome to out. When the success items do not fit, the
// response is rewritten as an Unknown error and false is returned.
func (o outcome) encode(out *tlv8.Builder) bool {
	out.Reset()
	out.AddInt(tlv8.TypeState, uint64(o.state))
	if o.code != tlv8.ErrorNone {
		return out.AddInt(tlv8.TypeError, uint64(o.code)) == nil
	}
	for _, f := range o.items {
		if err := out.AddFragmented(f.typ, f.value); err != nil {
			out.Reset()
			out.AddInt(tlv8.TypeState, uint64(o.state))
			out.AddInt(tlv8.TypeError, uint64(tlv8.ErrorUnknown))
			return false
		}
	}
	return true
}
