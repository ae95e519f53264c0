package manifest

// ValueKind is the type tag of a Value node.
type ValueKind int

const (
	ValueString ValueKind = iota + 1
	ValueNumber
	ValueBool
	ValueSequence
	ValueMapping
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	case ValueSequence:
		return "sequence"
	case ValueMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Document is the structured result of interpreting one manifest file. It is
// transient: the decoder consumes it and it is discarded afterwards.
type Document struct {
	// Path is the absolute path of the manifest file.
	Path string
	// Kind is the root block found in the file.
	Kind Kind
	// Root holds the root block's content as a mapping.
	Root *Value
}

// Value is a node in the ordered document tree. Numbers keep their decimal
// text so that no precision is lost between the interpreter and the decoder.
type Value struct {
	Kind   ValueKind
	Str    string
	Bool   bool
	Items  []*Value
	Fields []Field
}

// Field is a single key of a mapping Value. Mappings keep source order.
type Field struct {
	Key   string
	Value *Value
}

func String(s string) *Value    { return &Value{Kind: ValueString, Str: s} }
func Number(text string) *Value { return &Value{Kind: ValueNumber, Str: text} }
func Bool(b bool) *Value        { return &Value{Kind: ValueBool, Bool: b} }

// Sequence builds a sequence Value. A nil item list yields an empty sequence.
func Sequence(items ...*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{Kind: ValueSequence, Items: items}
}

// Mapping builds a mapping Value from fields in the given order.
func Mapping(fields ...Field) *Value {
	return &Value{Kind: ValueMapping, Fields: fields}
}

// Get returns the value stored under key, or nil when the value is not a
// mapping or the key is absent.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != ValueMapping {
		return nil
	}
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Set stores val under key, replacing an existing entry in place or
// appending a new one.
func (v *Value) Set(key string, val *Value) {
	for i := range v.Fields {
		if v.Fields[i].Key == key {
			v.Fields[i].Value = val
			return
		}
	}
	v.Fields = append(v.Fields, Field{Key: key, Value: val})
}

// Append adds val to the sequence stored under key, creating it if needed.
func (v *Value) Append(key string, val *Value) {
	seq := v.Get(key)
	if seq == nil || seq.Kind != ValueSequence {
		seq = Sequence()
		v.Set(key, seq)
	}
	seq.Items = append(seq.Items, val)
}
