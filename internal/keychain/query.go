package keychain

// AttrName names an attribute in a Query.
type AttrName string

const (
	AttrClass       AttrName = "class"
	AttrService     AttrName = "service"
	AttrAccessGroup AttrName = "access-group"
	AttrAccessible  AttrName = "accessible"
	AttrGeneric     AttrName = "generic"
	AttrAccount     AttrName = "account"
	AttrData        AttrName = "data"

	AttrMatchLimit       AttrName = "match-limit"
	AttrReturnData       AttrName = "return-data"
	AttrReturnAttributes AttrName = "return-attributes"
)

// SecClass is a credential item class.
type SecClass string

const (
	ClassGenericPassword  SecClass = "genp"
	ClassInternetPassword SecClass = "inet"
	ClassCertificate      SecClass = "cert"
	ClassKey              SecClass = "keys"
	ClassIdentity         SecClass = "idnt"
)

// AllClasses lists every class removed by Wipe.
var AllClasses = []SecClass{
	ClassGenericPassword,
	ClassInternetPassword,
	ClassCertificate,
	ClassKey,
	ClassIdentity,
}

// MatchLimit bounds the number of results returned by CopyMatching.
type MatchLimit int

const (
	MatchOne MatchLimit = iota + 1
	MatchAll
)

type attr struct {
	name  AttrName
	value any
}

// Query is an ordered attribute mapping. Setting an existing attribute
// replaces its value in place; new attributes are appended.
type Query struct {
	attrs []attr
}

// Set assigns value to name.
func (q *Query) Set(name AttrName, value any) {
	for i := range q.attrs {
		if q.attrs[i].name == name {
			q.attrs[i].value = value
			return
		}
	}
	q.attrs = append(q.attrs, attr{name: name, value: value})
}

// Get returns the value for name.
func (q Query) Get(name AttrName) (any, bool) {
	for _, a := range q.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return nil, false
}

// Has reports whether name is set.
func (q Query) Has(name AttrName) bool {
	_, ok := q.Get(name)
	return ok
}

// Delete removes name, preserving the order of the remaining attributes.
func (q *Query) Delete(name AttrName) {
	for i := range q.attrs {
		if q.attrs[i].name == name {
			q.attrs = append(q.attrs[:i:i], q.attrs[i+1:]...)
			return
		}
	}
}

// Names returns attribute names in insertion order.
func (q Query) Names() []AttrName {
	names := make([]AttrName, len(q.attrs))
	for i, a := range q.attrs {
		names[i] = a.name
	}
	return names
}

// Len returns the number of attributes.
func (q Query) Len() int { return len(q.attrs) }

// Clone returns an independent copy of q.
func (q Query) Clone() Query {
	attrs := make([]attr, len(q.attrs))
	copy(attrs, q.attrs)
	return Query{attrs: attrs}
}

// Class returns the class attribute, or "" when unset.
func (q Query) Class() SecClass {
	v, _ := q.Get(AttrClass)
	c, _ := v.(SecClass)
	return c
}

// String returns a string attribute, or "" when unset.
func (q Query) String(name AttrName) string {
	v, _ := q.Get(name)
	s, _ := v.(string)
	return s
}

// Bytes returns a byte attribute, or nil when unset.
func (q Query) Bytes(name AttrName) []byte {
	v, _ := q.Get(name)
	b, _ := v.([]byte)
	return b
}

// Accessible returns the accessible sentinel, if set.
func (q Query) Accessible() (Sentinel, bool) {
	v, ok := q.Get(AttrAccessible)
	if !ok {
		return "", false
	}
	s, ok := v.(Sentinel)
	return s, ok
}

// MatchLimit returns the match limit, MatchOne when unset.
func (q Query) MatchLimit() MatchLimit {
	v, _ := q.Get(AttrMatchLimit)
	if l, ok := v.(MatchLimit); ok {
		return l
	}
	return MatchOne
}

// Flag returns a boolean attribute, false when unset.
func (q Query) Flag(name AttrName) bool {
	v, _ := q.Get(name)
	b, _ := v.(bool)
	return b
}
