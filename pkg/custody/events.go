package custody

// Event types
const (
	EventInstantiate            = "instantiate"
	EventAddWhitelistedToken    = "add_whitelisted_token"
	EventRemoveWhitelistedToken = "remove_whitelisted_token"
	EventUpdateConfig           = "update_config"
	EventDepositToken           = "deposit_token"
)

// Attribute is a key/value pair of an event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is an audit entry emitted by an operation.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// NewEvent starts an event of type typ.
func NewEvent(typ string) Event {
	return Event{Type: typ}
}

// With returns e with the attribute appended.
func (e Event) With(key, value string) Event {
	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: value})
	return e
}

// Attr returns the first attribute value for key.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
