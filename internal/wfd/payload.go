package wfd

// PropertyErrorList is the non-empty list of error codes reported for a
// rejected property name in a 303 reply.
type PropertyErrorList []int

// Payload holds exactly one of the three shapes a WFD message body can
// take, selected by the owning Message's Kind and ResponseCode:
//   - GetParameterProperties: a GET_PARAMETER request's bare property names.
//   - PropertyErrors: a 303 reply's rejected-parameter report.
//   - Properties: everything else.
type Payload struct {
	Properties             map[string]Property
	PropertyErrors         map[string]PropertyErrorList
	GetParameterProperties []string
}

func newPayload() Payload {
	return Payload{}
}

// SetProperty records a property, keyed by its catalog/generic name.
func (p *Payload) SetProperty(prop Property) {
	if p.Properties == nil {
		p.Properties = make(map[string]Property)
	}
	p.Properties[prop.Name()] = prop
}

// Property looks up a property by name.
func (p *Payload) Property(name string) (Property, bool) {
	if p.Properties == nil {
		return nil, false
	}
	v, ok := p.Properties[name]
	return v, ok
}

// SetPropertyError records a rejected property name with its error codes.
func (p *Payload) SetPropertyError(name string, codes PropertyErrorList) {
	if p.PropertyErrors == nil {
		p.PropertyErrors = make(map[string]PropertyErrorList)
	}
	p.PropertyErrors[name] = codes
}
