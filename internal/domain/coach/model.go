package coach

// Registry is the shared reference table of class types and coach
// qualifications, stored as the singleton /class_list/coach document: the
// "classType" field holds the type list, every other field is a coach name
// mapping class type to a qualified flag. Qualification maps are kept total
// over the type list.
type Registry struct {
	ClassTypes []string                   `json:"classType"`
	Coaches    map[string]map[string]bool `json:"coaches"`
}

func (r Registry) HasClassType(name string) bool {
	for _, t := range r.ClassTypes {
		if t == name {
			return true
		}
	}
	return false
}

// QualifiedCoaches lists the coaches holding a true flag for the class type,
// in no particular order.
func (r Registry) QualifiedCoaches(classType string) []string {
	out := []string{}
	for name, quals := range r.Coaches {
		if quals[classType] {
			out = append(out, name)
		}
	}
	return out
}

func (r Registry) clone() Registry {
	next := Registry{
		ClassTypes: append([]string(nil), r.ClassTypes...),
		Coaches:    make(map[string]map[string]bool, len(r.Coaches)),
	}
	for name, quals := range r.Coaches {
		m := make(map[string]bool, len(quals))
		for t, q := range quals {
			m[t] = q
		}
		next.Coaches[name] = m
	}
	return next
}
