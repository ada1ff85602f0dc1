package wire

// Question is a single entry in a message's question section: a name,
// a type code, and a class code.
type Question struct {
	Name  string
	Type  RRType
	Class Class
}

// NewQuestion builds a Question for host, splitting it on "." into labels
// (a trailing empty label, if any, is dropped) as spec §4.5 requires of
// send_query.
func NewQuestion(host string, qtype RRType) (Question, error) {
	labels, err := splitLabels(host)
	if err != nil {
		return Question{}, err
	}
	return Question{Name: joinLabels(labels), Type: qtype, Class: ClassINET}, nil
}
