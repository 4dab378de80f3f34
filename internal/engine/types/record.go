package types

// Record is one decoded question/answer/comment triple.
type Record struct {
	Text    string // <Question>
	Answer  string // <Answer>
	Comment string // <Comments>
}

// IsEmpty reports whether none of the fields carry text.
func (r Record) IsEmpty() bool {
	return r.Text == "" && r.Answer == "" && r.Comment == ""
}
