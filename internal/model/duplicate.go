package model

// DuplicateGroup is a set of records sharing the same values on a key.
type DuplicateGroup struct {
	Key     []string
	Values  []Value
	Records []Record
}

// Removal records which rows were folded into a kept row.
type Removal struct {
	// KeyValue is the printable key of the group (e.g. the matricule).
	KeyValue string
	// Kept identifies the retained row.
	Kept string
	// Dropped identifies the rows removed in favour of Kept, in original order.
	Dropped []string
	// Occurrences is the number of identical rows, Kept included.
	Occurrences int
}
