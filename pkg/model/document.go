package model

// Document is one reduced output of a combine session: the extracted
// key together with the fully combined JSON value.
type Document struct {
	Key   Key         `json:"key"`
	Value interface{} `json:"doc"`
}
