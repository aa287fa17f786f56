package models

// Classroom is a long-lived teaching room resource.
type Classroom struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Capacity  int    `db:"capacity" json:"capacity"`
	Equipment string `db:"equipment" json:"equipment,omitempty"`
	Status    string `db:"status" json:"status"`
}

// Available reports whether the room can receive assignments.
func (c Classroom) Available() bool {
	return c.Status == StatusAvailable
}
