package ast

type (
	// главные сущности
	ExprID    uint32
	BindingID uint32
	// NodeID is shared by every node kind; the scope map is keyed by it.
	NodeID uint32
	// подсущности
	PayloadID uint32
)

const (
	NoExprID    ExprID    = 0
	NoBindingID BindingID = 0
	NoNodeID    NodeID    = 0
	NoPayloadID PayloadID = 0
)

func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id BindingID) IsValid() bool { return id != NoBindingID }
func (id NodeID) IsValid() bool    { return id != NoNodeID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }
