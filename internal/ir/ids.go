package ir

type ValueID int32
type BlockID int32
type MDID int32

const (
	NoValueID ValueID = -1
	NoBlockID BlockID = -1
	NoMDID    MDID    = -1
)
