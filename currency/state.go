package currency

import (
	"github.com/golang/protobuf/proto"
	"github.com/juju/errors"
)

//go:generate protoc --go_out=./ state.proto

func (self *NominalGroup) MarshalBinary() ([]byte, error) {
	state := GroupState{Counts: make(map[uint32]uint32, len(self.values))}
	self.ToMapUint32(state.Counts)
	return proto.Marshal(&state)
}

// UnmarshalBinary restores counts, valid nominals must be set before.
func (self *NominalGroup) UnmarshalBinary(b []byte) error {
	var state GroupState
	if err := proto.Unmarshal(b, &state); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(self.FromMapUint32(state.GetCounts()))
}
