// Code maintained by hand from state.proto, keep field tags in sync.

package currency

import (
	proto "github.com/golang/protobuf/proto"
)

type GroupState struct {
	Counts map[uint32]uint32 `protobuf:"bytes,1,rep,name=counts,proto3" json:"counts,omitempty" protobuf_key:"varint,1,opt,name=key,proto3" protobuf_val:"varint,2,opt,name=value,proto3"`
}

func (m *GroupState) Reset()         { *m = GroupState{} }
func (m *GroupState) String() string { return proto.CompactTextString(m) }
func (*GroupState) ProtoMessage()    {}

func (m *GroupState) GetCounts() map[uint32]uint32 {
	if m != nil {
		return m.Counts
	}
	return nil
}
