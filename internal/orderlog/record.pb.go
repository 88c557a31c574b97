// Code maintained by hand from record.proto, keep field tags in sync.

package orderlog

import (
	proto "github.com/golang/protobuf/proto"
)

type Record struct {
	Id          string   `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Time        int64    `protobuf:"varint,2,opt,name=time,proto3" json:"time,omitempty"`
	ProductCode string   `protobuf:"bytes,3,opt,name=product_code,json=productCode,proto3" json:"product_code,omitempty"`
	ProductName string   `protobuf:"bytes,4,opt,name=product_name,json=productName,proto3" json:"product_name,omitempty"`
	Price       uint32   `protobuf:"varint,5,opt,name=price,proto3" json:"price,omitempty"`
	ThrownIn    []uint32 `protobuf:"varint,6,rep,packed,name=thrown_in,json=thrownIn,proto3" json:"thrown_in,omitempty"`
	Returned    []uint32 `protobuf:"varint,7,rep,packed,name=returned,proto3" json:"returned,omitempty"`
	Donation    uint32   `protobuf:"varint,8,opt,name=donation,proto3" json:"donation,omitempty"`
}

func (m *Record) Reset()         { *m = Record{} }
func (m *Record) String() string { return proto.CompactTextString(m) }
func (*Record) ProtoMessage()    {}

func (m *Record) GetId() string {
	if m != nil {
		return m.Id
	}
	return ""
}

func (m *Record) GetThrownIn() []uint32 {
	if m != nil {
		return m.ThrownIn
	}
	return nil
}

func (m *Record) GetReturned() []uint32 {
	if m != nil {
		return m.Returned
	}
	return nil
}
