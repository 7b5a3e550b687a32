// Wire types and service stubs for fluid.proto, kept in the shape protoc
// emits so the file can be regenerated without touching callers.
package api

import (
	"context"
	"fmt"

	proto "github.com/golang/protobuf/proto"
	grpc "google.golang.org/grpc"
)

// Reference imports to suppress errors if they are not otherwise used.
var _ = proto.Marshal
var _ = fmt.Errorf

type FetchRequest struct {
	NeedCount int32 `protobuf:"varint,1,opt,name=need_count,json=needCount,proto3" json:"need_count,omitempty"`
}

func (m *FetchRequest) Reset()         { *m = FetchRequest{} }
func (m *FetchRequest) String() string { return proto.CompactTextString(m) }
func (*FetchRequest) ProtoMessage()    {}

func (m *FetchRequest) GetNeedCount() int32 {
	if m != nil {
		return m.NeedCount
	}
	return 0
}

type FetchReply struct {
	Ids []int64 `protobuf:"varint,1,rep,packed,name=ids,proto3" json:"ids,omitempty"`
}

func (m *FetchReply) Reset()         { *m = FetchReply{} }
func (m *FetchReply) String() string { return proto.CompactTextString(m) }
func (*FetchReply) ProtoMessage()    {}

func (m *FetchReply) GetIds() []int64 {
	if m != nil {
		return m.Ids
	}
	return nil
}

func init() {
	proto.RegisterType((*FetchRequest)(nil), "api.FetchRequest")
	proto.RegisterType((*FetchReply)(nil), "api.FetchReply")
}

// FluidClient is the client API for the Fluid service.
type FluidClient interface {
	Fetch(ctx context.Context, in *FetchRequest, opts ...grpc.CallOption) (*FetchReply, error)
}

type fluidClient struct {
	cc *grpc.ClientConn
}

func NewFluidClient(cc *grpc.ClientConn) FluidClient {
	return &fluidClient{cc}
}

func (c *fluidClient) Fetch(ctx context.Context, in *FetchRequest, opts ...grpc.CallOption) (*FetchReply, error) {
	out := new(FetchReply)
	err := c.cc.Invoke(ctx, "/api.Fluid/Fetch", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FluidServer is the server API for the Fluid service.
type FluidServer interface {
	Fetch(context.Context, *FetchRequest) (*FetchReply, error)
}

func RegisterFluidServer(s *grpc.Server, srv FluidServer) {
	s.RegisterService(&_Fluid_serviceDesc, srv)
}

func _Fluid_Fetch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(FetchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FluidServer).Fetch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/api.Fluid/Fetch",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FluidServer).Fetch(ctx, req.(*FetchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var _Fluid_serviceDesc = grpc.ServiceDesc{
	ServiceName: "api.Fluid",
	HandlerType: (*FluidServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Fetch",
			Handler:    _Fluid_Fetch_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fluid.proto",
}
