package grpcapi

import (
	"context"

	"google.golang.org/grpc"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/transport/wire"
)

const ServiceName = "convsync.v1.SyncApi"

type ListConversationsRequest struct{}

type ListMessagesRequest struct {
	ConversationID string `json:"conversation_id"`
}

type MarkReadRequest struct {
	ConversationID string `json:"conversation_id"`
}

type MarkReadResponse struct{}

type RepairRequest struct {
	ConversationID string `json:"conversation_id"`
	PeerEmail      string `json:"peer_email"`
	PeerName       string `json:"peer_name"`
}

// SyncApiServer is implemented by Server. A partial send is not an RPC
// error: the response lists the step outcomes instead.
type SyncApiServer interface {
	SendMessage(context.Context, *wire.SendRequest) (*wire.SendResult, error)
	ResumeSend(context.Context, *wire.ResumeRequest) (*wire.SendResult, error)
	ListConversations(context.Context, *ListConversationsRequest) (*wire.ConversationList, error)
	ListMessages(context.Context, *ListMessagesRequest) (*wire.MessageList, error)
	MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error)
	Repair(context.Context, *RepairRequest) (*wire.Summary, error)
}

func unary[Req, Resp any](name string, call func(SyncApiServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SyncApiServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SyncApiServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var SyncApiServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncApiServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SendMessage", SyncApiServer.SendMessage),
		unary("ResumeSend", SyncApiServer.ResumeSend),
		unary("ListConversations", SyncApiServer.ListConversations),
		unary("ListMessages", SyncApiServer.ListMessages),
		unary("MarkRead", SyncApiServer.MarkRead),
		unary("Repair", SyncApiServer.Repair),
	},
	Metadata: "convsync/v1/sync_api",
}

// SyncApiClient calls a SyncApi server with the JSON codec.
type SyncApiClient struct {
	cc grpc.ClientConnInterface
}

func NewSyncApiClient(cc grpc.ClientConnInterface) *SyncApiClient {
	return &SyncApiClient{cc: cc}
}

func (c *SyncApiClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *SyncApiClient) SendMessage(ctx context.Context, in *wire.SendRequest, opts ...grpc.CallOption) (*wire.SendResult, error) {
	out := new(wire.SendResult)
	if err := c.invoke(ctx, "SendMessage", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SyncApiClient) ResumeSend(ctx context.Context, in *wire.ResumeRequest, opts ...grpc.CallOption) (*wire.SendResult, error) {
	out := new(wire.SendResult)
	if err := c.invoke(ctx, "ResumeSend", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SyncApiClient) ListConversations(ctx context.Context, in *ListConversationsRequest, opts ...grpc.CallOption) (*wire.ConversationList, error) {
	out := new(wire.ConversationList)
	if err := c.invoke(ctx, "ListConversations", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SyncApiClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*wire.MessageList, error) {
	out := new(wire.MessageList)
	if err := c.invoke(ctx, "ListMessages", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SyncApiClient) MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error) {
	out := new(MarkReadResponse)
	if err := c.invoke(ctx, "MarkRead", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SyncApiClient) Repair(ctx context.Context, in *RepairRequest, opts ...grpc.CallOption) (*wire.Summary, error) {
	out := new(wire.Summary)
	if err := c.invoke(ctx, "Repair", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
