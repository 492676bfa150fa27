package grpcapi

import (
	"context"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/transport/wire"
)

type Server struct {
	grpcServer *grpc.Server
	app        *application.Service
	log        *zap.Logger
}

func New(app *application.Service, log *zap.Logger) *Server {
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(metricsInterceptor, AuthInterceptor),
	)

	s := &Server{
		grpcServer: grpcServer,
		app:        app,
		log:        log,
	}
	grpcServer.RegisterService(&SyncApiServiceDesc, s)
	return s
}

// Serve blocks until the listener fails or Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("gRPC listening", zap.String("addr", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func (s *Server) Stop() {
	s.log.Info("shutting down gRPC...")
	s.grpcServer.GracefulStop()
}

func metricsInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	resp, err := handler(ctx, req)
	observability.GrpcRequestsTotal.WithLabelValues(ServiceName, info.FullMethod, status.Code(err).String()).Inc()
	return resp, err
}

func (s *Server) SendMessage(ctx context.Context, req *wire.SendRequest) (*wire.SendResult, error) {
	recipient, err := identity.New(req.RecipientEmail, req.RecipientName)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "recipient_email is required")
	}

	res, err := s.app.SendMessage(ctx, application.SendCommand{
		Sender:         callerFrom(ctx),
		Recipient:      recipient,
		ConversationID: req.ConversationID,
		Message:        req.Message.Domain(),
	})
	return sendResult(res, err)
}

func (s *Server) ResumeSend(ctx context.Context, req *wire.ResumeRequest) (*wire.SendResult, error) {
	if req.ConversationID == "" || req.Message.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "conversation_id and message.id are required")
	}
	recipient, err := identity.New(req.RecipientEmail, req.RecipientName)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "recipient_email is required")
	}

	res, err := s.app.ResumeSend(ctx, application.SendCommand{
		Sender:    callerFrom(ctx),
		Recipient: recipient,
		Message:   req.Message.Domain(),
	}, req.Partial())
	return sendResult(res, err)
}

func sendResult(res *application.SendResult, err error) (*wire.SendResult, error) {
	if res == nil {
		return nil, MapError(err)
	}
	if perr, ok := application.AsPartialSend(err); ok {
		out := wire.FromSendResult(res, perr)
		return &out, nil
	}
	if err != nil {
		return nil, MapError(err)
	}
	out := wire.FromSendResult(res, nil)
	return &out, nil
}

func (s *Server) ListConversations(ctx context.Context, _ *ListConversationsRequest) (*wire.ConversationList, error) {
	summaries, report, err := s.app.ListConversations(ctx, callerFrom(ctx))
	if err != nil {
		return nil, MapError(err)
	}
	out := wire.NewConversationList(summaries, report)
	return &out, nil
}

func (s *Server) ListMessages(ctx context.Context, req *ListMessagesRequest) (*wire.MessageList, error) {
	msgs, report, err := s.app.ListMessages(ctx, callerFrom(ctx), req.ConversationID)
	if err != nil {
		return nil, MapError(err)
	}
	out := wire.NewMessageList(msgs, report)
	return &out, nil
}

func (s *Server) MarkRead(ctx context.Context, req *MarkReadRequest) (*MarkReadResponse, error) {
	if err := s.app.MarkRead(ctx, callerFrom(ctx), req.ConversationID); err != nil {
		return nil, MapError(err)
	}
	return &MarkReadResponse{}, nil
}

func (s *Server) Repair(ctx context.Context, req *RepairRequest) (*wire.Summary, error) {
	peer, err := identity.New(req.PeerEmail, req.PeerName)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "peer_email is required")
	}

	summary, err := s.app.Repair(ctx, application.RepairCommand{
		Participant:    callerFrom(ctx),
		Peer:           peer,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		return nil, MapError(err)
	}
	out := wire.FromSummary(*summary)
	return &out, nil
}
