// Package api provides the gRPC FilterAPI service.
//
// The service has no generated stubs: every method takes and returns a
// google.protobuf.Struct whose JSON shape is fixed by the request and
// response types in messages.go. The service descriptor below plays the
// role of the generated _grpc.pb.go file.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/strbounds/internal/core/auth"
	"github.com/solatis/strbounds/internal/core/catalog"
	"github.com/solatis/strbounds/internal/core/config"
	"github.com/solatis/strbounds/internal/logging"
	"github.com/solatis/strbounds/internal/types"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "strbounds.filter.v1.FilterAPI"

// FilterAPIServer is the server side of the FilterAPI service.
type FilterAPIServer interface {
	Filter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateRuleSet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuleSets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteRuleSet(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type methodCall func(FilterAPIServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodHandler(name string, call methodCall) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FilterAPIServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(FilterAPIServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the FilterAPI service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FilterAPIServer)(nil),
	Methods: []grpc.MethodDesc{
		methodHandler("Filter", FilterAPIServer.Filter),
		methodHandler("CreateRuleSet", FilterAPIServer.CreateRuleSet),
		methodHandler("ListRuleSets", FilterAPIServer.ListRuleSets),
		methodHandler("DeleteRuleSet", FilterAPIServer.DeleteRuleSet),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "strbounds/filter/v1/filter_api.proto",
}

// RegisterFilterAPIServer registers srv with s.
func RegisterFilterAPIServer(s grpc.ServiceRegistrar, srv FilterAPIServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Service implements FilterAPIServer.
// Thin orchestration layer delegating to the catalog and the rules engine.
type Service struct {
	catalog *catalog.Catalog
	cfg     *config.FilterAPIConfig
	logger  zerolog.Logger
}

// NewService creates service instance with dependencies.
func NewService(cat *catalog.Catalog, cfg *config.FilterAPIConfig) (*Service, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	return &Service{
		catalog: cat,
		cfg:     cfg,
		logger:  logging.GetLogger("filter_api"),
	}, nil
}

func (s *Service) Filter(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(s, ctx, in, s.filter)
}

func (s *Service) CreateRuleSet(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(s, ctx, in, s.createRuleSet)
}

func (s *Service) ListRuleSets(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(s, ctx, in, s.listRuleSets)
}

func (s *Service) DeleteRuleSet(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(s, ctx, in, s.deleteRuleSet)
}

// serve decodes the request, applies the request timeout, resolves the
// authenticated client and encodes the response. Errors leave as gRPC
// statuses.
func serve[Req, Resp any](s *Service, ctx context.Context, in *structpb.Struct, fn func(context.Context, types.ClientID, Req) (Resp, error)) (*structpb.Struct, error) {
	clientID := auth.ClientIDFromContext(ctx)
	if clientID == "" {
		return nil, status.Error(codes.Internal, "missing client_id in context")
	}

	var req Req
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := fn(ctx, clientID, req)
	if err != nil {
		st := toStatus(err)
		s.logger.Debug().
			Str("client_id", string(clientID)).
			Str("code", st.Code().String()).
			Err(err).
			Msg("Request failed")
		return nil, st.Err()
	}

	out, err := toStruct(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.logger.Debug().
		Str("client_id", string(clientID)).
		Dur("duration", time.Since(start)).
		Msg("Request served")
	return out, nil
}
