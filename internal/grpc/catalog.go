// internal/grpc/catalog.go
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Описание сервиса moviemetrics.v1.Catalog. Сообщения - стандартные типы protobuf,
// поэтому отдельный .proto и генерация кода не нужны.
const (
	ServiceName = "moviemetrics.v1.Catalog"

	methodGetMovie         = "GetMovie"
	methodCheckMovieExists = "CheckMovieExists"
	methodGetUser          = "GetUser"
	methodGetGenreByName   = "GetGenreByName"
)

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// CatalogServer серверная часть сервиса Catalog.
type CatalogServer interface {
	GetMovie(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	CheckMovieExists(context.Context, *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
	GetUser(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	GetGenreByName(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// unaryHandler строит обработчик метода так же, как это делает protoc-gen-go-grpc.
func unaryHandler[Req any, Resp any](name string, call func(CatalogServer, context.Context, *Req) (Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CatalogServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CatalogServiceDesc дескриптор сервиса для grpc.Server.RegisterService.
var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodGetMovie, Handler: unaryHandler(methodGetMovie, CatalogServer.GetMovie)},
		{MethodName: methodCheckMovieExists, Handler: unaryHandler(methodCheckMovieExists, CatalogServer.CheckMovieExists)},
		{MethodName: methodGetUser, Handler: unaryHandler(methodGetUser, CatalogServer.GetUser)},
		{MethodName: methodGetGenreByName, Handler: unaryHandler(methodGetGenreByName, CatalogServer.GetGenreByName)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "moviemetrics/v1/catalog",
}

// RegisterCatalogServer регистрирует реализацию на gRPC сервере.
func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}
