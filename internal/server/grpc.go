package server

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/tile-merge/internal/board"
)

// ServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct values carrying the same fields as
// the HTTP JSON views.
const ServiceName = "tilemerge.v1.SessionService"

// GRPC serves the registry over gRPC.
type GRPC struct {
	reg *Registry
}

func NewGRPC(reg *Registry) *GRPC { return &GRPC{reg: reg} }

// Register attaches the session service to s.
func (g *GRPC) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&serviceDesc, g)
}

type call func(g *GRPC, ctx context.Context, in map[string]any) (any, error)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary("Start", (*GRPC).start),
		unary("Next", (*GRPC).next),
		unary("Place", (*GRPC).place),
		unary("Stats", (*GRPC).stats),
		unary("Board", (*GRPC).board),
		unary("Clear", (*GRPC).clear),
		unary("Preview", (*GRPC).preview),
		unary("End", (*GRPC).end),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tilemerge/v1/session.proto",
}

func unary(name string, fn call) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				v, err := fn(srv.(*GRPC), ctx, req.(*structpb.Struct).AsMap())
				if err != nil {
					return nil, grpcError(err)
				}
				return toStruct(v)
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: full}, handler)
		},
	}
}

// toStruct round-trips v through JSON so the Struct mirrors the HTTP body.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func strField(in map[string]any, key string) (string, bool) {
	s, ok := in[key].(string)
	return s, ok && s != ""
}

func intField(in map[string]any, key string) (int, bool, error) {
	raw, ok := in[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	f, ok := raw.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false, badRequest("invalid " + key)
	}
	return int(f), true, nil
}

func boolField(in map[string]any, key string) (bool, bool, error) {
	raw, ok := in[key]
	if !ok || raw == nil {
		return false, false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, false, badRequest("invalid " + key)
	}
	return b, true, nil
}

// seedField accepts a non-negative integral number or a decimal string;
// strings keep seeds above 2^53 exact.
func seedField(in map[string]any) (*uint64, error) {
	switch v := in["seed"].(type) {
	case nil:
		return nil, nil
	case string:
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, badRequest("invalid seed")
		}
		return &s, nil
	case float64:
		if v < 0 || v != math.Trunc(v) || v > 1<<53 {
			return nil, badRequest("invalid seed")
		}
		s := uint64(v)
		return &s, nil
	default:
		return nil, badRequest("invalid seed")
	}
}

func idField(in map[string]any) (string, error) {
	id, ok := strField(in, "id")
	if !ok {
		return "", badRequest("missing field id")
	}
	return id, nil
}

func pointField(in map[string]any) (board.Point, error) {
	x, okX, err := intField(in, "x")
	if err != nil {
		return board.Point{}, err
	}
	y, okY, err := intField(in, "y")
	if err != nil {
		return board.Point{}, err
	}
	if !okX || !okY {
		return board.Point{}, badRequest("missing field x/y")
	}
	return board.Point{X: x, Y: y}, nil
}

func (g *GRPC) start(_ context.Context, in map[string]any) (any, error) {
	req := StartRequest{}
	req.Profile, _ = strField(in, "profile")
	o := &req.Overrides
	for key, dst := range map[string]**int{
		"size":          &o.Size,
		"initial_tiles": &o.InitialTiles,
		"combo":         &o.ComboThreshold,
		"max_cascade":   &o.MaxCascade,
	} {
		v, ok, err := intField(in, key)
		if err != nil {
			return nil, err
		}
		if ok {
			*dst = &v
		}
	}
	for key, dst := range map[string]**bool{
		"core":  &o.CorePatterns,
		"defer": &o.DeferCoreClear,
	} {
		v, ok, err := boolField(in, key)
		if err != nil {
			return nil, err
		}
		if ok {
			*dst = &v
		}
	}
	if m, ok := strField(in, "mode"); ok {
		o.Mode = &m
	}
	seed, err := seedField(in)
	if err != nil {
		return nil, err
	}
	req.Seed = seed
	return g.reg.Start(req)
}

func (g *GRPC) next(_ context.Context, in map[string]any) (any, error) {
	id, err := idField(in)
	if err != nil {
		return nil, err
	}
	return g.reg.Next(id)
}

func (g *GRPC) place(_ context.Context, in map[string]any) (any, error) {
	id, err := idField(in)
	if err != nil {
		return nil, err
	}
	p, err := pointField(in)
	if err != nil {
		return nil, err
	}
	return g.reg.Place(id, p)
}

func (g *GRPC) stats(_ context.Context, in map[string]any) (any, error) {
	id, err := idField(in)
	if err != nil {
		return nil, err
	}
	return g.reg.Stats(id)
}

func (g *GRPC) board(_ context.Context, in map[string]any) (any, error) {
	id, err := idField(in)
	if err != nil {
		return nil, err
	}
	return g.reg.Board(id)
}

func (g *GRPC) clear(_ context.Context, in map[string]any) (any, error) {
	id, err := idField(in)
	if err != nil {
		return nil, err
	}
	var cells []board.Point
	if raw, ok := in["cells"].([]any); ok {
		for i, c := range raw {
			m, ok := c.(map[string]any)
			if !ok {
				return nil, badRequest(fmt.Sprintf("invalid cells[%d]", i))
			}
			p, err := pointField(m)
			if err != nil {
				return nil, err
			}
			cells = append(cells, p)
		}
	}
	return g.reg.Clear(id, cells)
}

func (g *GRPC) preview(_ context.Context, in map[string]any) (any, error) {
	id, err := idField(in)
	if err != nil {
		return nil, err
	}
	p, err := pointField(in)
	if err != nil {
		return nil, err
	}
	return g.reg.Preview(id, p)
}

func (g *GRPC) end(_ context.Context, in map[string]any) (any, error) {
	id, err := idField(in)
	if err != nil {
		return nil, err
	}
	return g.reg.End(id)
}

// UnaryLogger logs every unary call with its status code and latency.
func UnaryLogger(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc call",
			zap.String("method", info.FullMethod),
			zap.Stringer("code", status.Code(err)),
			zap.Duration("took", time.Since(start)),
		)
		return resp, err
	}
}

// Client is a thin caller for the session service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

// Call invokes method (e.g. "Place") with the given fields.
func (c *Client) Call(ctx context.Context, method string, fields map[string]any) (map[string]any, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
